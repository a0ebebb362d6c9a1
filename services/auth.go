package services

import (
	"context"
	"errors"
	"fmt"

	"kycdesk/logger"
	"kycdesk/models"
	"kycdesk/session"
	"kycdesk/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminCredentials is the single configured superuser. It is never stored
// in the users table.
type AdminCredentials struct {
	Email    string
	Password string
}

// Identity is the resolved caller of a request. User is only set for
// user principals.
type Identity struct {
	Principal session.Principal
	User      *models.User
}

type LoginResult struct {
	Token string
	Identity
}

type AuthService struct {
	db       *gorm.DB
	sessions *session.Manager
	admin    AdminCredentials
}

func NewAuthService(db *gorm.DB, sessions *session.Manager, admin AdminCredentials) *AuthService {
	return &AuthService{db: db, sessions: sessions, admin: admin}
}

// Login checks the admin credentials first and then the users table.
// Unknown emails and wrong passwords yield the same error for both.
// On success the session behind previousToken, if any, is replaced.
func (s *AuthService) Login(ctx context.Context, email, password, previousToken string) (*LoginResult, error) {
	email = utils.SanitizeString(email)
	password = utils.SanitizeString(password)

	if s.isAdmin(email, password) {
		principal := session.AdminPrincipal(email)
		token, err := s.sessions.Start(ctx, principal)
		if err != nil {
			return nil, InternalError(fmt.Errorf("start admin session: %w", err))
		}
		s.dropPrevious(ctx, previousToken)
		logger.Info(ctx, "admin logged in", zap.String("email", email))
		return &LoginResult{Token: token, Identity: Identity{Principal: principal}}, nil
	}

	if email == "" || password == "" {
		return nil, InvalidCredentials()
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info(ctx, "login attempt with unknown email", zap.String("email", email))
			return nil, InvalidCredentials()
		}
		return nil, InternalError(err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		logger.Info(ctx, "login attempt with wrong password", zap.Uint("user_id", user.ID))
		return nil, InvalidCredentials()
	}

	switch user.Status {
	case models.StatusApproved:
	case models.StatusPending:
		return nil, AwaitingApproval()
	case models.StatusRejected:
		return nil, AccountRejected()
	default:
		return nil, InternalError(fmt.Errorf("user %d has invalid status %q", user.ID, user.Status))
	}

	principal := session.UserPrincipal(user.ID, user.Email)
	token, err := s.sessions.Start(ctx, principal)
	if err != nil {
		return nil, InternalError(fmt.Errorf("start user session: %w", err))
	}

	s.dropPrevious(ctx, previousToken)
	logger.Info(ctx, "user logged in", zap.Uint("user_id", user.ID))
	return &LoginResult{Token: token, Identity: Identity{Principal: principal, User: &user}}, nil
}

// Logout drops the session behind token. It succeeds for unknown tokens.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return InternalError(fmt.Errorf("destroy session: %w", err))
	}
	return nil
}

// CurrentIdentity resolves token to the caller. Missing, expired and stale
// sessions resolve to the anonymous identity; a session pointing at a
// deleted user is destroyed on the way.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (Identity, error) {
	data, err := s.sessions.Load(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Identity{Principal: session.Anonymous}, nil
		}
		return Identity{}, InternalError(fmt.Errorf("load session: %w", err))
	}

	p := data.Principal
	switch {
	case p.IsAdmin():
		return Identity{Principal: p}, nil
	case p.IsUser():
		var user models.User
		err := s.db.WithContext(ctx).First(&user, p.UserID).Error
		if err == nil {
			return Identity{Principal: p, User: &user}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, InternalError(err)
		}
		logger.Info(ctx, "clearing session of deleted user", zap.Uint("user_id", p.UserID))
	}

	if err := s.sessions.Destroy(ctx, token); err != nil {
		logger.Warn(ctx, "failed to clear stale session", zap.Error(err))
	}
	return Identity{Principal: session.Anonymous}, nil
}

func (s *AuthService) dropPrevious(ctx context.Context, token string) {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		logger.Warn(ctx, "failed to drop previous session", zap.Error(err))
	}
}

func (s *AuthService) isAdmin(email, password string) bool {
	emailOK := utils.SecureCompare(email, s.admin.Email)
	passwordOK := utils.SecureCompare(password, s.admin.Password)
	return emailOK && passwordOK && s.admin.Email != ""
}
