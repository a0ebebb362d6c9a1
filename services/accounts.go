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

type AccountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// Register creates a pending user from a self-registration. It does not
// start a session.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = utils.SanitizeString(req.Email)
	req.Password = utils.SanitizeString(req.Password)
	req.CPF = utils.SanitizeNullString(req.CPF)

	if req.Email == "" || req.Password == "" {
		return nil, Validation("Email and password are required", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, Validation("Validation failed", utils.FormatValidationError(err))
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, InternalError(err)
	}
	if count > 0 {
		return nil, Conflict("Email already registered")
	}

	if req.CPF.Valid {
		if err := db.Model(&models.User{}).Where("cpf = ?", req.CPF.String).Count(&count).Error; err != nil {
			return nil, InternalError(err)
		}
		if count > 0 {
			return nil, Conflict("CPF already registered")
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, InternalError(err)
	}

	user := models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Status:       models.StatusPending,
		Profile:      req.Profile,
	}

	if err := db.Create(&user).Error; err != nil {
		// A concurrent registration won the race for the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Email or CPF already registered")
		}
		return nil, InternalError(err)
	}

	logger.Info(ctx, "user registered", zap.Uint("user_id", user.ID))
	return &user, nil
}

func (s *AccountService) ListUsers(ctx context.Context, caller session.Principal, page Page) ([]models.User, error) {
	if !caller.IsAdmin() {
		return nil, Unauthorized()
	}

	users := []models.User{}
	if err := page.apply(s.db.WithContext(ctx).Order("id ASC")).Find(&users).Error; err != nil {
		return nil, InternalError(err)
	}
	return users, nil
}

func (s *AccountService) Approve(ctx context.Context, caller session.Principal, userID uint) (*models.User, error) {
	return s.decide(ctx, caller, userID, models.DecisionApprove)
}

func (s *AccountService) Reject(ctx context.Context, caller session.Principal, userID uint) (*models.User, error) {
	return s.decide(ctx, caller, userID, models.DecisionReject)
}

func (s *AccountService) decide(ctx context.Context, caller session.Principal, userID uint, d models.Decision) (*models.User, error) {
	if !caller.IsAdmin() {
		return nil, Unauthorized()
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, InternalError(err)
	}

	next, err := user.Status.Apply(d)
	if err != nil {
		return nil, InternalError(fmt.Errorf("user %d: %w", user.ID, err))
	}

	if err := db.Model(&user).Update("status", next).Error; err != nil {
		return nil, InternalError(err)
	}
	user.Status = next

	logger.Info(ctx, "user status updated",
		zap.Uint("user_id", user.ID),
		zap.String("decision", string(d)),
		zap.String("status", string(next)),
	)
	return &user, nil
}

// Delete hard-deletes a user together with all of their transactions.
func (s *AccountService) Delete(ctx context.Context, caller session.Principal, userID uint) error {
	if !caller.IsAdmin() {
		return Unauthorized()
	}

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("User not found")
			}
			return err
		}

		res := tx.Where("user_id = ?", user.ID).Delete(&models.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		return tx.Delete(&user).Error
	})
	if err != nil {
		return AsAppError(err)
	}

	logger.Info(ctx, "user deleted", zap.Uint("user_id", userID), zap.Int64("transactions_removed", removed))
	return nil
}
