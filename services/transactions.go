package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kycdesk/logger"
	"kycdesk/models"
	"kycdesk/session"
	"kycdesk/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TransactionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db, now: time.Now}
}

// Request records a pending deposit or withdrawal for the calling user.
// Approval only flips the status; no balance is kept.
func (s *TransactionService) Request(ctx context.Context, caller session.Principal, kind models.TransactionType, rawAmount []byte) (*models.Transaction, error) {
	if !caller.IsUser() {
		return nil, Unauthorized()
	}
	if !kind.Valid() {
		return nil, Validation(fmt.Sprintf("Invalid transaction type %q", kind), nil)
	}

	amount, err := utils.ParseAmount(rawAmount)
	if err != nil {
		return nil, Validation(fmt.Sprintf("Invalid %s amount", kind), map[string]string{"amount": err.Error()})
	}

	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Select("id", "status").First(&user, caller.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Unauthorized()
		}
		return nil, InternalError(err)
	}
	if user.Status != models.StatusApproved {
		return nil, Forbidden("Your account is not approved")
	}

	txn := models.Transaction{
		UserID:      user.ID,
		Type:        kind,
		Amount:      amount,
		Status:      models.StatusPending,
		RequestDate: s.now().UTC(),
	}
	if err := db.Create(&txn).Error; err != nil {
		return nil, InternalError(err)
	}

	logger.Info(ctx, "transaction requested",
		zap.Uint("transaction_id", txn.ID),
		zap.Uint("user_id", user.ID),
		zap.String("type", string(kind)),
		zap.String("amount", amount.String()),
	)
	return &txn, nil
}

// List returns every transaction to the admin and only their own to a user.
func (s *TransactionService) List(ctx context.Context, caller session.Principal, page Page) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	switch {
	case caller.IsAdmin():
	case caller.IsUser():
		q = q.Where("user_id = ?", caller.UserID)
	default:
		return nil, Unauthorized()
	}

	txns := []models.Transaction{}
	if err := page.apply(q).Find(&txns).Error; err != nil {
		return nil, InternalError(err)
	}
	return txns, nil
}

func (s *TransactionService) Approve(ctx context.Context, caller session.Principal, id uint) (*models.Transaction, error) {
	return s.decide(ctx, caller, id, models.DecisionApprove)
}

func (s *TransactionService) Reject(ctx context.Context, caller session.Principal, id uint) (*models.Transaction, error) {
	return s.decide(ctx, caller, id, models.DecisionReject)
}

// decide applies d and stamps the approval date, on every call.
func (s *TransactionService) decide(ctx context.Context, caller session.Principal, id uint, d models.Decision) (*models.Transaction, error) {
	if !caller.IsAdmin() {
		return nil, Unauthorized()
	}

	db := s.db.WithContext(ctx)

	var txn models.Transaction
	if err := db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Transaction not found")
		}
		return nil, InternalError(err)
	}

	next, err := txn.Status.Apply(d)
	if err != nil {
		return nil, InternalError(fmt.Errorf("transaction %d: %w", txn.ID, err))
	}
	decidedAt := s.now().UTC()

	if err := db.Model(&txn).Updates(map[string]interface{}{
		"status":        next,
		"approval_date": decidedAt,
	}).Error; err != nil {
		return nil, InternalError(err)
	}
	txn.Status = next
	txn.ApprovalDate.SetValid(decidedAt)

	logger.Info(ctx, "transaction status updated",
		zap.Uint("transaction_id", txn.ID),
		zap.String("decision", string(d)),
		zap.String("status", string(next)),
	)
	return &txn, nil
}
