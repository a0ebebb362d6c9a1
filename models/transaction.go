package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

type Transaction struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	UserID       uint            `json:"user_id" gorm:"not null;index"`
	Type         TransactionType `json:"type" gorm:"size:10;not null"` // deposit, withdrawal
	Amount       decimal.Decimal `json:"amount" gorm:"type:numeric;not null"`
	Status       Status          `json:"status" gorm:"size:50;default:pending;not null"`
	RequestDate  time.Time       `json:"request_date" gorm:"not null"`
	ApprovalDate null.Time       `json:"approval_date"`
}

// MarshalJSON renders the amount as a JSON number instead of decimal's
// default quoted string.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"amount"`
	}{
		alias:  alias(t),
		Amount: json.Number(t.Amount.String()),
	})
}

type TransactionRequest struct {
	Amount json.RawMessage `json:"amount"`
}
