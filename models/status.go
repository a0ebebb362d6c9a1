package models

import "fmt"

// Status is the approval state shared by users and transactions.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is an administrator verdict applied to a Status.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Apply returns the status that results from applying d to s.
// Decisions overwrite any valid state, so re-approving an approved record
// or rejecting an approved one is allowed.
func (s Status) Apply(d Decision) (Status, error) {
	if !s.Valid() {
		return s, fmt.Errorf("invalid status %q", s)
	}

	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	default:
		return s, fmt.Errorf("invalid decision %q", d)
	}
}

// TransactionType is the kind of funds movement a user asks for.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

func (t TransactionType) Valid() bool {
	return t == TransactionDeposit || t == TransactionWithdrawal
}
