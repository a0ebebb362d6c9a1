package utils

import (
	"bytes"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountMissing     = errors.New("amount is required")
	ErrAmountNotNumeric  = errors.New("amount must be a number")
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
)

// ParseAmount parses a raw JSON value into a positive decimal. Only bare
// JSON numbers are accepted; strings, booleans and null are rejected.
func ParseAmount(raw []byte) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, ErrAmountMissing
	}

	c := raw[0]
	if c != '-' && (c < '0' || c > '9') {
		return decimal.Zero, ErrAmountNotNumeric
	}

	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, ErrAmountNotNumeric
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	return amount, nil
}
