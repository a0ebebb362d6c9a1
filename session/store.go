package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrCorrupt is returned for stored payloads that cannot be decoded,
	// e.g. after the encryption key was rotated.
	ErrCorrupt = errors.New("session payload corrupt")
)

// Data is what the server keeps for one session id.
type Data struct {
	Principal Principal `json:"principal"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (d *Data) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// Store persists session data keyed by an opaque session id.
// Get returns ErrNotFound for unknown or expired ids and ErrCorrupt for
// payloads it cannot decode.
type Store interface {
	Create(ctx context.Context, sessionID string, data *Data) error
	Get(ctx context.Context, sessionID string) (*Data, error)
	Delete(ctx context.Context, sessionID string) error
}
