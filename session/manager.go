package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Manager issues, resolves and revokes client session tokens.
type Manager struct {
	store  Store
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, signer *TokenSigner, ttl time.Duration) *Manager {
	return &Manager{store: store, signer: signer, ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start stores a new session for p and returns the client token.
func (m *Manager) Start(ctx context.Context, p Principal) (string, error) {
	sessionID := uuid.NewString()
	expiresAt := m.now().Add(m.ttl)

	if err := m.store.Create(ctx, sessionID, &Data{Principal: p, ExpiresAt: expiresAt}); err != nil {
		return "", err
	}
	return m.signer.Sign(sessionID, expiresAt)
}

// Load resolves a client token. Tampered, expired and unknown tokens all
// yield ErrNotFound. Undecodable payloads are deleted and treated the same.
func (m *Manager) Load(ctx context.Context, token string) (*Data, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	sessionID, err := m.signer.Parse(token)
	if err != nil {
		return nil, ErrNotFound
	}

	data, err := m.store.Get(ctx, sessionID)
	if errors.Is(err, ErrCorrupt) {
		if delErr := m.store.Delete(ctx, sessionID); delErr != nil {
			return nil, delErr
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if data.Expired(m.now()) {
		_ = m.store.Delete(ctx, sessionID)
		return nil, ErrNotFound
	}
	return data, nil
}

// Destroy removes the session behind token. Unknown or invalid tokens are
// not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sessionID, err := m.signer.Parse(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}
	return m.store.Delete(ctx, sessionID)
}
