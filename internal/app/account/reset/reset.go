package reset

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"time"

	customErrors "github.com/jmorelos/accounts-backend/internal/domain/account/errors"
	"github.com/jmorelos/accounts-backend/internal/domain/account/model"

	"github.com/jmorelos/accounts-backend/internal/app/account/hash"
)

const (
	// TokenBytes is the entropy of a plaintext token. The token string is
	// hex, twice as many characters.
	TokenBytes = 32

	// DefaultTokenTTL is how long an unused reset token remains valid.
	DefaultTokenTTL = time.Hour
)

// Config holds Manager knobs. The zero value is a valid configuration.
type Config struct {
	// TokenTTL overrides DefaultTokenTTL.
	TokenTTL time.Duration

	// Now is the time source, for tests. Defaults to time.Now.
	Now func() time.Time

	// Rand is the entropy source, for tests. Defaults to crypto/rand.Reader.
	Rand io.Reader
}

// Manager issues and consumes single-use, time-limited password-reset
// tokens. Only the token's digest is ever written to the user record; the
// plaintext exists solely in the return value of Issue.
type Manager struct {
	hasher hash.Hasher
	ttl    time.Duration
	now    func() time.Time
	rand   io.Reader
}

func New(h hash.Hasher, cfg Config) *Manager {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	return &Manager{hasher: h, ttl: cfg.TokenTTL, now: cfg.Now, rand: cfg.Rand}
}

// Issue generates a fresh token, stores its digest and expiry on u and
// returns the plaintext. Any previously outstanding token is overwritten
// and thereby invalidated. The caller is responsible for persisting u.
func (m *Manager) Issue(u *model.User) (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := io.ReadFull(m.rand, buf); err != nil {
		return "", customErrors.WrapInternal(err, "Issue")
	}
	token := hex.EncodeToString(buf)

	digest, err := m.hasher.Hash(token)
	if err != nil {
		return "", customErrors.WrapInternal(err, "Issue")
	}

	expiresAt := m.now().Add(m.ttl)
	u.ResetTokenHash = &digest
	u.ResetTokenExpiresAt = &expiresAt
	return token, nil
}

// Consume validates candidate against the outstanding token on u and, on
// success, clears both token fields so the token cannot be used again.
// Checks run in a fixed order: existence, expiry, match.
func (m *Manager) Consume(u *model.User, candidate string) error {
	if !u.HasResetToken() {
		return customErrors.ErrNoTokenIssued
	}
	if m.now().After(*u.ResetTokenExpiresAt) {
		return customErrors.ErrTokenExpired
	}

	ok, err := m.hasher.Verify(candidate, *u.ResetTokenHash)
	if err != nil {
		return customErrors.WrapInternal(err, "Consume")
	}
	if !ok {
		return customErrors.ErrTokenMismatch
	}

	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
	return nil
}
