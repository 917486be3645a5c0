package reset

import (
	"testing"
	"time"

	authErrors "github.com/jmorelos/accounts-backend/internal/domain/account/errors"
	"github.com/jmorelos/accounts-backend/internal/domain/account/model"

	"github.com/jmorelos/accounts-backend/internal/app/account/hash"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, now func() time.Time) *Manager {
	t.Helper()
	return New(hash.NewBcryptHasher(bcryptMinCost()), Config{Now: now})
}

// Low cost keeps the tests fast; the digest format is identical.
func bcryptMinCost() int { return 4 }

func TestManager_IssueAndConsume(t *testing.T) {
	m := newManager(t, nil)
	u := model.User{Email: "a@example.com"}

	token, err := m.Issue(&u)
	require.NoError(t, err)
	require.Len(t, token, 2*TokenBytes)
	require.True(t, u.HasResetToken())
	require.NotEqual(t, token, *u.ResetTokenHash)

	require.NoError(t, m.Consume(&u, token))
	require.False(t, u.HasResetToken())
}

func TestManager_ConsumeIsSingleUse(t *testing.T) {
	m := newManager(t, nil)
	u := model.User{}

	token, err := m.Issue(&u)
	require.NoError(t, err)
	require.NoError(t, m.Consume(&u, token))

	err = m.Consume(&u, token)
	require.True(t, authErrors.IsNoTokenIssued(err))
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestManager_ReissueInvalidatesPrior(t *testing.T) {
	m := newManager(t, nil)
	u := model.User{}

	first, err := m.Issue(&u)
	require.NoError(t, err)
	second, err := m.Issue(&u)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	err = m.Consume(&u, first)
	require.True(t, authErrors.IsTokenMismatch(err))
	require.True(t, authErrors.IsInvalidToken(err))

	require.NoError(t, m.Consume(&u, second))
}

func TestManager_ConsumeExpired(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }
	m := newManager(t, now)
	u := model.User{}

	token, err := m.Issue(&u)
	require.NoError(t, err)

	// Exactly at the deadline the token is still good.
	current = current.Add(DefaultTokenTTL)
	require.NoError(t, m.Consume(&u, token))

	token, err = m.Issue(&u)
	require.NoError(t, err)
	current = current.Add(DefaultTokenTTL + time.Second)

	err = m.Consume(&u, token)
	require.True(t, authErrors.IsTokenExpired(err))
	require.True(t, u.HasResetToken(), "failed attempt must not clear the token")
}

func TestManager_CheckOrder(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }
	m := newManager(t, now)

	// No token at all wins over everything.
	err := m.Consume(&model.User{}, "anything")
	require.True(t, authErrors.IsNoTokenIssued(err))

	// Expiry is reported before a mismatch is even checked.
	u := model.User{}
	_, err = m.Issue(&u)
	require.NoError(t, err)
	current = current.Add(2 * DefaultTokenTTL)

	err = m.Consume(&u, "definitely-wrong")
	require.True(t, authErrors.IsTokenExpired(err))
}

func TestManager_MismatchKeepsToken(t *testing.T) {
	m := newManager(t, nil)
	u := model.User{}

	token, err := m.Issue(&u)
	require.NoError(t, err)

	err = m.Consume(&u, "wrong")
	require.True(t, authErrors.IsTokenMismatch(err))
	require.True(t, u.HasResetToken())

	require.NoError(t, m.Consume(&u, token))
}
