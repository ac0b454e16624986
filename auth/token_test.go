package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/auth"
)

func TestTokens_IssueAndParse(t *testing.T) {
	tokens, err := auth.NewTokens("secret", time.Hour)
	require.NoError(t, err)

	s, err := tokens.Issue("admin")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	user, err := tokens.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)

	other, err := tokens.Issue("admin")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID, "each session has its own id")
}

func TestTokens_Expired(t *testing.T) {
	// GIVEN: A token issued two hours ago with a one-hour lifetime
	// WHEN: Parsed now
	// THEN: Rejected

	issuedAt := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)
	tokens, err := auth.NewTokens("secret", time.Hour)
	require.NoError(t, err)
	tokens.WithClock(func() time.Time { return issuedAt })

	s, err := tokens.Issue("admin")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), s.ExpiresAt)

	tokens.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	_, err = tokens.Parse(s.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_ForeignSecret(t *testing.T) {
	a, err := auth.NewTokens("secret-a", time.Hour)
	require.NoError(t, err)
	b, err := auth.NewTokens("", time.Hour)
	require.NoError(t, err)

	s, err := a.Issue("admin")
	require.NoError(t, err)

	_, err = b.Parse(s.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	_, err = a.Parse("not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
