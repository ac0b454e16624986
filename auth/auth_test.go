package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tenancy-engine/auth"
	"golang.org/x/crypto/bcrypt"
)

// credentials is an in-memory CredentialStore.
type credentials struct {
	mu  sync.Mutex
	ops map[string]auth.Operator
}

func newCredentials() *credentials {
	return &credentials{ops: make(map[string]auth.Operator)}
}

func (c *credentials) GetOperator(_ context.Context, username string) (auth.Operator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op, ok := c.ops[username]
	if !ok {
		return auth.Operator{}, auth.ErrNoOperator
	}
	return op, nil
}

func (c *credentials) CountOperators(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops), nil
}

func (c *credentials) SaveOperator(_ context.Context, op auth.Operator) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[op.Username] = op
	return nil
}

func newService() (*auth.Service, *credentials) {
	store := newCredentials()
	return auth.NewService(store).WithCost(bcrypt.MinCost), store
}

func TestBootstrap_OnlyWhenEmpty(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	created, err := svc.Bootstrap(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Bootstrap(ctx, "other", "changeme")
	require.NoError(t, err)
	assert.False(t, created, "an existing operator blocks bootstrap")

	n, _ := store.CountOperators(ctx)
	assert.Equal(t, 1, n)
	assert.True(t, strings.HasPrefix(store.ops["admin"].PasswordHash, "$2"), "stored hashed")
}

func TestVerify(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "admin", "s3cret"))

	assert.NoError(t, svc.Verify(ctx, "admin", "s3cret"))
	assert.ErrorIs(t, svc.Verify(ctx, "admin", "wrong"), auth.ErrInvalidCredentials)
	assert.ErrorIs(t, svc.Verify(ctx, "nobody", "s3cret"), auth.ErrInvalidCredentials)
}

func TestVerify_UpgradesLegacyPlaintext(t *testing.T) {
	// GIVEN: An operator row holding a plaintext password
	// WHEN: Verified with the right password
	// THEN: Accepted and the row is re-hashed; a wrong password is rejected

	svc, store := newService()
	ctx := context.Background()
	require.NoError(t, store.SaveOperator(ctx, auth.Operator{Username: "admin", PasswordHash: "legacy"}))

	assert.ErrorIs(t, svc.Verify(ctx, "admin", "nope"), auth.ErrInvalidCredentials)
	assert.Equal(t, "legacy", store.ops["admin"].PasswordHash)

	require.NoError(t, svc.Verify(ctx, "admin", "legacy"))
	hash := store.ops["admin"].PasswordHash
	assert.NotEqual(t, "legacy", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("legacy")))

	assert.NoError(t, svc.Verify(ctx, "admin", "legacy"), "still valid after upgrade")
}

func TestChangePassword(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "admin", "old-pass"))

	assert.ErrorIs(t, svc.ChangePassword(ctx, "admin", "wrong", "new-pass"), auth.ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(ctx, "admin", "old-pass", "new-pass"))

	assert.ErrorIs(t, svc.Verify(ctx, "admin", "old-pass"), auth.ErrInvalidCredentials)
	assert.NoError(t, svc.Verify(ctx, "admin", "new-pass"))
}

func TestSet_RequiresUserAndPassword(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	assert.Error(t, svc.Set(ctx, " ", "pw"))
	assert.Error(t, svc.Set(ctx, "admin", ""))
	assert.Empty(t, store.ops)
}
