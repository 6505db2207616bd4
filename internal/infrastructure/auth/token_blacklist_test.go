package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/codeforge/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_RevokeByJTI(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-logout", time.Hour))

	t.Run("revoked token is blacklisted", func(t *testing.T) {
		revoked, err := blacklist.IsBlacklisted(ctx, "jti-logout")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("other tokens are unaffected", func(t *testing.T) {
		revoked, err := blacklist.IsBlacklisted(ctx, "jti-still-active")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revocation lapses with the token TTL", func(t *testing.T) {
		require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-short", time.Millisecond))
		time.Sleep(10 * time.Millisecond)

		revoked, err := blacklist.IsBlacklisted(ctx, "jti-short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestInMemoryTokenBlacklist_RevokeAllUserTokens(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedEarlier := time.Now().Add(-time.Hour)

	invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedEarlier)
	require.NoError(t, err)
	assert.False(t, invalidated, "no invalidation recorded yet")

	require.NoError(t, blacklist.AddUserTokensToBlacklist(ctx, "user-1", time.Hour))

	t.Run("tokens issued before the invalidation are rejected", func(t *testing.T) {
		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", issuedEarlier)
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("tokens issued afterwards stay valid", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-1", time.Now())
		require.NoError(t, err)
		assert.False(t, invalidated)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		invalidated, err := blacklist.IsUserTokenInvalidated(ctx, "user-2", issuedEarlier)
		require.NoError(t, err)
		assert.False(t, invalidated)
	})
}

func TestInMemoryTokenBlacklist_ManyRevocations(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, blacklist.AddToBlacklist(ctx, fmt.Sprintf("jti-%d", i), time.Hour))
	}
	for i := 0; i < 20; i++ {
		jti := fmt.Sprintf("jti-%d", i)
		revoked, err := blacklist.IsBlacklisted(ctx, jti)
		require.NoError(t, err)
		assert.True(t, revoked, "token %s should be revoked", jti)
	}

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-never-revoked")
	require.NoError(t, err)
	assert.False(t, revoked)
}
