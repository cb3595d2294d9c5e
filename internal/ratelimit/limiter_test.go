package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/redirect-gateway/internal/ratelimit"
	"github.com/serroba/redirect-gateway/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Record(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("store down")
}

func TestLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeVerify}

	t.Run("allows up to the limit then denies", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeVerify, 3, time.Minute).
			Build()
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), policy)

		for range 3 {
			d, err := limiter.Allow(ctx, "client", scopes)
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		}

		d, err := limiter.Allow(ctx, "client", scopes)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, ratelimit.ScopeVerify, d.Scope)
		assert.Equal(t, int64(4), d.Count)
		assert.Equal(t, time.Minute, d.RetryAfter())
	})

	t.Run("clients are tracked independently", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 1, time.Minute).Build()
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), policy)

		a, err := limiter.Allow(ctx, "a", scopes)
		require.NoError(t, err)

		b, err := limiter.Allow(ctx, "b", scopes)
		require.NoError(t, err)

		assert.True(t, a.Allowed)
		assert.True(t, b.Allowed)
	})

	t.Run("every window of a scope counts", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().
			AddLimit(ratelimit.ScopeGlobal, 100, time.Minute).
			AddLimit(ratelimit.ScopeGlobal, 2, time.Hour).
			Build()
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), policy)

		for range 2 {
			_, _ = limiter.Allow(ctx, "client", scopes)
		}

		d, err := limiter.Allow(ctx, "client", scopes)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, time.Hour, d.Limit.Window)
	})

	t.Run("store errors surface", func(t *testing.T) {
		policy := ratelimit.NewPolicyBuilder().AddLimit(ratelimit.ScopeGlobal, 1, time.Minute).Build()
		limiter := ratelimit.NewLimiter(failingStore{}, policy)

		_, err := limiter.Allow(ctx, "client", scopes)

		require.Error(t, err)
	})

	t.Run("custom route limits", func(t *testing.T) {
		limiter := ratelimit.NewLimiter(store.NewRateLimitMemoryStore(), ratelimit.NewPolicyBuilder().Build())
		limits := []ratelimit.LimitConfig{{Max: 1, Window: time.Minute}}

		first, err := limiter.AllowCustom(ctx, "client", "/verify", limits)
		require.NoError(t, err)

		second, err := limiter.AllowCustom(ctx, "client", "/verify", limits)
		require.NoError(t, err)

		assert.True(t, first.Allowed)
		assert.False(t, second.Allowed)
	})
}

func TestPolicyBuilder_IgnoresNonPositive(t *testing.T) {
	policy := ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeIssue, 0, time.Minute).
		AddLimit(ratelimit.ScopeIssue, 5, 0).
		Build()

	assert.Empty(t, policy.Limits[ratelimit.ScopeIssue])
}
