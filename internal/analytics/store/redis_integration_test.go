//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/serroba/redirect-gateway/internal/analytics/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	counters := store.NewCounters(client)
	id := uuid.NewString()

	t.Cleanup(func() { client.Del(ctx, "analytics:"+id) })

	require.NoError(t, counters.SaveIssued(ctx, &analytics.LinkIssuedEvent{Identifier: id, Mode: "token"}))
	require.NoError(t, counters.SaveResolved(ctx, &analytics.LinkResolvedEvent{Identifier: id, Outcome: "gated"}))
	require.NoError(t, counters.SaveResolved(ctx, &analytics.LinkResolvedEvent{Identifier: id, Outcome: "gated"}))
	require.NoError(t, counters.SaveVerified(ctx, &analytics.LinkVerifiedEvent{Token: id, Outcome: "verified"}))
	require.NoError(t, counters.SaveResolved(ctx, &analytics.LinkResolvedEvent{Outcome: "not_found"}))

	tally, err := counters.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"issued:token":      "1",
		"resolved:gated":    "2",
		"verified:verified": "1",
	}, tally)
}
