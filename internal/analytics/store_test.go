package analytics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	issued, resolved, verified int
	err                        error
}

func (c *countingStore) SaveIssued(context.Context, *analytics.LinkIssuedEvent) error {
	c.issued++

	return c.err
}

func (c *countingStore) SaveResolved(context.Context, *analytics.LinkResolvedEvent) error {
	c.resolved++

	return c.err
}

func (c *countingStore) SaveVerified(context.Context, *analytics.LinkVerifiedEvent) error {
	c.verified++

	return c.err
}

func TestFanout(t *testing.T) {
	ctx := context.Background()

	t.Run("writes to every store", func(t *testing.T) {
		a, b := &countingStore{}, &countingStore{}
		fanout := analytics.Fanout{a, b}

		require.NoError(t, fanout.SaveIssued(ctx, &analytics.LinkIssuedEvent{}))
		require.NoError(t, fanout.SaveResolved(ctx, &analytics.LinkResolvedEvent{}))
		require.NoError(t, fanout.SaveVerified(ctx, &analytics.LinkVerifiedEvent{}))

		for _, s := range []*countingStore{a, b} {
			assert.Equal(t, 1, s.issued)
			assert.Equal(t, 1, s.resolved)
			assert.Equal(t, 1, s.verified)
		}
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		failing := &countingStore{err: errors.New("down")}
		after := &countingStore{}

		err := analytics.Fanout{failing, after}.SaveResolved(ctx, &analytics.LinkResolvedEvent{})

		require.Error(t, err)
		assert.Zero(t, after.resolved)
	})
}
