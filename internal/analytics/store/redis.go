package store

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/redirect-gateway/internal/analytics"
)

const countersKeyPrefix = "analytics:"

// Counters keeps per-link tallies in Redis hashes: analytics:<identifier> holds one field
// per event outcome, analytics:totals aggregates across links.
type Counters struct {
	client *redis.Client
	prefix string
}

func NewCounters(client *redis.Client) *Counters {
	return &Counters{client: client, prefix: countersKeyPrefix}
}

func (c *Counters) SaveIssued(ctx context.Context, event *analytics.LinkIssuedEvent) error {
	return c.incr(ctx, event.Identifier, "issued:"+event.Mode)
}

func (c *Counters) SaveResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error {
	return c.incr(ctx, event.Identifier, "resolved:"+event.Outcome)
}

func (c *Counters) SaveVerified(ctx context.Context, event *analytics.LinkVerifiedEvent) error {
	return c.incr(ctx, event.Token, "verified:"+event.Outcome)
}

// Get returns the tallies recorded for identifier.
func (c *Counters) Get(ctx context.Context, identifier string) (map[string]string, error) {
	return c.client.HGetAll(ctx, c.prefix+identifier).Result()
}

func (c *Counters) incr(ctx context.Context, identifier, field string) error {
	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, c.prefix+"totals", field, 1)

	if identifier != "" {
		pipe.HIncrBy(ctx, c.prefix+identifier, field, 1)
	}

	_, err := pipe.Exec(ctx)

	return err
}
