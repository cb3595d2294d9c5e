package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/redirect-gateway/internal/gateway"
)

const cacheKeyPrefix = "tokencache:"

// RedisCacheRepository wraps a Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store  gateway.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store gateway.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: cacheKeyPrefix,
		ttl:    ttl,
	}
}

// Put stores the link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Put(ctx context.Context, link *gateway.Link) error {
	if err := r.store.Put(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// Get checks the cache first and fills it on a miss.
func (r *RedisCacheRepository) Get(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	if result, err := r.client.HGetAll(ctx, r.prefix+string(token)).Result(); err == nil {
		if link, err := linkFromFields(result); err == nil {
			return link, nil
		}
	}

	link, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// Delete removes the link from the store and invalidates the cache.
func (r *RedisCacheRepository) Delete(ctx context.Context, token gateway.Token) error {
	defer r.evict(ctx, token)

	return r.store.Delete(ctx, token)
}

// Take delegates to the store so only one caller can win, then drops the cache entry.
func (r *RedisCacheRepository) Take(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	defer r.evict(ctx, token)

	return r.store.Take(ctx, token)
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *gateway.Link) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Token)

	pipe.HSet(ctx, key, linkFields(link))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) evict(ctx context.Context, token gateway.Token) {
	_ = r.client.Del(ctx, r.prefix+string(token)).Err()
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ gateway.Repository = (*RedisCacheRepository)(nil)
