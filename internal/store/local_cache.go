package store

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/serroba/redirect-gateway/internal/gateway"
)

// LocalCacheRepository wraps a Repository with an in-process ristretto cache.
type LocalCacheRepository struct {
	store gateway.Repository
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewLocalCacheRepository creates a cache bounded to roughly maxBytes of links.
func NewLocalCacheRepository(store gateway.Repository, maxBytes int64, ttl time.Duration) (*LocalCacheRepository, error) {
	maxCost := max(1, maxBytes)
	numCounters := max(1, maxCost/100) // ~100 bytes per entry estimate

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &LocalCacheRepository{store: store, cache: cache, ttl: ttl}, nil
}

func (r *LocalCacheRepository) Put(ctx context.Context, link *gateway.Link) error {
	if err := r.store.Put(ctx, link); err != nil {
		return err
	}

	r.set(link)

	return nil
}

func (r *LocalCacheRepository) Get(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	if val, found := r.cache.Get(string(token)); found {
		link := val.(gateway.Link)

		return &link, nil
	}

	link, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	r.set(link)

	return link, nil
}

func (r *LocalCacheRepository) Delete(ctx context.Context, token gateway.Token) error {
	defer r.evict(token)

	return r.store.Delete(ctx, token)
}

func (r *LocalCacheRepository) Take(ctx context.Context, token gateway.Token) (*gateway.Link, error) {
	defer r.evict(token)

	return r.store.Take(ctx, token)
}

// Wait blocks until pending cache writes are applied.
func (r *LocalCacheRepository) Wait() {
	r.cache.Wait()
}

// Shutdown stops the cache goroutines.
func (r *LocalCacheRepository) Shutdown() error {
	r.cache.Close()

	return nil
}

// evict drops the entry and flushes buffered writes so a pending set cannot resurrect it.
func (r *LocalCacheRepository) evict(token gateway.Token) {
	r.cache.Del(string(token))
	r.cache.Wait()
}

func (r *LocalCacheRepository) set(link *gateway.Link) {
	cost := int64(len(link.Token) + len(link.Destination))
	r.cache.SetWithTTL(string(link.Token), *link, cost, r.ttl)
}

var _ gateway.Repository = (*LocalCacheRepository)(nil)
