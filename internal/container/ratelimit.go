package container

import (
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/ratelimit"
	"github.com/serroba/redirect-gateway/internal/store"
)

const pruneInterval = time.Minute

// DefaultPolicy applies when an operation carries no limits of its own.
func DefaultPolicy() *ratelimit.Policy {
	return ratelimit.NewPolicyBuilder().
		AddLimit(ratelimit.ScopeGlobal, 1000, time.Minute).
		AddLimit(ratelimit.ScopeResolve, 300, time.Minute).
		AddLimit(ratelimit.ScopeIssue, 30, time.Minute).
		AddLimit(ratelimit.ScopeIssue, 500, 24*time.Hour).
		AddLimit(ratelimit.ScopeVerify, 20, time.Minute).
		Build()
}

// RateLimit owns the limiter and, for in-memory counters, the pruning loop.
type RateLimit struct {
	Limiter *ratelimit.Limiter
	stop    chan struct{}
	done    chan struct{}
}

func (r *RateLimit) Shutdown() error {
	if r.stop != nil {
		close(r.stop)
		<-r.done
	}

	return nil
}

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RateLimit, error) {
		opts := do.MustInvoke[*Options](i)
		policy := DefaultPolicy()

		switch opts.RateLimitStore {
		case StoreRedis:
			rc, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			return &RateLimit{Limiter: ratelimit.NewLimiter(store.NewRateLimitRedisStore(rc.Client), policy)}, nil
		case StoreMemory:
			counters := store.NewRateLimitMemoryStore()
			rl := &RateLimit{
				Limiter: ratelimit.NewLimiter(counters, policy),
				stop:    make(chan struct{}),
				done:    make(chan struct{}),
			}

			go rl.prune(counters)

			return rl, nil
		default:
			return nil, fmt.Errorf("unknown rate limit store %q", opts.RateLimitStore)
		}
	})
}

func (r *RateLimit) prune(counters *store.RateLimitMemoryStore) {
	defer close(r.done)

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			counters.Prune(24 * time.Hour)
		}
	}
}
