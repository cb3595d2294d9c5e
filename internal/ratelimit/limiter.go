package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Decision is the outcome of a rate limit check.
// When Allowed is false, Scope, Limit and Count describe the limit that was hit.
type Decision struct {
	Allowed bool
	Scope   Scope
	Limit   LimitConfig
	Count   int64
}

// RetryAfter is the worst-case wait before the exceeded window frees a slot.
func (d Decision) RetryAfter() time.Duration {
	if d.Allowed {
		return 0
	}

	return d.Limit.Window
}

// Limiter enforces a Policy over a sliding-window Store.
type Limiter struct {
	store  Store
	policy *Policy
}

func NewLimiter(store Store, policy *Policy) *Limiter {
	return &Limiter{store: store, policy: policy}
}

// Allow records the request against every limit of every scope and stops at the first
// exceeded one.
func (l *Limiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (Decision, error) {
	for _, scope := range scopes {
		decision, err := l.check(ctx, clientKey, scope, l.policy.Limits[scope])
		if err != nil || !decision.Allowed {
			return decision, err
		}
	}

	return Decision{Allowed: true}, nil
}

// AllowCustom applies limits that replace the policy for one route.
func (l *Limiter) AllowCustom(ctx context.Context, clientKey, route string, limits []LimitConfig) (Decision, error) {
	return l.check(ctx, clientKey, Scope("route:"+route), limits)
}

func (l *Limiter) check(ctx context.Context, clientKey string, scope Scope, limits []LimitConfig) (Decision, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return Decision{}, fmt.Errorf("record %s: %w", scope, err)
		}

		if count > limit.Max {
			return Decision{Scope: scope, Limit: limit, Count: count}, nil
		}
	}

	return Decision{Allowed: true}, nil
}
