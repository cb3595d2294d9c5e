package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/redirect-gateway/internal/handlers"
	"github.com/serroba/redirect-gateway/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimitObserver is told about refused requests.
type RateLimitObserver interface {
	RateLimited(scope string)
}

// RateLimit returns a Huma middleware that applies policy-based rate limiting.
// It uses a ScopeResolver to determine which scopes apply to each request,
// then checks all applicable limits from the policy.
//
// Per-endpoint configuration can be provided via operation metadata using
// ratelimit.MetadataKey. This allows endpoints to:
//   - Disable rate limiting entirely (Disabled: true)
//   - Override the scope detection (Scope: ratelimit.ScopeVerify)
//   - Define custom limits (Limits: []ratelimit.LimitConfig{...})
//
// A failing limiter store lets the request through.
func RateLimit(
	api huma.API,
	limiter *ratelimit.Limiter,
	resolver ratelimit.ScopeResolver,
	observer RateLimitObserver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		key := clientKey(ctx)
		path := operationPath(ctx)

		var (
			decision ratelimit.Decision
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			decision, err = limiter.AllowCustom(ctx.Context(), key, path, cfg.Limits)
		} else {
			decision, err = limiter.Allow(ctx.Context(), key, resolver.Resolve(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			next(ctx)

			return
		}

		if !decision.Allowed {
			refuse(api, ctx, decision, path, observer, logger)

			return
		}

		next(ctx)
	}
}

func refuse(
	api huma.API,
	ctx huma.Context,
	decision ratelimit.Decision,
	path string,
	observer RateLimitObserver,
	logger *zap.Logger,
) {
	logger.Warn("rate limit exceeded",
		zap.String("path", path),
		zap.String("method", ctx.Method()),
		zap.String("scope", string(decision.Scope)),
		zap.Int64("count", decision.Count),
		zap.Int64("max", decision.Limit.Max),
		zap.Duration("window", decision.Limit.Window),
		zap.String("requestId", handlers.RequestMetaFromContext(ctx.Context()).RequestID),
	)

	if observer != nil {
		observer.RateLimited(string(decision.Scope))
	}

	retryAfter := int(decision.RetryAfter().Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}

	ctx.SetHeader("Retry-After", strconv.Itoa(retryAfter))

	msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
		decision.Count, decision.Limit.Max, decision.Limit.Window)
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}

// clientKey hashes the client IP and User-Agent. The IP comes from RequestMeta when that
// middleware ran first.
func clientKey(ctx huma.Context) string {
	ip := handlers.RequestMetaFromContext(ctx.Context()).ClientIP
	if ip == "" {
		ip = clientIP(ctx, false)
	}

	hash := sha256.Sum256([]byte(ip + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
