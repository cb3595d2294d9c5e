package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/redirect-gateway/internal/handlers"
)

// RequestIDHeader carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// RequestMeta is a middleware that adds client IP, user-agent, referrer, origin and
// request ID to the request context. X-Forwarded-For, X-Real-IP, X-Forwarded-Host and
// X-Forwarded-Proto are only read when trustProxy is set.
func RequestMeta(_ huma.API, trustProxy bool) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx, trustProxy),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
			Origin:    origin(ctx, trustProxy),
			RequestID: requestID(ctx),
		}

		ctx.SetHeader(RequestIDHeader, meta.RequestID)

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// clientIP extracts the client IP from the request, considering proxies when trusted.
func clientIP(ctx huma.Context, trustProxy bool) string {
	if trustProxy {
		if xff := ctx.Header("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}

			return strings.TrimSpace(xff)
		}

		if xri := ctx.Header("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	addr := ctx.RemoteAddr()

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}

func origin(ctx huma.Context, trustProxy bool) string {
	var host string
	if trustProxy {
		host = ctx.Header("X-Forwarded-Host")
	}

	if host == "" {
		host = ctx.Host()
	}

	if host == "" {
		return ""
	}

	scheme := "http"

	switch proto := strings.ToLower(ctx.Header("X-Forwarded-Proto")); {
	case trustProxy && (proto == "https" || proto == "http"):
		scheme = proto
	case ctx.TLS() != nil:
		scheme = "https"
	}

	return scheme + "://" + host
}

// requestID keeps a caller-supplied ID when it is printable and short, otherwise mints one.
func requestID(ctx huma.Context) string {
	id := strings.TrimSpace(ctx.Header(RequestIDHeader))
	if id == "" || len(id) > maxRequestIDLength || strings.ContainsFunc(id, notPrintable) {
		return uuid.NewString()
	}

	return id
}

func notPrintable(r rune) bool {
	return r < 0x21 || r > 0x7e
}
