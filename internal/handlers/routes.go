package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/redirect-gateway/internal/ratelimit"
)

// VerifyLimits caps proof submissions per client. Each one costs a call to the authority.
var VerifyLimits = []ratelimit.LimitConfig{
	{Window: time.Minute, Max: 10},
	{Window: time.Hour, Max: 60},
}

// RegisterRoutes registers the gateway routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, links *LinkHandler, gates *GateHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "encode-link",
		Method:        http.MethodPost,
		Path:          "/encode",
		Summary:       "Issue a link",
		Description:   "Issues a token or encoded link for the destination given in the body or the url query parameter.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeIssue},
		},
	}, links.Encode)

	huma.Register(api, huma.Operation{
		OperationID: "encode-link-query",
		Method:      http.MethodGet,
		Path:        "/encode",
		Summary:     "Issue a link from query parameters",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeIssue},
		},
	}, links.EncodeQuery)

	huma.Register(api, huma.Operation{
		OperationID: "verify-proof",
		Method:      http.MethodPost,
		Path:        "/verify",
		Summary:     "Submit a verification proof",
		Description: "Checks the proof with the verification authority and redirects to the destination on success.",
		Tags:        []string{"Verification"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Limits: VerifyLimits},
		},
	}, gates.Verify)

	huma.Register(api, huma.Operation{
		OperationID: "challenge-page",
		Method:      http.MethodGet,
		Path:        "/redirect/{token}",
		Summary:     "Challenge page",
		Tags:        []string{"Verification"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeResolve},
		},
	}, gates.Challenge)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-link",
		Method:      http.MethodGet,
		Path:        "/{identifier}",
		Summary:     "Resolve a link",
		Description: "Serves the delivery page, or the challenge page for gated tokens.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeResolve},
		},
	}, links.Resolve)
}
