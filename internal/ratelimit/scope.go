package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a limit.
type Scope string

const (
	// ScopeGlobal applies to every request.
	ScopeGlobal Scope = "global"
	// ScopeResolve covers identifier lookups and challenge pages.
	ScopeResolve Scope = "resolve"
	// ScopeIssue covers link creation.
	ScopeIssue Scope = "issue"
	// ScopeVerify covers proof submissions. Each one costs a call to the verification authority.
	ScopeVerify Scope = "verify"
)

// MetadataKey is the huma.Operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig tunes rate limiting for one operation.
type EndpointConfig struct {
	// Scope replaces the method-derived scope. Ignored when Limits is set.
	Scope Scope

	// Limits replaces the policy entirely for this operation.
	Limits []LimitConfig

	// Disabled skips rate limiting.
	Disabled bool
}

// ScopeResolver picks the scopes that apply to a request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// OperationScopeResolver reads the scope from operation metadata and falls back to the
// HTTP method: safe methods resolve, everything else issues.
type OperationScopeResolver struct{}

func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeResolve}
	default:
		return []Scope{ScopeGlobal, ScopeIssue}
	}
}

// GetEndpointConfig returns the operation's EndpointConfig, or nil.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
