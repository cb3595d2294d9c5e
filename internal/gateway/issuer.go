package gateway

import (
	"context"
	"strings"
)

// IssueRequest describes a link to create.
type IssueRequest struct {
	Destination string
	Mode        Mode
	Protected   bool
	// Origin is the scheme and host the request arrived on, used when no base URL is configured.
	Origin string
}

// Issuer validates destinations and turns them into public gateway links.
type Issuer struct {
	strategies  map[Mode]Strategy
	defaultMode Mode
	baseURL     string
}

// NewIssuer creates an issuer. Modes missing from strategies are rejected as invalid.
func NewIssuer(strategies map[Mode]Strategy, defaultMode Mode, baseURL string) *Issuer {
	if defaultMode == "" {
		defaultMode = ModeToken
	}

	return &Issuer{
		strategies:  strategies,
		defaultMode: defaultMode,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

func (i *Issuer) Issue(ctx context.Context, req IssueRequest) (*PublicLink, error) {
	if err := ValidateDestination(req.Destination); err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = i.defaultMode
	}

	strategy, ok := i.strategies[mode]
	if !ok {
		return nil, &ValidationError{Message: MsgInvalidMode}
	}

	issued, err := strategy.Issue(ctx, req.Destination, req.Protected)
	if err != nil {
		return nil, err
	}

	return &PublicLink{
		URL:        i.origin(req.Origin) + "/" + issued.Identifier,
		Identifier: issued.Identifier,
		Mode:       issued.Mode,
		Protected:  issued.Protected,
	}, nil
}

func (i *Issuer) origin(requestOrigin string) string {
	if i.baseURL != "" {
		return i.baseURL
	}

	return strings.TrimRight(requestOrigin, "/")
}
