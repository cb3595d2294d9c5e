package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultVerifyTimeout bounds a single call to the verification authority.
const DefaultVerifyTimeout = 5 * time.Second

// Verifier checks a human-verification proof with the external authority.
// A nil error means the proof was accepted.
type Verifier interface {
	Verify(ctx context.Context, proof, remoteIP string) error
}

// Challenge is the data a challenge page needs. It never holds the destination.
type Challenge struct {
	Token   string
	SiteKey string
}

// Gate withholds gated destinations until a proof has been accepted.
type Gate struct {
	resolver *Resolver
	verifier Verifier
	siteKey  string
	timeout  time.Duration
}

func NewGate(resolver *Resolver, verifier Verifier, siteKey string, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}

	return &Gate{
		resolver: resolver,
		verifier: verifier,
		siteKey:  siteKey,
		timeout:  timeout,
	}
}

func (g *Gate) Challenge(ctx context.Context, token string) (*Challenge, error) {
	ok, err := g.resolver.Exists(ctx, Token(token))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrNotFound
	}

	return &Challenge{Token: token, SiteKey: g.siteKey}, nil
}

// ChallengeFor builds the challenge for a resolution the Resolver already gated.
func (g *Gate) ChallengeFor(res *Resolution) *Challenge {
	return &Challenge{Token: res.Identifier, SiteKey: g.siteKey}
}

// Verify checks the proof before touching the store, so an unverified client can only
// ever observe ErrVerificationFailed.
func (g *Gate) Verify(ctx context.Context, token, proof, remoteIP string) (*Resolution, error) {
	if strings.TrimSpace(proof) == "" {
		return nil, fmt.Errorf("%w: empty proof", ErrVerificationFailed)
	}

	vctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.verifier.Verify(vctx, proof, remoteIP); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	return g.resolver.Release(ctx, Token(token))
}
