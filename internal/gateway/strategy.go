package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/redirect-gateway/internal/codec"
)

// DefaultMaxAttempts bounds token regeneration on collision.
const DefaultMaxAttempts = 5

// Strategy produces an identifier for an already validated destination.
type Strategy interface {
	Issue(ctx context.Context, destination string, protected bool) (*Issued, error)
}

// TokenStrategy stores a new random token for every issued link.
type TokenStrategy struct {
	store       Repository
	generate    TokenGenerator
	maxAttempts int
}

// NewTokenStrategy creates a stateful strategy backed by the store.
func NewTokenStrategy(store Repository, generator TokenGenerator) *TokenStrategy {
	return &TokenStrategy{
		store:       store,
		generate:    generator,
		maxAttempts: DefaultMaxAttempts,
	}
}

func (s *TokenStrategy) Issue(ctx context.Context, destination string, protected bool) (*Issued, error) {
	for range s.maxAttempts {
		token := Token(s.generate())

		_, err := s.store.Get(ctx, token)
		if err == nil {
			continue
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		link := &Link{
			Token:       token,
			Destination: destination,
			Protected:   protected,
			CreatedAt:   time.Now().UTC(),
		}

		if err = s.store.Put(ctx, link); err != nil {
			return nil, err
		}

		return &Issued{
			Identifier:  string(link.Token),
			Mode:        ModeToken,
			Destination: link.Destination,
			Protected:   link.Protected,
			CreatedAt:   link.CreatedAt,
		}, nil
	}

	return nil, ErrTokenExhausted
}

// EncodedStrategy embeds the destination in the identifier. Nothing is persisted, so
// encoded links cannot be protected.
type EncodedStrategy struct{}

// NewEncodedStrategy creates a stateless strategy.
func NewEncodedStrategy() *EncodedStrategy {
	return &EncodedStrategy{}
}

func (s *EncodedStrategy) Issue(_ context.Context, destination string, protected bool) (*Issued, error) {
	if protected {
		return nil, &ValidationError{Message: MsgProtectionNeedsMode}
	}

	return &Issued{
		Identifier:  codec.Encode(destination),
		Mode:        ModeEncoded,
		Destination: destination,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
