package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/redirect-gateway/internal/codec"
)

// ResolverOptions toggles resolution behaviour.
type ResolverOptions struct {
	// AllowEncoded enables decoding identifiers that are not stored tokens.
	AllowEncoded bool
	// RequireVerification gates every token link, protected or not.
	RequireVerification bool
	// SingleUse removes a token when it is released after verification.
	SingleUse bool
}

// Resolver maps identifiers to destinations.
type Resolver struct {
	store Repository
	opts  ResolverOptions
}

func NewResolver(store Repository, opts ResolverOptions) *Resolver {
	return &Resolver{store: store, opts: opts}
}

// Resolve looks the identifier up as a token first and falls back to decoding it.
// A gated resolution never carries the destination.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Resolution, error) {
	if identifier == "" || !codec.IsURLSafe(identifier) {
		return nil, codec.ErrDecode
	}

	link, err := r.store.Get(ctx, Token(identifier))

	switch {
	case err == nil:
		res := &Resolution{Identifier: identifier, Mode: ModeToken}
		if link.Protected || r.opts.RequireVerification {
			res.Gated = true

			return res, nil
		}

		res.Destination = link.Destination

		return res, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if !r.opts.AllowEncoded {
		return nil, ErrNotFound
	}

	destination, err := codec.Decode(identifier)
	if err != nil {
		return nil, err
	}

	if err = ValidateDestination(destination); err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrDecode, err)
	}

	return &Resolution{Identifier: identifier, Mode: ModeEncoded, Destination: destination}, nil
}

// Exists reports whether a token is stored.
func (r *Resolver) Exists(ctx context.Context, token Token) (bool, error) {
	if !validToken(token) {
		return false, nil
	}

	_, err := r.store.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// Release returns the destination of a token regardless of its gate. Only call it once the
// caller has been verified. With single-use on, the record is removed atomically.
func (r *Resolver) Release(ctx context.Context, token Token) (*Resolution, error) {
	if !validToken(token) {
		return nil, ErrNotFound
	}

	var (
		link *Link
		err  error
	)

	if r.opts.SingleUse {
		link, err = r.store.Take(ctx, token)
	} else {
		link, err = r.store.Get(ctx, token)
	}

	if err != nil {
		return nil, err
	}

	return &Resolution{
		Identifier:  string(link.Token),
		Mode:        ModeToken,
		Destination: link.Destination,
	}, nil
}

func validToken(token Token) bool {
	return token != "" && codec.IsURLSafe(string(token))
}
