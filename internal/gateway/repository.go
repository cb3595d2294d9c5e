package gateway

import "context"

// Repository is the token store. Implementations must be safe for concurrent use.
type Repository interface {
	// Put stores the link, overwriting any record with the same token.
	Put(ctx context.Context, link *Link) error

	// Get returns ErrNotFound when the token is absent or expired.
	Get(ctx context.Context, token Token) (*Link, error)

	// Delete removes the token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token Token) error

	// Take atomically returns and removes the link, or ErrNotFound.
	Take(ctx context.Context, token Token) (*Link, error)
}
