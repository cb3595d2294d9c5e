package gateway

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// MinTokenLength is the shortest accepted token: 22 symbols of a 64-symbol alphabet
// carry 132 bits, above the 128-bit floor.
const MinTokenLength = 22

// TokenGenerator returns a fresh random URL-safe token.
type TokenGenerator func() string

// NewTokenGenerator builds a nanoid generator over the URL-safe alphabet.
func NewTokenGenerator(length int) (TokenGenerator, error) {
	if length < MinTokenLength {
		return nil, fmt.Errorf("token length %d is below the minimum of %d", length, MinTokenLength)
	}

	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("token generator: %w", err)
	}

	return gen, nil
}
