package gateway

import (
	"errors"

	"github.com/serroba/redirect-gateway/internal/codec"
)

var (
	// ErrNotFound is returned when a token is absent or expired.
	ErrNotFound = errors.New("link not found")

	// ErrVerificationFailed covers rejected proofs as well as an unreachable verification authority.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrTokenExhausted is returned when no unused token could be generated.
	ErrTokenExhausted = errors.New("could not generate an unused token")
)

// Messages carried by ValidationError.
const (
	MsgInvalidURL          = "missing or invalid url"
	MsgInvalidMode         = "invalid mode"
	MsgProtectionNeedsMode = "protection requires token mode"
)

// ValidationError reports user-correctable input at issuance.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// IsMiss reports whether err means the identifier does not resolve: a lookup miss or a
// malformed encoded identifier. Both are presented identically.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, codec.ErrDecode)
}
