// Package codec turns destination URLs into compact, URL-safe identifiers and back.
//
// The encoding is base64url without padding. It is reversible by anyone and carries no
// secrecy; it only keeps the destination out of plain sight and fits in one path segment.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrDecode is returned for any identifier that is not a well-formed encoded destination.
var ErrDecode = errors.New("malformed identifier")

// Encode returns the padding-stripped base64url form of the destination.
func Encode(destination string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(destination))
}

// Decode restores padding and decodes an identifier produced by Encode.
func Decode(identifier string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("%w: empty", ErrDecode)
	}

	if !IsURLSafe(identifier) {
		return "", fmt.Errorf("%w: invalid character", ErrDecode)
	}

	padding := (4 - len(identifier)%4) % 4
	if padding == 3 {
		return "", fmt.Errorf("%w: invalid length", ErrDecode)
	}

	raw, err := base64.URLEncoding.DecodeString(identifier + strings.Repeat("=", padding))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: not utf-8 text", ErrDecode)
	}

	return string(raw), nil
}

// IsURLSafe reports whether s only contains characters of the base64url alphabet.
func IsURLSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}

	return true
}
