package gateway

import "time"

// Token is the opaque key of a stored link.
type Token string

// Mode selects how an identifier is produced and resolved.
type Mode string

const (
	// ModeToken stores a random token that maps to the destination.
	ModeToken Mode = "token"
	// ModeEncoded embeds the destination itself, base64url encoded. Nothing is stored.
	ModeEncoded Mode = "encoded"
)

// Link is a persisted token record.
type Link struct {
	Token       Token
	Destination string
	Protected   bool
	CreatedAt   time.Time
}

// Issued is what a strategy hands back after producing an identifier.
type Issued struct {
	Identifier  string
	Mode        Mode
	Destination string
	Protected   bool
	CreatedAt   time.Time
}

// PublicLink is the gateway URL returned to link creators.
type PublicLink struct {
	URL        string
	Identifier string
	Mode       Mode
	Protected  bool
}

// Resolution is the outcome of resolving an identifier.
// Destination is empty when Gated is true.
type Resolution struct {
	Identifier  string
	Mode        Mode
	Destination string
	Gated       bool
}
