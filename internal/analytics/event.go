package analytics

import "time"

// Topics events are published on.
const (
	TopicLinkIssued   = "link.issued"
	TopicLinkResolved = "link.resolved"
	TopicLinkVerified = "link.verified"
)

// LinkIssuedEvent is emitted after a link is created.
type LinkIssuedEvent struct {
	Identifier string    `json:"identifier"`
	Mode       string    `json:"mode"`
	Protected  bool      `json:"protected"`
	IssuedAt   time.Time `json:"issuedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	RequestID  string    `json:"requestId,omitempty"`
}

// LinkResolvedEvent is emitted for every identifier lookup, including misses.
// Misses do not carry the raw identifier.
type LinkResolvedEvent struct {
	Identifier string    `json:"identifier,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Outcome    string    `json:"outcome"`
	ResolvedAt time.Time `json:"resolvedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
}

// LinkVerifiedEvent is emitted for every proof submission.
type LinkVerifiedEvent struct {
	Token      string    `json:"token"`
	Outcome    string    `json:"outcome"`
	VerifiedAt time.Time `json:"verifiedAt"`
	ClientIP   string    `json:"clientIp"`
	RequestID  string    `json:"requestId,omitempty"`
}
