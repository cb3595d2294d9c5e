package handlers

import (
	"github.com/serroba/redirect-gateway/internal/analytics"
	"github.com/serroba/redirect-gateway/internal/messaging"
)

// Events are the analytics publishers used by the handlers.
type Events struct {
	Issued   messaging.Publish[analytics.LinkIssuedEvent]
	Resolved messaging.Publish[analytics.LinkResolvedEvent]
	Verified messaging.Publish[analytics.LinkVerifiedEvent]
}

// DiscardEvents returns publishers that drop every event.
func DiscardEvents() Events {
	return Events{
		Issued:   messaging.Discard[analytics.LinkIssuedEvent](),
		Resolved: messaging.Discard[analytics.LinkResolvedEvent](),
		Verified: messaging.Discard[analytics.LinkVerifiedEvent](),
	}
}
