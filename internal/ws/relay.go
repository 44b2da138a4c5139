package ws

import (
	"log/slog"
)

// EventNewMessage delivers a freshly persisted message to its recipient.
const EventNewMessage = "newMessage"

// Relay pushes domain events to a specific user, best effort. Delivery is
// at-most-once: an offline recipient means the event is dropped, never
// queued. Durability of the underlying fact is the store's job, not ours.
type Relay struct {
	reg *Registry
	log *slog.Logger
}

func NewRelay(reg *Registry, log *slog.Logger) *Relay {
	return &Relay{reg: reg, log: log}
}

// Notify delivers payload tagged with the event name to userID if they are
// online. Silent no-op otherwise. Never returns an error: relay outcomes are
// invisible to callers by design.
func (r *Relay) Notify(userID, event string, payload any) {
	c := r.reg.lookup(userID)
	if c == nil {
		r.log.Debug("recipient offline, event dropped", "userId", userID, "event", event)
		return
	}
	if err := c.Send(Event{Event: event, Data: payload}); err != nil {
		r.log.Warn("push failed", "userId", userID, "event", event, "error", err)
	}
}
