package ws

import (
	"log/slog"
	"sort"
	"sync"
)

// EventOnlineUsers carries the full list of online user IDs. Broadcast to
// every client on each connect and disconnect; clients always receive a
// complete snapshot, never a diff.
const EventOnlineUsers = "getOnlineUser"

// A Sender is a live connection handle the registry can push events to.
type Sender interface {
	Send(ev Event) error
	Close() error
}

// Registry tracks which users currently hold a live connection. One entry per
// user: a second connection for the same user overwrites the first
// (last-connect-wins; multi-device is a known gap, kept as-is on purpose).
//
// All read-modify-write operations and the snapshot broadcast they trigger
// run under one mutex, so no client ever observes snapshots out of order.
type Registry struct {
	log *slog.Logger

	mu    sync.Mutex
	conns map[string]Sender
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:   log,
		conns: make(map[string]Sender),
	}
}

// Register inserts or overwrites the connection for userID and broadcasts the
// new online snapshot to everyone. Returns the replaced handle, if any, so
// the caller can close it.
func (r *Registry) Register(userID string, c Sender) Sender {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := r.conns[userID]
	r.conns[userID] = c
	r.log.Info("user connected", "userId", userID, "online", len(r.conns))
	r.broadcastOnlineLocked()
	return replaced
}

// Unregister removes the entry for userID, but only if it still maps to c.
// This keeps a stale connection's teardown from evicting a newer one. A nil c
// removes unconditionally. No-op when the user is not registered.
func (r *Registry) Unregister(userID string, c Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.conns[userID]
	if !ok || (c != nil && cur != c) {
		return
	}
	delete(r.conns, userID)
	r.log.Info("user disconnected", "userId", userID, "online", len(r.conns))
	r.broadcastOnlineLocked()
}

// IsOnline reports whether userID holds a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[userID]
	return ok
}

// OnlineUserIDs returns the IDs of all connected users, sorted.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// lookup returns the connection for userID, or nil when offline.
func (r *Registry) lookup(userID string) Sender {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[userID]
}

func (r *Registry) snapshotLocked() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) broadcastOnlineLocked() {
	ev := Event{Event: EventOnlineUsers, Data: r.snapshotLocked()}
	for id, c := range r.conns {
		if err := c.Send(ev); err != nil {
			// Dead connection; its read loop will unregister it shortly.
			r.log.Debug("dropping online-list push", "userId", id, "error", err)
		}
	}
}
