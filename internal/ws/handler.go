package ws

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if _, any := allowed["*"]; any || len(allowed) == 0 {
		return func(r *http.Request) bool {
			return true
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			// Non-browser client; nothing to enforce.
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// MakeHandler returns the HTTP handler for the /ws endpoint. A client
// identifies itself with a userId query parameter at connect time; the
// connection then only receives server pushes (getOnlineUser snapshots and
// targeted newMessage events). There are no client -> server domain events.
func MakeHandler(reg *Registry, log *slog.Logger, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: makeCheckOrigin(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "missing userId", http.StatusBadRequest)
			return
		}

		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", "error", err)
			return
		}

		conn := NewConn(wsConn)
		if replaced := reg.Register(userID, conn); replaced != nil {
			// Last connect wins; the stale handle is closed so its read loop
			// unwinds. Its unregister will not evict the new connection.
			_ = replaced.Close()
		}
		defer func() {
			reg.Unregister(userID, conn)
			_ = conn.Close()
		}()

		// Drain inbound frames until the client goes away. Inbound payloads
		// are ignored; control frames keep the connection alive.
		for {
			if _, _, err := wsConn.NextReader(); err != nil {
				return
			}
		}
	}
}
