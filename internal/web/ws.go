package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// handleWS streams change notifications. Query params narrow the feed:
// ?table=tasks&project=prj-abc subscribes to task changes for one project.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(s.profileForRequest(r))
	if id == "" {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	table := strings.TrimSpace(r.URL.Query().Get("table"))
	filter := map[string]string{}
	for _, k := range []string{"project", "task", "parent"} {
		if v := strings.TrimSpace(r.URL.Query().Get(k)); v != "" {
			filter[k] = v
		}
	}
	if len(filter) == 0 {
		filter = nil
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	sub := s.broker.Subscribe(table, filter)
	defer s.broker.Unsubscribe(sub)

	// Reader goroutine: we never expect client messages, but reading is what
	// surfaces close frames.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ch, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ch); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
