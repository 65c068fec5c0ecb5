package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProgressEvent is one message streamed over the /progress websocket
// while a batch insert or L2 retrofit runs.
type ProgressEvent struct {
	DB    string `json:"db"`
	Op    string `json:"op"`
	Done  uint64 `json:"done"`
	Total uint64 `json:"total"`
}

// progressHub fans out ProgressEvents to every connected websocket
// client, the same upgrade-and-push shape as the teacher's replication
// websocket channel.
type progressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *progressHub) broadcast(ev ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(ev); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *progressHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// The client never sends anything meaningful; read until it
	// disconnects so gorilla processes control frames (ping/close).
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
