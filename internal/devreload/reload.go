// Package devreload pushes rebuild notifications to open browser tabs over WebSocket.
package devreload

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Path is where the shell's reload client connects.
const Path = "/__tutor/reload"

// MessageType identifies a reload message.
type MessageType string

const (
	TypeReload MessageType = "reload"
	TypeError  MessageType = "error"
)

// Message is sent to browsers as JSON.
type Message struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error,omitempty"`
}

// Hub tracks connected browsers.
type Hub struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
}

// NewHub creates a hub. Connections are only accepted from loopback origins
// or the same host.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHostOrLocal,
		},
	}
}

func sameHostOrLocal(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, host, _ := strings.Cut(origin, "://")
	if host == r.Host {
		return true
	}
	hostname := host
	if i := strings.LastIndex(host, ":"); i != -1 {
		hostname = host[:i]
	}
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "[::1]"
}

// ServeHTTP upgrades the connection and holds it until the browser goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("Reload upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(conn)
}

// Rebuilt notifies browsers of a finished build: a reload on success, or the
// joined build errors otherwise.
func (h *Hub) Rebuilt(errs []string) {
	if len(errs) > 0 {
		h.broadcast(Message{Type: TypeError, Error: strings.Join(errs, "\n")})
		return
	}
	h.broadcast(Message{Type: TypeReload})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
		}
	}
	log.Debug().Str("type", string(msg.Type)).Int("clients", len(clients)).Msg("Sent reload notification")
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.Close()
	}
}

// ClientCount returns the number of connected browsers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every browser.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
}
