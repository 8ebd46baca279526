// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the read-only room listing API.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cognigames/roomserver/internal/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// API bundles the dependencies the HTTP handlers need: the hub that owns
// connections, the dispatcher inbound events go to, and the room registry
// backing the read-only endpoints.
type API struct {
	hub        *Hub
	dispatcher Dispatcher
	registry   *registry.Registry
}

// NewAPI creates the handler set around an explicit hub, dispatcher, and
// registry instead of package globals, so tests can wire their own.
func NewAPI(hub *Hub, dispatcher Dispatcher, reg *registry.Registry) *API {
	return &API{
		hub:        hub,
		dispatcher: dispatcher,
		registry:   reg,
	}
}

// WebSocketHandler upgrades the HTTP connection, assigns a fresh session
// identity, and registers the resulting client with the hub. The hub launches
// the pump goroutines and acknowledges the session.
func (a *API) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sessionID := uuid.NewString()
	client := NewClient(conn, a.hub, a.dispatcher, sessionID, r.RemoteAddr)

	// Register the client with the hub; the hub will launch the pump goroutines.
	a.hub.register <- client
}

// RoomsHandler lists every room still accepting players.
func (a *API) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rooms := a.registry.ListOpenRooms()
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// RoomHandler returns the full snapshot of one room, looked up by its code
// from the request path. Codes compare case-insensitively.
func (a *API) RoomHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/room/"))
	room, err := a.registry.GetRoom(code)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "Sala não encontrada"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": room})
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Room coordinator is running!")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}
