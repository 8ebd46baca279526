// Package server wires HTTP handlers into a ServeMux for the room
// coordinator via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application
// routes: health check, WebSocket endpoint, and the room listing API.
func SetupRoutes(api *API) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", api.WebSocketHandler)
	mux.HandleFunc("/rooms", api.RoomsHandler)
	mux.HandleFunc("/room/", api.RoomHandler)
	return mux
}
