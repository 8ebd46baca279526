package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cognigames/roomserver/internal/registry"
)

func newTestAPI() (*API, *registry.Registry) {
	reg := registry.New()
	hub := NewHub()
	return NewAPI(hub, stubDispatcher{}, reg), reg
}

// TestHealthHandler verifies the health endpoint responds with plain text.
func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	HealthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("Unexpected body: %q", rec.Body.String())
	}
}

// TestWebSocketHandlerRejectsNonGet verifies the upgrade endpoint only
// accepts GET requests.
func TestWebSocketHandlerRejectsNonGet(t *testing.T) {
	api, _ := newTestAPI()
	req := httptest.NewRequest(http.MethodPost, "/ws", nil)
	rec := httptest.NewRecorder()

	api.WebSocketHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want 405", rec.Code)
	}
}

// TestRoomsHandlerListsOpenRooms verifies the listing endpoint returns open
// rooms only, in the documented shape.
func TestRoomsHandlerListsOpenRooms(t *testing.T) {
	api, reg := newTestAPI()
	open := reg.CreateRoom("a-sid", "ana", "memory")
	running := reg.CreateRoom("b-sid", "bia", "attention")
	if _, err := reg.StartGame(running.Code, "b-sid"); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	api.RoomsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	var body struct {
		Rooms []registry.Summary `json:"rooms"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if len(body.Rooms) != 1 || body.Rooms[0].Code != open.Code {
		t.Errorf("Rooms = %+v, want only %s", body.Rooms, open.Code)
	}
	if body.Rooms[0].PlayersCount != 1 || body.Rooms[0].GameType != "memory" {
		t.Errorf("Summary wrong: %+v", body.Rooms[0])
	}
}

// TestRoomHandler verifies the single-room endpoint returns the snapshot for
// live rooms, uppercases the requested code, and 404s with a JSON error
// otherwise.
func TestRoomHandler(t *testing.T) {
	api, reg := newTestAPI()
	room := reg.CreateRoom("a-sid", "ana", "memory")

	req := httptest.NewRequest(http.MethodGet, "/room/"+strings.ToLower(room.Code), nil)
	rec := httptest.NewRecorder()
	api.RoomHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	var body struct {
		Room registry.Room `json:"room"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON response: %v", err)
	}
	if body.Room.Code != room.Code || len(body.Room.Players) != 1 {
		t.Errorf("Room = %+v", body.Room)
	}

	req = httptest.NewRequest(http.MethodGet, "/room/NOROOM", nil)
	rec = httptest.NewRecorder()
	api.RoomHandler(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Status = %d, want 404", rec.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&errBody); err != nil {
		t.Fatalf("Invalid JSON error response: %v", err)
	}
	if errBody["error"] != "Sala não encontrada" {
		t.Errorf("Error = %q", errBody["error"])
	}
}
