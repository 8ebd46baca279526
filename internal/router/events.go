// Package router defines the JSON wire protocol: the event envelope and the
// payload shapes for every inbound and outbound event.
package router

import (
	"encoding/json"

	"github.com/cognigames/roomserver/internal/registry"
)

// Envelope wraps every message on the wire in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EventCreateRoom       = "create_room"
	EventJoinRoom         = "join_room"
	EventLeaveRoomRequest = "leave_room_request"
	EventStartGame        = "start_game"
	EventUpdateGameState  = "update_game_state"
	EventUpdateScore      = "update_score"
	EventGameAction       = "game_action"
	EventGameCompleted    = "game_completed"
	EventResetGame        = "reset_game"
)

// Outbound event names.
const (
	EventConnected          = "connected"
	EventRoomCreated        = "room_created"
	EventRoomJoined         = "room_joined"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventLeftRoom           = "left_room"
	EventGameStarted        = "game_started"
	EventGameStateUpdated   = "game_state_updated"
	EventScoreUpdated       = "score_updated"
	EventGameActionReceived = "game_action_received"
	EventPlayerCompleted    = "player_completed"
	EventGameFinished       = "game_finished"
	EventGameReset          = "game_reset"
	EventError              = "error"
)

// Default values applied when inbound payload fields are absent.
const (
	defaultPlayerName = "Jogador"
	defaultGameType   = "memory"
)

type createRoomPayload struct {
	PlayerName string `json:"player_name"`
	GameType   string `json:"game_type"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

type roomCodePayload struct {
	RoomCode string `json:"room_code"`
}

type updateGameStatePayload struct {
	RoomCode  string          `json:"room_code"`
	GameState json.RawMessage `json:"game_state"`
}

type updateScorePayload struct {
	RoomCode string `json:"room_code"`
	Score    int    `json:"score"`
}

type gameActionPayload struct {
	RoomCode   string          `json:"room_code"`
	ActionType string          `json:"action_type"`
	ActionData json.RawMessage `json:"action_data"`
}

type gameCompletedPayload struct {
	RoomCode       string  `json:"room_code"`
	FinalScore     int     `json:"final_score"`
	CompletionTime float64 `json:"completion_time"`
}

type connectedPayload struct {
	SessionID string `json:"session_id"`
}

type roomDataPayload struct {
	RoomCode string          `json:"room_code"`
	Player   registry.Player `json:"player"`
	RoomData registry.Room   `json:"room_data"`
}

type playerJoinedPayload struct {
	Player  registry.Player   `json:"player"`
	Players []registry.Player `json:"players"`
}

type playerLeftPayload struct {
	RoomCode string            `json:"room_code,omitempty"`
	Players  []registry.Player `json:"players"`
}

type leftRoomPayload struct {
	RoomCode string `json:"room_code"`
}

type gameStartedPayload struct {
	GameType string            `json:"game_type"`
	Players  []registry.Player `json:"players"`
}

type gameStateUpdatedPayload struct {
	GameState json.RawMessage `json:"game_state"`
}

type playersPayload struct {
	Players []registry.Player `json:"players"`
}

type gameActionReceivedPayload struct {
	PlayerID   string          `json:"player_id"`
	ActionType string          `json:"action_type"`
	ActionData json.RawMessage `json:"action_data"`
}

type playerCompletedPayload struct {
	PlayerID       string            `json:"player_id"`
	FinalScore     int               `json:"final_score"`
	CompletionTime float64           `json:"completion_time"`
	AllCompleted   bool              `json:"all_completed"`
	Players        []registry.Player `json:"players"`
}

type gameFinishedPayload struct {
	Winner        registry.Player   `json:"winner"`
	FinalRankings []registry.Player `json:"final_rankings"`
}

type errorPayload struct {
	Message string `json:"message"`
}
