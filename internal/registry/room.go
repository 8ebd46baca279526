// Package registry defines the room and player data model shared by all
// registry operations.
package registry

import "encoding/json"

// Player is one member of a room, keyed by the session ID of its underlying
// connection. CompletionTime is nil until the player completes a round.
type Player struct {
	SessionID      string   `json:"session_id"`
	Name           string   `json:"name"`
	Score          int      `json:"score"`
	IsHost         bool     `json:"is_host"`
	Completed      bool     `json:"completed"`
	CompletionTime *float64 `json:"completion_time,omitempty"`
}

// Room is a short-lived group of players sharing opaque game state. Host
// always holds the session ID of exactly one current player; a room with no
// players is deleted rather than kept around.
type Room struct {
	Code      string          `json:"code"`
	Host      string          `json:"host"`
	GameType  string          `json:"game_type"`
	Players   []Player        `json:"players"`
	GameState json.RawMessage `json:"game_state"`
	Started   bool            `json:"started"`
}

// Summary is the open-room listing entry returned by ListOpenRooms.
type Summary struct {
	Code         string `json:"code"`
	GameType     string `json:"game_type"`
	PlayersCount int    `json:"players_count"`
	Started      bool   `json:"started"`
}

// emptyState is the zero value for a room's game state on creation and reset.
func emptyState() json.RawMessage {
	return json.RawMessage(`{}`)
}

func clonePlayer(p Player) Player {
	out := p
	if p.CompletionTime != nil {
		t := *p.CompletionTime
		out.CompletionTime = &t
	}
	return out
}

func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = clonePlayer(p)
	}
	return out
}

// snapshot copies a room so callers never hold references into guarded state.
func snapshot(r *Room) Room {
	out := *r
	out.Players = clonePlayers(r.Players)
	out.GameState = append(json.RawMessage(nil), r.GameState...)
	return out
}
