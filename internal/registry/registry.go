// Package registry implements the mutex-guarded room store and every room
// lifecycle operation the event router builds on.
package registry

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
)

// Registry is the process-wide room store. All access goes through its
// methods; the zero value is not usable, construct with New.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// New creates an empty registry ready for concurrent use.
func New() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Departure describes the outcome of removing a player from one room: either
// the room was deleted because it became empty, or it survives with the
// updated player list.
type Departure struct {
	Code    string
	Deleted bool
	Players []Player
}

// Completion describes the outcome of a player finishing a round. Winner and
// Rankings are only meaningful when AllCompleted is true.
type Completion struct {
	Players      []Player
	AllCompleted bool
	Winner       Player
	Rankings     []Player
}

// CreateRoom allocates a fresh code and inserts a room containing only the
// creator, who becomes host. Creation has no failure path.
func (r *Registry) CreateRoom(sessionID, name, gameType string) Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCode()
	room := &Room{
		Code:     code,
		Host:     sessionID,
		GameType: gameType,
		Players: []Player{{
			SessionID: sessionID,
			Name:      name,
			IsHost:    true,
		}},
		GameState: emptyState(),
	}
	r.rooms[code] = room

	log.Printf("Room %s created by %s (%s)", code, name, gameType)
	return snapshot(room)
}

// JoinRoom appends a non-host player to an existing room that has not
// started. It returns the updated room and the new player's entry.
func (r *Registry) JoinRoom(code, sessionID, name string) (Room, Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Room{}, Player{}, ErrRoomNotFound
	}
	if room.Started {
		return Room{}, Player{}, ErrGameAlreadyStarted
	}
	for _, p := range room.Players {
		if p.SessionID == sessionID {
			return Room{}, Player{}, ErrAlreadyInRoom
		}
	}

	player := Player{
		SessionID: sessionID,
		Name:      name,
	}
	room.Players = append(room.Players, player)

	log.Printf("%s joined room %s", name, code)
	return snapshot(room), clonePlayer(player), nil
}

// LeaveRoom removes the session's player from the room. A missing room is a
// no-op reported by the second result, not an error. If the room empties it
// is deleted; if the host left, the earliest remaining player is promoted.
func (r *Registry) LeaveRoom(code, sessionID string) (Departure, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Departure{}, false
	}
	dep, _ := r.leaveLocked(room, sessionID)
	return dep, true
}

// RemoveConnectionEverywhere applies leave semantics to every room that
// contains the session. Used on disconnect; a connection normally belongs to
// at most one room, but the sweep is safe regardless.
func (r *Registry) RemoveConnectionEverywhere(sessionID string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []Departure
	for _, room := range r.rooms {
		if dep, present := r.leaveLocked(room, sessionID); present {
			affected = append(affected, dep)
		}
	}
	return affected
}

// leaveLocked removes the session from the room and resolves the empty-room
// and host-transfer invariants. It reports whether the session was actually a
// member. Callers must hold the registry lock.
func (r *Registry) leaveLocked(room *Room, sessionID string) (Departure, bool) {
	present := false
	remaining := room.Players[:0]
	for _, p := range room.Players {
		if p.SessionID == sessionID {
			present = true
			continue
		}
		remaining = append(remaining, p)
	}
	room.Players = remaining

	if len(room.Players) == 0 {
		delete(r.rooms, room.Code)
		log.Printf("Room %s removed (empty)", room.Code)
		return Departure{Code: room.Code, Deleted: true}, present
	}

	if room.Host == sessionID {
		room.Host = room.Players[0].SessionID
		room.Players[0].IsHost = true
		log.Printf("Host of room %s transferred to %s", room.Code, room.Players[0].Name)
	}
	return Departure{Code: room.Code, Players: clonePlayers(room.Players)}, present
}

// StartGame marks the room as started. Only the host may start.
func (r *Registry) StartGame(code, sessionID string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	if room.Host != sessionID {
		return Room{}, ErrNotHost
	}
	room.Started = true

	log.Printf("Game started in room %s", code)
	return snapshot(room), nil
}

// UpdateGameState overwrites the room's opaque game state, last writer wins.
// A missing room is silently ignored; state sync is a best-effort signal. The
// player list is returned so the caller can fan the new state out.
func (r *Registry) UpdateGameState(code string, state json.RawMessage) ([]Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	room.GameState = append(json.RawMessage(nil), state...)
	return clonePlayers(room.Players), true
}

// UpdateScore sets the session's score and returns the full player list. A
// missing room or player is a no-op reported by the boolean result.
func (r *Registry) UpdateScore(code, sessionID string, score int) ([]Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	for i := range room.Players {
		if room.Players[i].SessionID == sessionID {
			room.Players[i].Score = score
			break
		}
	}
	return clonePlayers(room.Players), true
}

// Members returns the current player list of a room without mutating
// anything. Action relay uses this as its existence check and fan-out source.
func (r *Registry) Members(code string) ([]Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, false
	}
	return clonePlayers(room.Players), true
}

// CompleteGame records a player's final score and completion time. When every
// player has completed, the result carries the winner (highest score, first
// in join order on ties) and the full ranking (descending score, stable).
func (r *Registry) CompleteGame(code, sessionID string, finalScore int, completionTime float64) (Completion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Completion{}, false
	}

	for i := range room.Players {
		if room.Players[i].SessionID == sessionID {
			t := completionTime
			room.Players[i].Score = finalScore
			room.Players[i].Completed = true
			room.Players[i].CompletionTime = &t
			break
		}
	}

	result := Completion{
		Players:      clonePlayers(room.Players),
		AllCompleted: true,
	}
	for _, p := range room.Players {
		if !p.Completed {
			result.AllCompleted = false
			break
		}
	}
	if result.AllCompleted {
		winner := room.Players[0]
		for _, p := range room.Players[1:] {
			if p.Score > winner.Score {
				winner = p
			}
		}
		result.Winner = clonePlayer(winner)

		rankings := clonePlayers(room.Players)
		sort.SliceStable(rankings, func(i, j int) bool {
			return rankings[i].Score > rankings[j].Score
		})
		result.Rankings = rankings
	}
	return result, true
}

// ResetGame returns the room to its pre-start state: scores zeroed,
// completion flags and times cleared, game state emptied. Only the host may
// reset.
func (r *Registry) ResetGame(code, sessionID string) ([]Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Host != sessionID {
		return nil, ErrNotHost
	}

	for i := range room.Players {
		room.Players[i].Score = 0
		room.Players[i].Completed = false
		room.Players[i].CompletionTime = nil
	}
	room.Started = false
	room.GameState = emptyState()

	log.Printf("Game reset in room %s", code)
	return clonePlayers(room.Players), nil
}

// ListOpenRooms returns a summary of every room still accepting players.
func (r *Registry) ListOpenRooms() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]Summary, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.Started {
			continue
		}
		summaries = append(summaries, Summary{
			Code:         room.Code,
			GameType:     room.GameType,
			PlayersCount: len(room.Players),
		})
	}
	return summaries
}

// GetRoom returns a full snapshot of one room.
func (r *Registry) GetRoom(code string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[code]
	if !ok {
		return Room{}, ErrRoomNotFound
	}
	return snapshot(room), nil
}
