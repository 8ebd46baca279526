// Package router maps inbound connection events to registry operations and
// decides which connections receive the outbound result. It holds no state of
// its own beyond the registry handle and the emitter it fans out through.
package router

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/cognigames/roomserver/internal/registry"
)

// User-facing error messages, matched to the reference client.
const (
	msgRoomNotFound  = "Sala não encontrada"
	msgGameStarted   = "Jogo já iniciado"
	msgAlreadyInRoom = "Você já está nesta sala"
	msgOnlyHostStart = "Apenas o anfitrião pode iniciar o jogo"
	msgOnlyHostReset = "Apenas o anfitrião pode reiniciar o jogo"
)

// Emitter delivers encoded messages to live connections. The hub implements
// it; tests substitute a recorder.
type Emitter interface {
	ToConnection(sessionID string, message []byte)
	ToConnections(sessionIDs []string, message []byte)
}

type handlerFunc func(sessionID string, data json.RawMessage)

// Router dispatches inbound events by name. The handler table is fixed at
// construction; unknown events are logged and dropped.
type Router struct {
	registry *registry.Registry
	emitter  Emitter
	handlers map[string]handlerFunc
}

// New builds a router bound to the given registry and emitter.
func New(reg *registry.Registry, emitter Emitter) *Router {
	r := &Router{
		registry: reg,
		emitter:  emitter,
	}
	r.handlers = map[string]handlerFunc{
		EventCreateRoom:       r.handleCreateRoom,
		EventJoinRoom:         r.handleJoinRoom,
		EventLeaveRoomRequest: r.handleLeaveRoom,
		EventStartGame:        r.handleStartGame,
		EventUpdateGameState:  r.handleUpdateGameState,
		EventUpdateScore:      r.handleUpdateScore,
		EventGameAction:       r.handleGameAction,
		EventGameCompleted:    r.handleGameCompleted,
		EventResetGame:        r.handleResetGame,
	}
	return r
}

// Dispatch decodes one inbound frame and invokes the matching handler. Bad
// frames and unknown events are dropped; a client cannot crash a handler.
func (r *Router) Dispatch(sessionID string, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Invalid frame from %s: %v", sessionID, err)
		return
	}

	handler, ok := r.handlers[env.Event]
	if !ok {
		log.Printf("Unknown event %q from %s", env.Event, sessionID)
		return
	}
	handler(sessionID, env.Data)
}

// HandleConnect acknowledges a new connection with its assigned session ID.
func (r *Router) HandleConnect(sessionID string) {
	r.emitTo(sessionID, EventConnected, connectedPayload{SessionID: sessionID})
}

// HandleDisconnect removes the connection from every room it belongs to and
// notifies the survivors. Deleted rooms produce no further events.
func (r *Router) HandleDisconnect(sessionID string) {
	for _, dep := range r.registry.RemoveConnectionEverywhere(sessionID) {
		if dep.Deleted {
			continue
		}
		r.emitToPlayers(dep.Players, EventPlayerLeft, playerLeftPayload{
			RoomCode: dep.Code,
			Players:  dep.Players,
		})
	}
}

func (r *Router) handleCreateRoom(sessionID string, data json.RawMessage) {
	var p createRoomPayload
	decode(data, &p)
	if p.PlayerName == "" {
		p.PlayerName = defaultPlayerName
	}
	if p.GameType == "" {
		p.GameType = defaultGameType
	}

	room := r.registry.CreateRoom(sessionID, p.PlayerName, p.GameType)
	r.emitTo(sessionID, EventRoomCreated, roomDataPayload{
		RoomCode: room.Code,
		Player:   room.Players[0],
		RoomData: room,
	})
}

func (r *Router) handleJoinRoom(sessionID string, data json.RawMessage) {
	var p joinRoomPayload
	decode(data, &p)
	if p.PlayerName == "" {
		p.PlayerName = defaultPlayerName
	}
	code := normalizeCode(p.RoomCode)

	room, player, err := r.registry.JoinRoom(code, sessionID, p.PlayerName)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrGameAlreadyStarted):
			r.emitError(sessionID, msgGameStarted)
		case errors.Is(err, registry.ErrAlreadyInRoom):
			r.emitError(sessionID, msgAlreadyInRoom)
		default:
			r.emitError(sessionID, msgRoomNotFound)
		}
		return
	}

	r.emitTo(sessionID, EventRoomJoined, roomDataPayload{
		RoomCode: room.Code,
		Player:   player,
		RoomData: room,
	})
	r.emitToPlayers(room.Players, EventPlayerJoined, playerJoinedPayload{
		Player:  player,
		Players: room.Players,
	})
}

func (r *Router) handleLeaveRoom(sessionID string, data json.RawMessage) {
	var p roomCodePayload
	decode(data, &p)
	code := normalizeCode(p.RoomCode)

	dep, ok := r.registry.LeaveRoom(code, sessionID)
	if !ok {
		return
	}
	if !dep.Deleted {
		r.emitToPlayers(dep.Players, EventPlayerLeft, playerLeftPayload{
			Players: dep.Players,
		})
	}
	r.emitTo(sessionID, EventLeftRoom, leftRoomPayload{RoomCode: code})
}

func (r *Router) handleStartGame(sessionID string, data json.RawMessage) {
	var p roomCodePayload
	decode(data, &p)

	room, err := r.registry.StartGame(normalizeCode(p.RoomCode), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrNotHost) {
			r.emitError(sessionID, msgOnlyHostStart)
		} else {
			r.emitError(sessionID, msgRoomNotFound)
		}
		return
	}
	r.emitToPlayers(room.Players, EventGameStarted, gameStartedPayload{
		GameType: room.GameType,
		Players:  room.Players,
	})
}

func (r *Router) handleUpdateGameState(sessionID string, data json.RawMessage) {
	var p updateGameStatePayload
	decode(data, &p)
	if p.GameState == nil {
		p.GameState = json.RawMessage(`{}`)
	}

	players, ok := r.registry.UpdateGameState(normalizeCode(p.RoomCode), p.GameState)
	if !ok {
		return
	}
	r.emitToPlayersExcept(players, sessionID, EventGameStateUpdated, gameStateUpdatedPayload{
		GameState: p.GameState,
	})
}

func (r *Router) handleUpdateScore(sessionID string, data json.RawMessage) {
	var p updateScorePayload
	decode(data, &p)

	players, ok := r.registry.UpdateScore(normalizeCode(p.RoomCode), sessionID, p.Score)
	if !ok {
		return
	}
	r.emitToPlayers(players, EventScoreUpdated, playersPayload{Players: players})
}

func (r *Router) handleGameAction(sessionID string, data json.RawMessage) {
	var p gameActionPayload
	decode(data, &p)
	if p.ActionData == nil {
		p.ActionData = json.RawMessage(`{}`)
	}

	players, ok := r.registry.Members(normalizeCode(p.RoomCode))
	if !ok {
		return
	}
	r.emitToPlayersExcept(players, sessionID, EventGameActionReceived, gameActionReceivedPayload{
		PlayerID:   sessionID,
		ActionType: p.ActionType,
		ActionData: p.ActionData,
	})
}

func (r *Router) handleGameCompleted(sessionID string, data json.RawMessage) {
	var p gameCompletedPayload
	decode(data, &p)

	result, ok := r.registry.CompleteGame(normalizeCode(p.RoomCode), sessionID, p.FinalScore, p.CompletionTime)
	if !ok {
		return
	}
	r.emitToPlayers(result.Players, EventPlayerCompleted, playerCompletedPayload{
		PlayerID:       sessionID,
		FinalScore:     p.FinalScore,
		CompletionTime: p.CompletionTime,
		AllCompleted:   result.AllCompleted,
		Players:        result.Players,
	})
	if result.AllCompleted {
		r.emitToPlayers(result.Players, EventGameFinished, gameFinishedPayload{
			Winner:        result.Winner,
			FinalRankings: result.Rankings,
		})
	}
}

func (r *Router) handleResetGame(sessionID string, data json.RawMessage) {
	var p roomCodePayload
	decode(data, &p)

	players, err := r.registry.ResetGame(normalizeCode(p.RoomCode), sessionID)
	if err != nil {
		if errors.Is(err, registry.ErrNotHost) {
			r.emitError(sessionID, msgOnlyHostReset)
		} else {
			r.emitError(sessionID, msgRoomNotFound)
		}
		return
	}
	r.emitToPlayers(players, EventGameReset, playersPayload{Players: players})
}

func (r *Router) emitTo(sessionID, event string, payload any) {
	message, ok := encode(event, payload)
	if !ok {
		return
	}
	r.emitter.ToConnection(sessionID, message)
}

func (r *Router) emitToPlayers(players []registry.Player, event string, payload any) {
	message, ok := encode(event, payload)
	if !ok {
		return
	}
	r.emitter.ToConnections(sessionIDs(players, ""), message)
}

func (r *Router) emitToPlayersExcept(players []registry.Player, except, event string, payload any) {
	message, ok := encode(event, payload)
	if !ok {
		return
	}
	r.emitter.ToConnections(sessionIDs(players, except), message)
}

func (r *Router) emitError(sessionID, message string) {
	r.emitTo(sessionID, EventError, errorPayload{Message: message})
}

func encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error encoding %s payload: %v", event, err)
		return nil, false
	}
	message, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("Error encoding %s envelope: %v", event, err)
		return nil, false
	}
	return message, true
}

// decode fills the payload struct from the raw data, treating an absent or
// malformed body as all-defaults. Inbound fields are optional by contract.
func decode(data json.RawMessage, v any) {
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("Ignoring malformed event payload: %v", err)
	}
}

func sessionIDs(players []registry.Player, except string) []string {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		if except != "" && p.SessionID == except {
			continue
		}
		ids = append(ids, p.SessionID)
	}
	return ids
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
