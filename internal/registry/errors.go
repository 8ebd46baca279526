// Package registry declares the error kinds surfaced by guarded room
// operations. Best-effort operations (leave, score, state sync) report
// missing rooms through boolean results instead of errors.
package registry

import "errors"

var (
	// ErrRoomNotFound reports a room code with no live room behind it.
	ErrRoomNotFound = errors.New("room not found")

	// ErrGameAlreadyStarted reports a join attempt against a started room.
	ErrGameAlreadyStarted = errors.New("game already started")

	// ErrAlreadyInRoom reports a join attempt by a session that is already a
	// member of that room.
	ErrAlreadyInRoom = errors.New("already in room")

	// ErrNotHost reports a host-only operation requested by a non-host.
	ErrNotHost = errors.New("requester is not the host")
)
