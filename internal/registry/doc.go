// Package registry owns the in-memory collection of game rooms and provides
// atomic create/join/leave/mutate operations over it.
//
// The registry is the single source of truth for room membership and game
// progress. It knows nothing about transports or outbound events; callers
// receive snapshots and decide what to emit. All operations are synchronous
// and guarded by one mutex, which is enough for short critical sections with
// no I/O.
package registry
