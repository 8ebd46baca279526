// Package server implements the transport layer of the room coordinator: the
// WebSocket hub and client pumps, the HTTP endpoints, and process-level
// configuration.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, routing, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows.
package server
