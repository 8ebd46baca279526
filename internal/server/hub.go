// Package server coordinates connection registration, targeted message
// delivery, and connection cleanup for the room coordinator via the Hub type.
package server

import (
	"context"
	"log"
	"sync"
	"time"
)

// SessionHandler receives connection lifecycle notifications. The event
// router implements it; the hub itself stays free of room knowledge.
type SessionHandler interface {
	HandleConnect(sessionID string)
	HandleDisconnect(sessionID string)
}

// Hub manages all live WebSocket connections keyed by session ID and
// delivers encoded events to one or many of them. It maintains client
// registration/unregistration and ensures thread-safe operations through
// mutex protection.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	sessions   SessionHandler
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary
// channels and the client map. Bind must be called before Run.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Bind attaches the session handler notified on connect and disconnect.
func (h *Hub) Bind(sessions SessionHandler) {
	h.sessions = sessions
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
// This channel is write-only from the caller's perspective.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. This method should be called in a separate goroutine
// as it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client.sessionID] = client
			clientCount := len(h.clients)
			h.mutex.Unlock()
			log.Printf("Session %s connected from %s. Total clients: %d", client.sessionID, client.addr, clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

			h.notifyConnect(client.sessionID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if current, ok := h.clients[client.sessionID]; ok && current == client {
				delete(h.clients, client.sessionID)
				client.closed = true
				clientCount := len(h.clients)
				h.mutex.Unlock()
				// Close the channel after releasing the lock
				close(client.send)
				log.Printf("Session %s disconnected. Total clients: %d", client.sessionID, clientCount)
				h.notifyDisconnect(client.sessionID)
			} else {
				h.mutex.Unlock()
			}
		}
	}
}

// ToConnection delivers a message to a single session. Unknown sessions are
// ignored; a session whose send buffer stalled is evicted.
func (h *Hub) ToConnection(sessionID string, message []byte) {
	h.mutex.RLock()
	client, ok := h.clients[sessionID]
	h.mutex.RUnlock()
	if !ok {
		return
	}
	if !h.safeSend(client, message) {
		h.removeFailedClients([]*Client{client})
	}
}

// ToConnections delivers a message to every listed session that is still
// connected.
func (h *Hub) ToConnections(sessionIDs []string, message []byte) {
	var failed []*Client
	for _, sessionID := range sessionIDs {
		h.mutex.RLock()
		client, ok := h.clients[sessionID]
		h.mutex.RUnlock()
		if !ok {
			continue
		}
		if !h.safeSend(client, message) {
			failed = append(failed, client)
		}
	}
	h.removeFailedClients(failed)
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	current, exists := h.clients[client.sessionID]
	if !exists || current != client || client.closed {
		return false
	}

	// Try to send the message (channel might be closed, so we need to recover from panic)
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// removeFailedClients evicts clients that failed to receive messages, closes
// their channels, and reports the disconnects so their rooms get cleaned up.
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	var dropped []string
	for _, client := range clientsToRemove {
		if current, exists := h.clients[client.sessionID]; exists && current == client {
			delete(h.clients, client.sessionID)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			dropped = append(dropped, client.sessionID)
			log.Printf("Session %s removed due to full send buffer", client.sessionID)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}
	for _, sessionID := range dropped {
		h.notifyDisconnect(sessionID)
	}
}

func (h *Hub) notifyConnect(sessionID string) {
	if h.sessions != nil {
		h.sessions.HandleConnect(sessionID)
	}
}

func (h *Hub) notifyDisconnect(sessionID string) {
	if h.sessions != nil {
		h.sessions.HandleDisconnect(sessionID)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	// Close all client connections
	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing connection of session %s: %v", client.sessionID, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
