package server

import (
	"sync"
	"testing"
	"time"
)

type stubDispatcher struct{}

func (stubDispatcher) Dispatch(string, []byte) {}

// stubSessions records connect/disconnect notifications from the hub.
type stubSessions struct {
	mu          sync.Mutex
	connects    []string
	disconnects []string
}

func (s *stubSessions) HandleConnect(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects = append(s.connects, sessionID)
}

func (s *stubSessions) HandleDisconnect(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnects = append(s.disconnects, sessionID)
}

// TestNewHub tests the hub creation function. It verifies that NewHub returns
// a properly initialized Hub with all necessary channels and data structures.
func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.clients == nil {
		t.Error("Client map is nil")
	}

	go hub.Run()
	select {
	case hub.GetRegisterChan() <- nil:
	case <-time.After(100 * time.Millisecond):
		t.Error("Register channel not accepting")
	}
	if err := hub.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

// TestToConnectionDeliversToSession verifies that a message sent to a session
// lands on that client's send channel and nowhere else.
func TestToConnectionDeliversToSession(t *testing.T) {
	hub := NewHub()
	c1 := NewClient(nil, hub, stubDispatcher{}, "s1", "127.0.0.1:1")
	c2 := NewClient(nil, hub, stubDispatcher{}, "s2", "127.0.0.1:2")
	hub.clients["s1"] = c1
	hub.clients["s2"] = c2

	hub.ToConnection("s1", []byte("hello"))

	select {
	case msg := <-c1.GetSendChan():
		if string(msg) != "hello" {
			t.Errorf("Got %q, want hello", msg)
		}
	case <-time.After(10 * time.Millisecond):
		t.Error("Message not delivered to s1")
	}

	select {
	case msg := <-c2.GetSendChan():
		t.Errorf("s2 unexpectedly received %q", msg)
	case <-time.After(10 * time.Millisecond):
	}
}

// TestToConnectionsSkipsUnknownSessions verifies fan-out delivers to every
// listed live session and silently skips unknown ones.
func TestToConnectionsSkipsUnknownSessions(t *testing.T) {
	hub := NewHub()
	c1 := NewClient(nil, hub, stubDispatcher{}, "s1", "127.0.0.1:1")
	hub.clients["s1"] = c1

	hub.ToConnections([]string{"s1", "ghost"}, []byte("fanout"))

	select {
	case msg := <-c1.GetSendChan():
		if string(msg) != "fanout" {
			t.Errorf("Got %q, want fanout", msg)
		}
	case <-time.After(10 * time.Millisecond):
		t.Error("Message not delivered to s1")
	}
}

// TestStalledClientIsEvicted verifies that a client with a full send buffer
// is removed and its disconnect reported to the session handler.
func TestStalledClientIsEvicted(t *testing.T) {
	hub := NewHub()
	sessions := &stubSessions{}
	hub.Bind(sessions)

	stalled := &Client{
		send:      make(chan []byte), // unbuffered and never drained
		sessionID: "s1",
		addr:      "127.0.0.1:1",
	}
	hub.clients["s1"] = stalled

	hub.ToConnection("s1", []byte("drop"))

	hub.mutex.RLock()
	_, exists := hub.clients["s1"]
	hub.mutex.RUnlock()
	if exists {
		t.Error("Stalled client still registered")
	}

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	if len(sessions.disconnects) != 1 || sessions.disconnects[0] != "s1" {
		t.Errorf("Disconnect not reported: %+v", sessions.disconnects)
	}
}

// TestConcurrentDelivery verifies that many goroutines can deliver through
// the hub simultaneously without races or panics.
func TestConcurrentDelivery(t *testing.T) {
	hub := NewHub()
	c1 := NewClient(nil, hub, stubDispatcher{}, "s1", "127.0.0.1:1")
	hub.clients["s1"] = c1

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.ToConnection("s1", []byte("concurrent"))
		}()
	}

	received := 0
	done := make(chan struct{})
	go func() {
		for range c1.GetSendChan() {
			received++
			if received == 10 {
				close(done)
				return
			}
		}
	}()

	wg.Wait()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Errorf("Received %d of 10 concurrent messages", received)
	}
}
