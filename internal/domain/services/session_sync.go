package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chalktalk/studio/internal/domain/ports"
)

// SessionSyncService fans editor-session events out to connected clients over
// buffered channels. Slow clients drop events rather than block the
// broadcaster.
type SessionSyncService struct {
	mu      sync.RWMutex
	clients map[string]chan ports.SessionEvent
	stopped bool
}

// NewSessionSyncService creates a session sync service.
func NewSessionSyncService() *SessionSyncService {
	return &SessionSyncService{
		clients: make(map[string]chan ports.SessionEvent),
	}
}

// Subscribe adds a client and returns its event channel.
func (s *SessionSyncService) Subscribe(clientID string) <-chan ports.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.clients[clientID]; ok {
		return existing
	}

	ch := make(chan ports.SessionEvent, 10)
	s.clients[clientID] = ch
	log.Printf("[INFO] [sync] client %s subscribed (%d total)", clientID, len(s.clients))
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (s *SessionSyncService) Unsubscribe(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.clients[clientID]; ok {
		close(ch)
		delete(s.clients, clientID)
		log.Printf("[INFO] [sync] client %s unsubscribed (%d total)", clientID, len(s.clients))
	}
}

// Broadcast sends an event to every subscribed client. Events without an ID
// or timestamp get them filled in.
func (s *SessionSyncService) Broadcast(event ports.SessionEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return errors.New("session sync service is stopped")
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	for clientID, ch := range s.clients {
		select {
		case ch <- event:
		default:
			log.Printf("[WARN] [sync] client %s is slow, dropping event %s", clientID, event.Type)
		}
	}
	return nil
}

// Stop shuts the service down and closes every client channel.
func (s *SessionSyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for clientID, ch := range s.clients {
		close(ch)
		delete(s.clients, clientID)
	}
	log.Printf("[INFO] [sync] stopped")
}

// Ensure SessionSyncService implements ports.SessionSync
var _ ports.SessionSync = (*SessionSyncService)(nil)
