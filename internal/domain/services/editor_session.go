package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// EngineFactory creates a fresh editor engine for a new session.
type EngineFactory func() ports.EditorEngine

// EditorSessionService owns the live editing sessions. Each session binds one
// editor engine to one command executor over an owned deck; mutations applied
// through the executor persist back to the deck and are announced to session
// subscribers.
type EditorSessionService struct {
	decks     ports.DeckService
	events    ports.SessionSync
	newEngine EngineFactory

	mu       sync.Mutex
	sessions map[string]*editorSession
}

type editorSession struct {
	mu        sync.Mutex
	projectID string
	ownerID   string
	engine    ports.EditorEngine
	executor  *CommandExecutor
}

// NewEditorSessionService creates the session manager. events may be nil when
// nothing subscribes.
func NewEditorSessionService(decks ports.DeckService, events ports.SessionSync, newEngine EngineFactory) *EditorSessionService {
	return &EditorSessionService{
		decks:     decks,
		events:    events,
		newEngine: newEngine,
		sessions:  make(map[string]*editorSession),
	}
}

// Open loads an owned deck into a fresh session and returns the session ID.
func (s *EditorSessionService) Open(ctx context.Context, projectID, ownerID string) (string, error) {
	deck, err := s.decks.GetDeck(ctx, projectID, ownerID)
	if err != nil {
		return "", err
	}
	doc, err := deck.Document()
	if err != nil {
		return "", fmt.Errorf("loading deck document: %w", err)
	}

	engine := s.newEngine()
	engine.LoadDocument(doc)

	sess := &editorSession{
		projectID: projectID,
		ownerID:   ownerID,
		engine:    engine,
	}
	sess.executor = NewCommandExecutor(engine, func(ctx context.Context) error {
		return s.saveSession(ctx, sess)
	})

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.announce("session.opened", id, map[string]interface{}{"projectId": projectID})
	return id, nil
}

// Apply feeds a conversation's tool outputs to the session's executor. Replay
// of outputs already applied is effect-free.
func (s *EditorSessionService) Apply(ctx context.Context, sessionID string, outputs []ports.ToolOutput) (int, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	applied, err := sess.executor.ProcessHistory(ctx, outputs)
	if applied > 0 {
		s.announce("session.applied", sessionID, map[string]interface{}{
			"projectId": sess.projectID,
			"applied":   applied,
			"slides":    sess.engine.SlideCount(),
		})
	}
	return applied, err
}

// Slides returns the session's slides in editor form.
func (s *EditorSessionService) Slides(sessionID string) ([]ports.EditorSlide, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.AllSlides(), nil
}

// Close tears the session down. The deck keeps whatever the last successful
// apply persisted.
func (s *EditorSessionService) Close(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return entities.ErrSessionNotFound
	}
	s.announce("session.closed", sessionID, map[string]interface{}{"projectId": sess.projectID})
	return nil
}

func (s *EditorSessionService) session(id string) (*editorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return sess, nil
}

// saveSession writes the engine's current document back through the deck
// service, re-reading the deck so title and timestamps stay current.
func (s *EditorSessionService) saveSession(ctx context.Context, sess *editorSession) error {
	deck, err := s.decks.GetDeck(ctx, sess.projectID, sess.ownerID)
	if err != nil {
		return err
	}
	if err := deck.SetDocument(sess.engine.Document()); err != nil {
		return fmt.Errorf("serializing session document: %w", err)
	}
	return s.decks.SaveDeck(ctx, deck)
}

func (s *EditorSessionService) announce(eventType, sessionID string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := ports.SessionEvent{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	}
	if err := s.events.Broadcast(event); err != nil {
		log.Printf("[WARN] [sessions] broadcasting %s: %v", eventType, err)
	}
}

// Ensure EditorSessionService implements ports.EditorSessionService
var _ ports.EditorSessionService = (*EditorSessionService)(nil)
