package ports

import (
	"context"
	"time"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// Tool names in the fixed vocabulary exposed to the assistant. Any other
// name is out of scope.
const (
	ToolReadDeck     = "readDeck"
	ToolReadSlide    = "readSlide"
	ToolCreateSlide  = "createSlide"
	ToolReplaceSlide = "replaceSlide"
	ToolDeleteSlide  = "deleteSlide"
)

// ToolCall is one named tool invocation against a deck.
type ToolCall struct {
	Tool      string                 `json:"toolName"`
	Params    map[string]interface{} `json:"parameters"`
	ProjectID string                 `json:"projectId"`
	OwnerID   string                 `json:"-"`
}

// ToolResult is what the assistant receives back. Internal failures surface
// here as Error, never as a raised error across the tool boundary, so the
// model always has a resolvable result to reason about.
type ToolResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Command string      `json:"command,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ToolOutput is one resolved tool result positioned in the conversation:
// the message it belongs to and its part index within that message. Together
// they form the dedup key for at-most-once application.
type ToolOutput struct {
	MessageID string     `json:"messageId"`
	PartIndex int        `json:"partIndex"`
	Result    ToolResult `json:"result"`
}

// DeckReadout is the readDeck payload.
type DeckReadout struct {
	TotalSlides int            `json:"totalSlides"`
	Slides      []SlideReadout `json:"slides"`
}

// SlideReadout is one slide within a deck readout.
type SlideReadout struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	HTML  string `json:"html"`
	CSS   string `json:"css"`
}

// SlideDetail is the readSlide payload.
type SlideDetail struct {
	SlideIndex int    `json:"slideIndex"`
	SlideName  string `json:"slideName"`
	HTML       string `json:"html"`
	CSS        string `json:"css"`
}

// ToolService resolves tool calls: read tools against the persisted document
// model, write tools into declarative commands for the executor.
type ToolService interface {
	Execute(ctx context.Context, call ToolCall) ToolResult
}

// DeckService is the deck CRUD surface. Every operation that targets an
// existing deck verifies ownership.
type DeckService interface {
	// CreateDeck creates a deck with the default welcome slide
	CreateDeck(ctx context.Context, ownerID, title string) (*entities.Deck, error)

	// SaveDeck upserts a deck for its project ID
	SaveDeck(ctx context.Context, deck *entities.Deck) error

	// GetDeck returns an owned deck
	GetDeck(ctx context.Context, projectID, ownerID string) (*entities.Deck, error)

	// ListDecks returns all decks owned by a principal, newest first
	ListDecks(ctx context.Context, ownerID string) ([]*entities.Deck, error)

	// RenameDeck updates a deck's title
	RenameDeck(ctx context.Context, projectID, ownerID, title string) error

	// DeleteDeck removes an owned deck
	DeleteDeck(ctx context.Context, projectID, ownerID string) error

	// DeleteDecks removes owned decks in bulk, returning how many went
	DeleteDecks(ctx context.Context, projectIDs []string, ownerID string) (int, error)

	// DuplicateDeck copies an owned deck under a fresh project ID
	DuplicateDeck(ctx context.Context, projectID, ownerID string) (*entities.Deck, error)
}

// EditorSessionService owns the live editing sessions: one editor engine and
// one command executor per session, fed resolved tool outputs. Mutations
// applied through a session persist back to its deck.
type EditorSessionService interface {
	// Open loads an owned deck into a fresh session and returns its ID
	Open(ctx context.Context, projectID, ownerID string) (string, error)

	// Apply feeds a conversation's tool outputs to the session's executor,
	// returning how many mutated the editor
	Apply(ctx context.Context, sessionID string, outputs []ToolOutput) (int, error)

	// Slides returns the session's slides in editor form
	Slides(sessionID string) ([]EditorSlide, error)

	// Close tears the session down
	Close(sessionID string) error
}

// GenerationSummary reports a completed narration generation run.
type GenerationSummary struct {
	Slides    int `json:"slides"`
	Fragments int `json:"fragments"`
}

// NarrationService orchestrates TTS generation and the audio cache.
type NarrationService interface {
	// Generate re-derives fragments from current slide content, synthesizes
	// audio for all of them, and atomically replaces the project's cache.
	// All-or-nothing: any fragment failure fails the run and leaves any
	// prior cache untouched.
	Generate(ctx context.Context, projectID, ownerID string) (*GenerationSummary, error)

	// Cache returns the project's cached narration
	Cache(ctx context.Context, projectID string) (entities.AudioCache, error)

	// Clear drops the project's cached narration and blobs
	Clear(ctx context.Context, projectID string) (int, error)
}

// ExportService renders a deck into self-contained presentation documents.
type ExportService interface {
	// RevealHTML renders the plain presentation document
	RevealHTML(ctx context.Context, projectID, theme string) ([]byte, error)

	// VoiceHTML renders the narrated presentation document
	VoiceHTML(ctx context.Context, projectID, theme string) ([]byte, error)
}

// ThemeProvider resolves a named export theme to its CSS.
type ThemeProvider interface {
	CSS(name string) (string, error)
}

// DeckImporter builds a deck from externally authored content.
type DeckImporter interface {
	// Import parses markdown content into a container-wrapped deck
	Import(ctx context.Context, content []byte, ownerID string) (*entities.Deck, error)
}

// SessionEvent is one editor-session notification pushed to subscribers.
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// SessionSync fans editor-session events out to connected clients.
type SessionSync interface {
	// Subscribe adds a client to receive session events
	Subscribe(clientID string) <-chan SessionEvent

	// Unsubscribe removes a client
	Unsubscribe(clientID string)

	// Broadcast sends an event to all subscribers
	Broadcast(event SessionEvent) error

	// Stop shuts the sync service down
	Stop()
}
