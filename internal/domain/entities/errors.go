package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services.
var (
	// ErrDeckNotFound indicates no deck exists for the requested project ID.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrUnauthorized indicates the actor does not own the target deck.
	ErrUnauthorized = errors.New("not authorized for this deck")

	// ErrExecutionNoop indicates a command named an unknown operation; the
	// executor treats it as a no-op and reports failure.
	ErrExecutionNoop = errors.New("unsupported editor command")

	// ErrSessionNotFound indicates no live editor session exists for the
	// requested session ID.
	ErrSessionNotFound = errors.New("session not found")
)

// SlideNotFoundError indicates a slide index outside the deck's page range.
type SlideNotFoundError struct {
	Index int
}

func (e *SlideNotFoundError) Error() string {
	return fmt.Sprintf("Slide %d not found", e.Index)
}

// InvalidContentError indicates authored content that is empty or too short
// after normalization.
type InvalidContentError struct {
	Reason string
}

func (e *InvalidContentError) Error() string {
	return e.Reason
}

// UpstreamError wraps a failed call to an external collaborator (speech
// synthesis, storage).
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
