package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// SaveFunc persists the editing session's deck after a successful mutation.
type SaveFunc func(ctx context.Context) error

// CommandExecutor applies tool commands to a live editor session exactly
// once. Conversation histories get re-delivered wholesale, so every output is
// keyed and recorded; an output seen before is skipped without touching the
// editor. One executor is bound to one session.
type CommandExecutor struct {
	engine ports.EditorEngine
	save   SaveFunc

	mu       sync.Mutex
	executed map[string]struct{}
}

// NewCommandExecutor creates an executor over the given engine. save may be
// nil when the session has no persistence (previews, tests).
func NewCommandExecutor(engine ports.EditorEngine, save SaveFunc) *CommandExecutor {
	return &CommandExecutor{
		engine:   engine,
		save:     save,
		executed: make(map[string]struct{}),
	}
}

// CallKey derives the dedup key for a tool output from its position in the
// conversation.
func CallKey(messageID string, partIndex int) string {
	return fmt.Sprintf("%s-tool-%d", messageID, partIndex)
}

// Executed reports whether the output with the given key has been processed.
func (e *CommandExecutor) Executed(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.executed[key]
	return ok
}

// Reset clears the executed record. Call it when a session starts a fresh
// conversation, where message IDs may repeat.
func (e *CommandExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = make(map[string]struct{})
}

// Apply processes one tool output. It returns whether the editor was mutated.
// Outputs already seen, read results, error results, and unknown commands all
// come back false with no error; only a failed save after a successful
// mutation is an error, and then the mutation has still happened.
func (e *CommandExecutor) Apply(ctx context.Context, messageID string, partIndex int, result ports.ToolResult) (bool, error) {
	key := CallKey(messageID, partIndex)
	if e.Executed(key) {
		return false, nil
	}

	// Reads and failures carry no mutation. Record them so replays skip the
	// resolution work next time.
	if result.Command == "" || result.Error != "" {
		e.record(key)
		return false, nil
	}

	data, err := coerceCommandData(result.Data)
	if err != nil {
		log.Printf("[WARN] [executor] malformed %s payload: %v", result.Command, err)
		e.record(key)
		return false, nil
	}

	applied := false
	switch result.Command {
	case entities.CommandAddSlide:
		applied = e.engine.AddSlide(data.Name, data.Content, data.InsertAtIndex)
	case entities.CommandReplaceSlide:
		if data.SlideIndex != nil {
			applied = e.engine.ReplaceSlide(*data.SlideIndex, data.NewContent, data.NewName)
		}
	case entities.CommandDeleteSlide:
		if data.SlideIndex != nil {
			applied = e.engine.DeleteSlide(*data.SlideIndex)
		}
	case entities.CommandReadSlide, entities.CommandReadDeck:
		// Already resolved; nothing to apply.
		e.record(key)
		return false, nil
	default:
		log.Printf("[WARN] [executor] unknown command %q", result.Command)
		return false, nil
	}

	if !applied {
		log.Printf("[WARN] [executor] %s did not apply (key %s)", result.Command, key)
		return false, nil
	}
	e.record(key)

	if e.save != nil {
		if err := e.save(ctx); err != nil {
			return true, fmt.Errorf("persisting after %s: %w", result.Command, err)
		}
	}
	return true, nil
}

// ProcessHistory applies a conversation's tool outputs in order, returning
// how many mutated the editor. Previously applied outputs are skipped, so
// feeding the full history on every delivery is safe.
func (e *CommandExecutor) ProcessHistory(ctx context.Context, outputs []ports.ToolOutput) (int, error) {
	applied := 0
	for _, out := range outputs {
		ok, err := e.Apply(ctx, out.MessageID, out.PartIndex, out.Result)
		if ok {
			applied++
		}
		if err != nil {
			return applied, err
		}
	}
	return applied, nil
}

func (e *CommandExecutor) record(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed[key] = struct{}{}
}

// coerceCommandData accepts the payload both as the typed struct (in-process
// callers) and as a decoded JSON object (outputs replayed off the wire).
func coerceCommandData(v interface{}) (entities.CommandData, error) {
	switch data := v.(type) {
	case entities.CommandData:
		return data, nil
	case *entities.CommandData:
		if data == nil {
			return entities.CommandData{}, fmt.Errorf("nil command data")
		}
		return *data, nil
	case map[string]interface{}:
		raw, err := json.Marshal(data)
		if err != nil {
			return entities.CommandData{}, fmt.Errorf("re-encoding command data: %w", err)
		}
		var out entities.CommandData
		if err := json.Unmarshal(raw, &out); err != nil {
			return entities.CommandData{}, fmt.Errorf("decoding command data: %w", err)
		}
		return out, nil
	default:
		return entities.CommandData{}, fmt.Errorf("unsupported command data type %T", v)
	}
}
