package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command names emitted by the write tools and dispatched by the executor.
const (
	CommandAddSlide     = "addSlide"
	CommandReplaceSlide = "replaceSlide"
	CommandDeleteSlide  = "deleteSlide"
	CommandReadSlide    = "readSlide"
	CommandReadDeck     = "readDeck"
)

// ToolCommand is the declarative mutation descriptor a write tool emits.
// Producing a command never mutates anything; only the command executor
// applies it to the live editor. Pure data, so the same command can be
// replayed, logged, or tested without an editor.
type ToolCommand struct {
	Command string      `json:"command"`
	Data    CommandData `json:"data"`
}

// CommandData is the union payload across command kinds; unused fields are
// omitted on the wire.
type CommandData struct {
	Name          string `json:"name,omitempty"`
	Content       string `json:"content,omitempty"`
	InsertAtIndex *int   `json:"insertAtIndex,omitempty"`
	SlideIndex    *int   `json:"slideIndex,omitempty"`
	NewContent    string `json:"newContent,omitempty"`
	NewName       string `json:"newName,omitempty"`
	IncludeNames  bool   `json:"includeNames,omitempty"`
}

// SlideInput is the canonical shape for authored slide content after
// normalization. Every accepted input shape maps onto this before any
// downstream logic sees it.
type SlideInput struct {
	Name          string
	Content       string
	InsertAtIndex *int
}

// MinSlideContentLength is the minimum accepted length for authored slide
// content after trimming. Callers receiving shorter content must synthesize a
// placeholder rather than write nothing.
const MinSlideContentLength = 10

// NormalizeSlideInput maps the loosely shaped values a model may produce onto
// a SlideInput: a bare string is content; an object may name the same field
// under several aliases. Anything else is rejected.
func NormalizeSlideInput(raw interface{}) (SlideInput, error) {
	switch v := raw.(type) {
	case string:
		return SlideInput{Content: v}, nil
	case map[string]interface{}:
		in := SlideInput{}
		if s, ok := firstString(v, "content", "html", "newContent"); ok {
			in.Content = s
		}
		if s, ok := firstString(v, "name", "title", "newName"); ok {
			in.Name = s
		}
		if n, ok := firstNumber(v, "insertAtIndex", "index", "at"); ok {
			idx := int(n)
			// -1 means append, same as omitting the index
			if idx >= 0 {
				in.InsertAtIndex = &idx
			}
		}
		return in, nil
	case json.RawMessage:
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return SlideInput{}, fmt.Errorf("decoding slide input: %w", err)
		}
		return NormalizeSlideInput(decoded)
	default:
		return SlideInput{}, fmt.Errorf("unsupported slide input type %T", raw)
	}
}

// Validate checks that the normalized content meets the minimum length.
func (in SlideInput) Validate() error {
	if len(strings.TrimSpace(in.Content)) < MinSlideContentLength {
		return &InvalidContentError{Reason: "slide content is empty or too short"}
	}
	return nil
}

func firstString(m map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func firstNumber(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch n := v.(type) {
			case float64:
				return n, true
			case int:
				return float64(n), true
			}
		}
	}
	return 0, false
}
