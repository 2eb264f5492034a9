package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"

	"github.com/chalktalk/studio/internal/adapters/secondary/export"
	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// maxRequestBody caps request bodies. Deck documents carry inline HTML and
// can be sizeable; markdown imports stay well under this.
const maxRequestBody = 8 << 20

// defaultOwner is the principal used when no owner header is present. The
// server is single-tenant by default; the header exists for reverse proxies
// that authenticate upstream.
const defaultOwner = "local"

// titlePolicy strips markup from caller-supplied titles before they reach
// storage or other clients.
var titlePolicy = bluemonday.StrictPolicy()

func sanitizeTitle(title string) string {
	return strings.TrimSpace(html.UnescapeString(titlePolicy.Sanitize(title)))
}

func ownerID(r *http.Request) string {
	if owner := strings.TrimSpace(r.Header.Get("X-Owner-ID")); owner != "" {
		return owner
	}
	return defaultOwner
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP status codes
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrDeckNotFound):
		s.writeError(w, http.StatusNotFound, "deck not found")
	case errors.Is(err, entities.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, entities.ErrUnauthorized):
		s.writeError(w, http.StatusForbidden, "not authorized for this deck")
	default:
		var upstream *entities.UpstreamError
		if errors.As(err, &upstream) {
			s.writeError(w, http.StatusBadGateway, upstream.Error())
			return
		}
		s.logger.Error("Request failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// handleHealth reports server liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"clients": s.connections.Count(),
	})
}

// handleToolCall resolves one assistant tool call. The response is always
// 200 with a ToolResult; tool failures travel inside the result.
func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var call ports.ToolCall
	if !s.decodeJSON(w, r, &call) {
		return
	}
	call.OwnerID = ownerID(r)

	result := s.tools.Execute(r.Context(), call)
	s.writeJSON(w, http.StatusOK, result)
}

// --- Deck CRUD ---

type createDeckRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	deck, err := s.decks.CreateDeck(r.Context(), ownerID(r), sanitizeTitle(req.Title))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("deck.created", deck.ProjectID, nil)
	s.writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.decks.ListDecks(r.Context(), ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	deck, err := s.decks.GetDeck(r.Context(), projectID, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleSaveDeck(w http.ResponseWriter, r *http.Request) {
	var deck entities.Deck
	if !s.decodeJSON(w, r, &deck) {
		return
	}

	deck.ProjectID = mux.Vars(r)["id"]
	deck.OwnerID = ownerID(r)
	deck.Title = sanitizeTitle(deck.Title)

	if err := s.decks.SaveDeck(r.Context(), &deck); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("deck.saved", deck.ProjectID, nil)
	s.writeJSON(w, http.StatusOK, &deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	if err := s.decks.DeleteDeck(r.Context(), projectID, ownerID(r)); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("deck.deleted", projectID, nil)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkDeleteRequest struct {
	ProjectIDs []string `json:"projectIds"`
}

func (s *Server) handleBulkDeleteDecks(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.ProjectIDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "projectIds is required")
		return
	}

	deleted, err := s.decks.DeleteDecks(r.Context(), req.ProjectIDs, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

type renameDeckRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleRenameDeck(w http.ResponseWriter, r *http.Request) {
	var req renameDeckRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	title := sanitizeTitle(req.Title)
	if title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	projectID := mux.Vars(r)["id"]
	if err := s.decks.RenameDeck(r.Context(), projectID, ownerID(r), title); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("deck.renamed", projectID, map[string]interface{}{"title": title})
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (s *Server) handleDuplicateDeck(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["id"]
	dup, err := s.decks.DuplicateDeck(r.Context(), projectID, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, dup)
}

// handleImportDeck builds a deck from a markdown document and persists it
func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		s.writeError(w, http.StatusBadRequest, "markdown content is required")
		return
	}

	owner := ownerID(r)
	deck, err := s.importer.Import(r.Context(), body, owner)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.decks.SaveDeck(r.Context(), deck); err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("deck.created", deck.ProjectID, nil)
	s.writeJSON(w, http.StatusCreated, deck)
}

// --- Editor sessions ---

type openSessionRequest struct {
	ProjectID string `json:"projectId"`
}

// handleOpenSession loads an owned deck into a fresh editor session
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectID == "" {
		s.writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	sessionID, err := s.editor.Open(r.Context(), req.ProjectID, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"sessionId": sessionID})
}

type applyCommandsRequest struct {
	Outputs []ports.ToolOutput `json:"outputs"`
}

// handleApplySessionCommands feeds resolved tool outputs to the session's
// executor. The full conversation history may be posted on every delivery;
// outputs already applied are skipped.
func (s *Server) handleApplySessionCommands(w http.ResponseWriter, r *http.Request) {
	var req applyCommandsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.Outputs) == 0 {
		s.writeError(w, http.StatusBadRequest, "outputs is required")
		return
	}

	applied, err := s.editor.Apply(r.Context(), mux.Vars(r)["id"], req.Outputs)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"applied": applied})
}

func (s *Server) handleSessionSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := s.editor.Slides(mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"slides": slides})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.editor.Close(mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// --- Narration ---

type generateRequest struct {
	ProjectID string `json:"projectId"`
}

func (s *Server) handleGenerateNarration(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ProjectID == "" {
		s.writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	summary, err := s.narration.Generate(r.Context(), req.ProjectID, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("narration.generated", req.ProjectID, map[string]interface{}{
		"slides":    summary.Slides,
		"fragments": summary.Fragments,
	})
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetNarrationCache(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		s.writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	cache, err := s.narration.Cache(r.Context(), projectID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"cache": cache})
}

func (s *Server) handleClearNarrationCache(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		s.writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	cleared, err := s.narration.Clear(r.Context(), projectID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.broadcastSession("narration.cleared", projectID, nil)
	s.writeJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}

// --- Export ---

func (s *Server) handleExportReveal(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "presentation", s.export.RevealHTML)
}

func (s *Server) handleExportVoice(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "voice_presentation", s.export.VoiceHTML)
}

func (s *Server) handleExport(
	w http.ResponseWriter,
	r *http.Request,
	suffix string,
	render func(ctx context.Context, projectID, theme string) ([]byte, error),
) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		s.writeError(w, http.StatusBadRequest, "projectId is required")
		return
	}

	// Ownership gate; exports read through the repository directly
	deck, err := s.decks.GetDeck(r.Context(), projectID, ownerID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	doc, err := render(r.Context(), projectID, r.URL.Query().Get("theme"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := export.Filename(deck.Title, suffix)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.logger.Error("Writing export response: %v", err)
	}
}

// --- Themes ---

func (s *Server) handleListThemes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"themes": s.themes.Names()})
}

// --- Audio ---

// handleAudio serves cached narration audio by blob ref
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["ref"]
	if ref == "" {
		s.writeError(w, http.StatusBadRequest, "audio ref is required")
		return
	}

	data, err := s.blobs.Get(r.Context(), ref)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "audio not found")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("Writing audio response: %v", err)
	}
}

// broadcastSession publishes a session event through the sync service and to
// connected WebSocket clients
func (s *Server) broadcastSession(eventType, projectID string, data map[string]interface{}) {
	if s.sessions == nil {
		return
	}
	event := ports.SessionEvent{
		Type:      eventType,
		SessionID: projectID,
		Data:      data,
	}
	if err := s.sessions.Broadcast(event); err != nil {
		s.logger.Warn("Broadcasting %s event: %v", eventType, err)
	}
}
