package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// sessionBridgeID is the sync subscription used to forward session events to
// WebSocket clients.
const sessionBridgeID = "ws-bridge"

// themeCatalog extends the theme port with enumeration for the themes
// endpoint.
type themeCatalog interface {
	ports.ThemeProvider
	Names() []string
}

// Services bundles the application services the HTTP surface exposes.
type Services struct {
	Tools     ports.ToolService
	Decks     ports.DeckService
	Narration ports.NarrationService
	Export    ports.ExportService
	Importer  ports.DeckImporter
	Sessions  ports.SessionSync
	Editor    ports.EditorSessionService
	Themes    themeCatalog
	Blobs     ports.BlobStore
}

// Server is the HTTP adapter: REST endpoints for decks, tools, narration and
// export, plus a WebSocket channel for session events.
type Server struct {
	config entities.ServerConfig
	logger *HTTPLogger

	httpServer  *http.Server
	upgrader    websocket.Upgrader
	connections *ConnectionManager

	tools     ports.ToolService
	decks     ports.DeckService
	narration ports.NarrationService
	export    ports.ExportService
	importer  ports.DeckImporter
	sessions  ports.SessionSync
	editor    ports.EditorSessionService
	themes    themeCatalog
	blobs     ports.BlobStore
}

// NewServer creates the HTTP server
func NewServer(config entities.ServerConfig, logging entities.LoggingConfig, services Services) *Server {
	logger := NewHTTPLoggerWithLevel("http", logging.Verbose, logging.GetLevel())

	s := &Server{
		config:      config,
		logger:      logger,
		connections: NewConnectionManager(logger),
		tools:       services.Tools,
		decks:       services.Decks,
		narration:   services.Narration,
		export:      services.Export,
		importer:    services.Importer,
		sessions:    services.Sessions,
		editor:      services.Editor,
		themes:      services.Themes,
		blobs:       services.Blobs,
	}
	s.upgrader = createUpgrader(config, logger)
	return s
}

// Start begins serving and blocks until the listener fails or Stop is called
func (s *Server) Start() error {
	go s.connections.Run()
	s.bridgeSessions()

	handler := s.buildHandler()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
	}

	s.logger.Info("Server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.sessions != nil {
		s.sessions.Unsubscribe(sessionBridgeID)
	}
	s.connections.Stop()

	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

// bridgeSessions forwards domain session events to WebSocket clients
func (s *Server) bridgeSessions() {
	if s.sessions == nil {
		return
	}
	events := s.sessions.Subscribe(sessionBridgeID)
	go func() {
		for event := range events {
			s.connections.Broadcast(event)
		}
	}()
}

func (s *Server) buildHandler() http.Handler {
	router := mux.NewRouter()
	s.setupRoutes(router)

	var handler http.Handler = router
	handler = createRecoveryMiddleware(handler, s.logger)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = rateLimitMiddleware(handler)
	handler = securityHeadersMiddleware(handler)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Owner-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler(handler)
}

func (s *Server) setupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/tools", s.handleToolCall).Methods(http.MethodPost)

	api.HandleFunc("/decks", s.handleListDecks).Methods(http.MethodGet)
	api.HandleFunc("/decks", s.handleCreateDeck).Methods(http.MethodPost)
	api.HandleFunc("/decks/delete", s.handleBulkDeleteDecks).Methods(http.MethodPost)
	api.HandleFunc("/decks/import", s.handleImportDeck).Methods(http.MethodPost)
	api.HandleFunc("/decks/{id}", s.handleGetDeck).Methods(http.MethodGet)
	api.HandleFunc("/decks/{id}", s.handleSaveDeck).Methods(http.MethodPut)
	api.HandleFunc("/decks/{id}", s.handleDeleteDeck).Methods(http.MethodDelete)
	api.HandleFunc("/decks/{id}/rename", s.handleRenameDeck).Methods(http.MethodPost)
	api.HandleFunc("/decks/{id}/duplicate", s.handleDuplicateDeck).Methods(http.MethodPost)

	api.HandleFunc("/sessions", s.handleOpenSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/commands", s.handleApplySessionCommands).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/slides", s.handleSessionSlides).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleCloseSession).Methods(http.MethodDelete)

	api.HandleFunc("/tts/generate", s.handleGenerateNarration).Methods(http.MethodPost)
	api.HandleFunc("/tts/cache", s.handleGetNarrationCache).Methods(http.MethodGet)
	api.HandleFunc("/tts/cache", s.handleClearNarrationCache).Methods(http.MethodDelete)

	api.HandleFunc("/export/reveal", s.handleExportReveal).Methods(http.MethodGet)
	api.HandleFunc("/export/voice", s.handleExportVoice).Methods(http.MethodGet)

	api.HandleFunc("/themes", s.handleListThemes).Methods(http.MethodGet)

	router.HandleFunc("/audio/{ref:.+}", s.handleAudio).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWebSocket)
}
