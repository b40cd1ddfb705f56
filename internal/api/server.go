package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/faqdesk/internal/config"
	"github.com/dgallion1/faqdesk/internal/pipeline"
	"github.com/dgallion1/faqdesk/internal/workspace"
)

// MCPPath is where the MCP handler is mounted when one is given.
const MCPPath = "/mcp"

// Server is the HTTP API server for faqdesk.
type Server struct {
	router       chi.Router
	ws           *workspace.Workspace
	orchestrator *pipeline.Orchestrator
	sessions     *sessionStore
	mcp          http.Handler
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. mcp may be nil.
func NewServer(ws *workspace.Workspace, orch *pipeline.Orchestrator, mcp http.Handler, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ws:           ws,
		orchestrator: orch,
		sessions:     newSessionStore(cfg.SessionTTL),
		mcp:          mcp,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/languages", s.handleLanguages)
		r.Get("/api/documents/{lang}", s.handleGetDocument)
		r.Put("/api/documents/{lang}", s.handlePutDocument)
		r.Get("/api/merged", s.handleMerged)
		r.Get("/api/coverage", s.handleCoverage)
		r.Get("/api/search", s.handleSearch)
		r.Get("/api/questions/{id}", s.handleQuestion)

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{sessionID}", s.handleGetSession)
			r.Delete("/{sessionID}", s.handleDeleteSession)
			r.Post("/{sessionID}/select", s.handleSelect)
			r.Post("/{sessionID}/stage", s.handleStage)
			r.Delete("/{sessionID}/staged", s.handleDiscard)
			r.Post("/{sessionID}/commit", s.handleCommit)
			r.Post("/{sessionID}/nodes", s.handleAddNode)
			r.Delete("/{sessionID}/active", s.handleDeleteActive)
			r.Post("/{sessionID}/move", s.handleMove)
			r.Post("/{sessionID}/save", s.handleSaveSession)
		})

		r.Get("/api/export/{file}", s.handleExportDownload)
		r.Post("/api/export/{lang}", s.handleExportStore)
		r.Post("/api/import/{lang}/csv", s.handleImportCSV)
		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
		r.Post("/api/images", s.handleImage)

		r.Get("/api/stats", s.handleStats)

		if s.mcp != nil {
			r.Handle(MCPPath, s.mcp)
		}
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
