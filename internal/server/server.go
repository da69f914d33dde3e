package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meltforce/liftplan/internal/gencache"
	"github.com/meltforce/liftplan/internal/history"
	lpmcp "github.com/meltforce/liftplan/internal/mcp"
	"github.com/meltforce/liftplan/internal/metrics"
	"github.com/meltforce/liftplan/internal/storage"
)

// Backend is the persistence the server needs. *storage.DB satisfies it.
type Backend interface {
	KV(userID int) history.Store
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	APIKey string
	// HistoryLimit caps each user's history list; below 1 uses the default.
	HistoryLimit int
	// Cache memoizes unsaved generations; nil disables caching.
	Cache *gencache.Cache
	// Registry receives the server's metrics and is served at /metrics.
	// Nil uses a private registry.
	Registry *prometheus.Registry
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db           Backend
	log          *slog.Logger
	apiKey       string
	historyLimit int
	cache        *gencache.Cache
	metrics      *metrics.Manager
	registry     *prometheus.Registry
	tailscale    WhoIser
	router       chi.Router
}

// New creates a new Server with all routes configured.
func New(db Backend, opts Options, log *slog.Logger) *Server {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &Server{
		db:           db,
		log:          log,
		apiKey:       opts.APIKey,
		historyLimit: opts.HistoryLimit,
		cache:        opts.Cache,
		metrics:      metrics.NewManager("liftplan", "server", reg),
		registry:     reg,
		router:       chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the dev user to Tailscale
// WhoIs lookups. Call before serving.
func (s *Server) SetTailscale(lc WhoIser) {
	s.tailscale = lc
}

// Recorder returns the history recorder of a user.
func (s *Server) Recorder(userID int) *history.Recorder {
	return history.NewRecorder(s.db.KV(userID), s.historyLimit)
}

// Programs returns the MCP data source backed by the server's recorders.
func (s *Server) Programs() lpmcp.DataSource {
	return lpmcp.RecorderSource{Recorder: s.Recorder}
}

// MountMCP serves mcpSrv over streamable HTTP at /mcp. Tool calls run as
// the identified user.
func (s *Server) MountMCP(mcpSrv *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return lpmcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.With(s.identify).Handle("/mcp", h)
}

func (s *Server) routes() {
	s.router.Use(PanicRecovery(s.log, s.metrics))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)

		r.Get("/me", s.handleMe)
		r.Get("/catalog", s.handleCatalog)
		r.Post("/onerepmax", s.handleOneRepMax)

		r.Route("/programs/{program}", func(r chi.Router) {
			r.Post("/", s.handleGenerate)
			r.Delete("/", s.handleClearProgram)
			r.Get("/defaults", s.handleDefaults)
			r.Get("/latest", s.handleLatest)
			r.Get("/latest/sheet", s.handleSheet)
		})

		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/history/export", s.handleExport)

		r.Get("/settings/stats", s.handleStats)
		r.Get("/settings/imports", s.handleImportLogs)

		// Import endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/history/import", s.handleImport)
			r.Post("/seed/alpha", s.handleSeedAlpha)
		})
	})
}

// identify resolves the caller through Tailscale when configured and falls
// back to the dev user otherwise.
func (s *Server) identify(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.db, s.log)(next).ServeHTTP(w, r)
	})
}
