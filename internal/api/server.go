// Package api serves the portfolio handlers over plain HTTP for the
// long-running deployment.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"portfolio-api/internal/config"
	"portfolio-api/internal/handlers"

	"github.com/gorilla/mux"
)

// Server is the HTTP API server.
type Server struct {
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	portfolios *handlers.Portfolios
	settings   config.Settings
	log        *slog.Logger

	limiter   *RateLimiter
	sweepCtx  context.Context
	stopSweep context.CancelFunc
}

// NewServer builds the router and middleware chain for settings.
func NewServer(settings config.Settings, portfolios *handlers.Portfolios, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:     mux.NewRouter(),
		portfolios: portfolios,
		settings:   settings,
		log:        log,
	}

	s.setupRoutes()
	s.setupMiddleware()

	s.httpServer = &http.Server{
		Addr:              settings.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupMiddleware wraps the router from the outside so preflight requests
// are answered for every path, matched or not. Order: logging, recovery,
// CORS, rate limiting.
func (s *Server) setupMiddleware() {
	var h http.Handler = s.router

	if s.settings.RateLimit.RPS > 0 {
		s.limiter = NewRateLimiter(s.settings.RateLimit.RPS, s.settings.RateLimit.Burst)
		s.sweepCtx, s.stopSweep = context.WithCancel(context.Background())
		h = RateLimitMiddleware(s.limiter)(h)
	}
	h = CORSMiddleware(h)
	h = RecoveryMiddleware(s.log)(h)
	h = LoggingMiddleware(s.log)(h)

	s.handler = h
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", adapt(handlers.Health)).Methods(http.MethodGet)

	s.router.HandleFunc("/portfolios", adapt(s.portfolios.Create)).Methods(http.MethodPost)
	s.router.HandleFunc("/portfolios", adapt(s.portfolios.GetAll)).Methods(http.MethodGet)
	s.router.HandleFunc("/portfolios/{id}", adapt(s.portfolios.GetOne)).Methods(http.MethodGet)
	s.router.HandleFunc("/portfolios/{id}", adapt(s.portfolios.Update)).Methods(http.MethodPut)
	s.router.HandleFunc("/portfolios/{id}", adapt(s.portfolios.Delete)).Methods(http.MethodDelete)

	if s.settings.StaticDir != "" {
		s.router.MatcherFunc(isStaticRequest).Handler(staticFiles(s.settings.StaticDir))
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// isStaticRequest matches GET and HEAD outside the API paths, so unknown API
// paths and other methods fall through to the JSON 404.
func isStaticRequest(r *http.Request, _ *mux.RouteMatch) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	p := r.URL.Path
	return p != "/portfolios" && !strings.HasPrefix(p, "/portfolios/") && p != "/health"
}

// staticFiles serves dir and answers a missing file with the JSON 404.
func staticFiles(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); err != nil {
			respondError(w, http.StatusNotFound, "Not found")
			return
		}
		files.ServeHTTP(w, r)
	})
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting API server", "addr", s.httpServer.Addr, "env", s.settings.Env)

	if s.limiter != nil {
		go s.limiter.Run(s.sweepCtx, limiterSweepInterval, limiterIdleTTL)
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down API server")
	if s.stopSweep != nil {
		s.stopSweep()
	}
	return s.httpServer.Shutdown(ctx)
}
