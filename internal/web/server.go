package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/blockedby/dosimetria-portal/internal/models"
	portalmw "github.com/blockedby/dosimetria-portal/internal/web/middleware"
)

// Config holds server configuration
type Config struct {
	Port        int
	StaticDir   string
	CORSOrigins []string

	// JWTSecret verifies staff tokens. Staff routes answer 401 when empty.
	JWTSecret []byte
	// Profiles backs role checks on staff routes.
	Profiles portalmw.ProfileLookup
	// Limiter throttles the public intake endpoint; nil disables it.
	Limiter portalmw.Limiter
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool
	// Health reports store reachability for /health; nil means always ok.
	Health func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	listener   net.Listener
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	router := chi.NewRouter()

	srv := &Server{
		router: router,
		config: cfg,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.config.TrustProxy {
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(middleware.Compress(5))

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/despacho", http.StatusFound)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if s.config.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := s.config.Health(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","version":"dev"}`)); err != nil {
			_ = err // Client disconnected
		}
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s.httpServer.Serve(listener)
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}

// staff authenticates the caller and requires one of roles.
func (s *Server) staff(roles ...string) func(http.Handler) http.Handler {
	authn := portalmw.Authenticate(s.config.JWTSecret)
	authz := portalmw.RequireRole(s.config.Profiles, roles...)
	return func(next http.Handler) http.Handler {
		return authn(authz(next))
	}
}

// intake throttles the public endpoint when a limiter is configured.
func (s *Server) intake(next http.Handler) http.Handler {
	if s.config.Limiter == nil {
		return next
	}
	return portalmw.RateLimit(s.config.Limiter)(next)
}

// RegisterDispatchHandler registers the public intake endpoint and the staff views
func (s *Server) RegisterDispatchHandler(handler interface{}) {
	type dispatchHandler interface {
		Submit(w http.ResponseWriter, r *http.Request)
		List(w http.ResponseWriter, r *http.Request)
		Export(w http.ResponseWriter, r *http.Request)
		Summary(w http.ResponseWriter, r *http.Request)
	}

	h, ok := handler.(dispatchHandler)
	if !ok {
		return
	}

	s.router.Route("/api/despachos", func(r chi.Router) {
		r.With(s.intake).Post("/", h.Submit)
		r.With(s.staff(
			models.RoleAdministracion, models.RoleCoordinacion,
			models.RoleTecnico, models.RoleOperario,
		)).Get("/", h.List)
		r.With(s.staff(models.RoleAdministracion, models.RoleCoordinacion)).Get("/export.xlsx", h.Export)
	})
	s.router.With(s.staff()).Get("/api/dashboard/summary", h.Summary)
}

// RegisterSessionHandler registers the signed-in profile endpoint
func (s *Server) RegisterSessionHandler(handler interface{}) {
	type sessionHandler interface {
		Get(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(sessionHandler); ok {
		s.router.With(s.staff()).Get("/api/session", h.Get)
	}
}

// RegisterPagesHandler registers HTML pages
func (s *Server) RegisterPagesHandler(handler interface{}, placeholders []string) {
	type pagesHandler interface {
		Despacho(w http.ResponseWriter, r *http.Request)
		Placeholder(section string) http.HandlerFunc
	}

	h, ok := handler.(pagesHandler)
	if !ok {
		return
	}

	s.router.Get("/despacho", h.Despacho)
	for _, section := range placeholders {
		s.router.Get("/"+section, h.Placeholder(section))
	}
}

// Router returns the underlying Chi router for external route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}
