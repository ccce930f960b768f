package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spacesedan/ballotboard/config"
	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/dashboard"
)

const sessionCookie = "ballot_session"

type Options struct {
	Server   config.ServerConfig
	Routes   *clients.RouteTable
	Sessions *dashboard.SessionStore
	Healthy  *atomic.Bool
	// FetchWait bounds how long a page handler waits for a dispatched fetch
	// before rendering whatever state is current.
	FetchWait time.Duration
}

type Server struct {
	opts     Options
	router   *chi.Mux
	server   *http.Server
	pages    *template.Template
	sessions *dashboard.SessionStore
}

func New(opts Options) (*Server, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if opts.Healthy == nil {
		opts.Healthy = &atomic.Bool{}
		opts.Healthy.Store(true)
	}
	if opts.FetchWait <= 0 {
		opts.FetchWait = clients.DEFAULT_TIMEOUT + time.Second
	}

	s := &Server{
		opts:     opts,
		router:   chi.NewRouter(),
		pages:    pages,
		sessions: opts.Sessions,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", opts.Server.Host, opts.Server.Port),
		Handler:      s.router,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/", s.handleIndex)
	s.router.Get("/compare", s.handleCompare)
	s.router.Post("/analyze", s.handleAnalyzeForm)

	s.router.Route("/charts", func(r chi.Router) {
		r.Get("/summary/{kind}.svg", s.handleSummaryChart)
		r.Get("/compare/{side}/{kind}.svg", s.handleCompareChart)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/sources", s.handleSources)
		r.Get("/summary", s.handleSummary)
		r.Post("/selection", s.handleSelection)
		r.Get("/comparison", s.handleComparison)
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/health", s.handleHealth)
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("[Server] Starting server", slog.String("address", s.server.Addr))
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		slog.Info("[Server] Starting shutdown", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

// session returns the caller's session, issuing a cookie for new ones.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *dashboard.Session {
	var id string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		id = cookie.Value
	}

	sess := s.sessions.Get(id)
	if sess.ID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

// existingSession resolves the caller's cookie without creating a session.
func (s *Server) existingSession(r *http.Request) (*dashboard.Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.Lookup(cookie.Value)
}

// await blocks until done is closed, the request ends, or FetchWait passes.
func (s *Server) await(ctx context.Context, done <-chan struct{}) {
	if done == nil {
		return
	}
	timer := time.NewTimer(s.opts.FetchWait)
	defer timer.Stop()

	select {
	case <-done:
	case <-ctx.Done():
	case <-timer.C:
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("[Server] HTTP request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
