// Package server exposes a Viewer over HTTP: the viewer page, uploads,
// search, exports and error reports. Each browser gets its own in-memory
// session keyed by a cookie.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	mdview "github.com/alnah/go-mdview"
	"github.com/alnah/go-mdview/internal/config"
	"github.com/alnah/go-mdview/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const idleTimeout = 60 * time.Second

// Server serves one Viewer. It does not own the Viewer; the caller closes it.
type Server struct {
	viewer  *mdview.Viewer
	reports *report.Logger
	store   *sessionStore
	router  chi.Router
	log     *slog.Logger

	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	sessionTTL      time.Duration
	maxFiles        int
	maxRequestSize  int64
}

// New builds a Server from cfg. A nil logger discards output.
func New(v *mdview.Viewer, cfg *config.Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		viewer:          v,
		reports:         report.NewLogger(log.With("component", "report")),
		log:             log,
		addr:            cfg.Server.Addr,
		readTimeout:     cfg.Server.ReadTimeout.Std(),
		writeTimeout:    cfg.Server.WriteTimeout.Std(),
		shutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		sessionTTL:      cfg.Server.SessionTTL.Std(),
		maxFiles:        cfg.Upload.MaxFiles,
		maxRequestSize:  cfg.Upload.MaxRequestSize,
	}
	s.store = newSessionStore(v, s.sessionTTL, cfg.Server.MaxSessions)
	s.sessionTTL = s.store.ttl

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", s.handleHealth)
	r.Get("/static/{name}", s.handleScript)

	r.Group(func(r chi.Router) {
		r.Use(withSession(s.store, s.sessionTTL))
		r.Get("/", s.handlePage)
		r.Route("/api", func(r chi.Router) {
			r.Get("/files", s.handleListFiles)
			r.Post("/files", s.handleUpload)
			r.Delete("/files/{name}", s.handleRemoveFile)
			r.Get("/document", s.handleDocument)
			r.Get("/headings", s.handleHeadings)
			r.Get("/search", s.handleSearch)
			r.Get("/export/{format}", s.handleExport)
			r.Post("/report", s.handleReport)
		})
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe listens on the configured address and serves until ctx
// ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx ends. Sessions are dropped on
// return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  idleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	defer s.store.closeAll()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		s.sweepLoop(sweepCtx)
	}()
	defer func() {
		stopSweep()
		<-sweepDone
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepLoop drops idle sessions until ctx ends.
func (s *Server) sweepLoop(ctx context.Context) {
	interval := s.sessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.store.sweep()
		}
	}
}
