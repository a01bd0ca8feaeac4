// Package httpserver wires the preview server's routes and lifecycle.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/logfields"
	"git.home.luguber.info/inful/docrefactor/internal/metrics"
	"git.home.luguber.info/inful/docrefactor/internal/refactor"
	handlers "git.home.luguber.info/inful/docrefactor/internal/server/handlers"
	smw "git.home.luguber.info/inful/docrefactor/internal/server/middleware"
)

const readHeaderTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr     string
	Root     string // absolute doc root
	Engine   *refactor.Engine
	Matcher  handlers.PageMatcher
	Registry *prom.Registry // nil disables /metrics
}

// Server serves a rustdoc tree, refactoring pages per request.
type Server struct {
	opts    Options
	router  *chi.Mux
	httpSrv *http.Server
	addr    string
}

// New builds the router. Nothing listens until Start.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	logger := slog.Default()
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(smw.Chain(logger, derrors.NewHTTPErrorAdapter(logger)))

	monitoring := handlers.NewMonitoringHandlers(opts.Root)
	docs := handlers.NewDocsHandlers(opts.Root, opts.Engine, opts.Matcher)

	r.Get("/healthz", monitoring.HandleHealthCheck)
	if opts.Registry != nil {
		r.Handle("/metrics", metrics.HTTPHandler(opts.Registry))
	}
	r.Get("/*", docs.HandlePage)

	s.router = r
	return s
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the bound address after Start.
func (s *Server) Addr() string { return s.addr }

// Start binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryNetwork, derrors.SeverityFatal, "failed to bind preview server").
			WithContext("addr", s.opts.Addr)
	}
	s.addr = ln.Addr().String()
	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server stopped", logfields.Error(err))
		}
	}()
	slog.Info("Preview server started", slog.String("addr", s.addr), logfields.Path(s.opts.Root))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("preview server shutdown: %w", err)
	}
	return nil
}
