// Package web serves the record pages to a browser: listing, creation, detail
// and update, backed by the same records service as the terminal UI.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gravitrone/datafiles/internal/records"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Pinger checks that the engine is reachable.
type Pinger interface {
	Ping(ctx context.Context, table string) error
}

// Server is the browser front end.
type Server struct {
	svc    *records.Service
	pinger Pinger
	logger *zap.Logger
	pages  map[string]*template.Template

	maxBody int64
}

// New parses the page templates and returns a server.
func New(svc *records.Service, pinger Pinger, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	return &Server{
		svc:    svc,
		pinger: pinger,
		logger: logger.With(zap.String("component", "web")),
		pages:  pages,

		maxBody: maxRequestBytes,
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"list", "form", "detail"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Handler returns the routed handler with request id, metrics and logging
// middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(metrics)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleList)
	r.Get("/create", s.handleCreateForm)
	r.Post("/create", s.handleCreate)
	r.Get("/detail/{id}", s.handleDetail)
	r.Get("/detail/{id}/files/{slot}", s.handleDownload)
	r.Get("/update/{id}", s.handleUpdateForm)
	r.Post("/update/{id}", s.handleUpdate)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.svc.Wait()
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := s.pinger.Ping(r.Context(), s.svc.Table()); err != nil {
		s.logger.Warn("health check", zap.Error(err))
		http.Error(w, "engine unreachable", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ok\n"))
}
