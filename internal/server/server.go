// Package server hosts the mounted widget over HTTP: the rendered
// fragment, a demo page that embeds it, health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mailpane/mailpane/internal/config"
	"github.com/mailpane/mailpane/internal/logging"
	"github.com/mailpane/mailpane/internal/metrics"
	"github.com/mailpane/mailpane/internal/widget"
)

// shutdownGrace bounds how long in-flight requests may run after a stop
// signal.
const shutdownGrace = 5 * time.Second

// Server serves one mounted widget.
type Server struct {
	log     zerolog.Logger
	cfg     config.ServerConfig
	widget  *widget.Widget
	metrics *metrics.Collector
	http    *http.Server
}

// New wires the HTTP surface around an already-mounted widget.
func New(cfg config.ServerConfig, w *widget.Widget, m *metrics.Collector) *Server {
	s := &Server{
		log:     logging.Component("server"),
		cfg:     cfg,
		widget:  w,
		metrics: m,
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(s.router())

	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleDemo).Methods(http.MethodGet)
	r.HandleFunc("/widget/unread", s.handleFragment).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Run serves until the context is cancelled, then drains gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.http.Addr).Msg("listening")
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleFragment serves the widget's current subtree as an HTML
// fragment. An inert widget yields 404: there is nothing mounted.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	if !s.widget.Mounted() {
		http.Error(w, "widget not mounted", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, s.widget.HTML())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// handleDemo serves a page that embeds the fragment and polls it, with
// the stylesheet the cascade animation relies on.
func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, demoPage)
}
