// Package server exposes the loaded dataset over HTTP: the company filter
// endpoint, a health check and a server-sent event stream that announces
// dataset reloads.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vanderheijden86/bubblecap/pkg/model"
)

// DefaultRequestTimeout bounds every API request.
const DefaultRequestTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Addr           string
	AllowAll       bool // allow all CORS origins
	RequestTimeout time.Duration
}

// Server serves one dataset at a time. SetDataset swaps it atomically, so
// handlers never see a half-loaded dataset.
type Server struct {
	cfg        Config
	log        zerolog.Logger
	data       atomic.Pointer[model.Dataset]
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server over ds.
func New(cfg Config, ds *model.Dataset, log zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if ds == nil {
		ds = model.NewDataset()
	}
	s := &Server{
		cfg: cfg,
		log: log.With().Str("component", "server").Logger(),
		hub: NewHub(),
	}
	s.data.Store(ds)
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "companies": s.Dataset().Len()})
	})

	// The event stream is long-lived and stays outside the request timeout.
	r.Get("/api/events", s.hub.SSEHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Get("/api/company", s.handleCompany)
	})
	return r
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler { return s.router }

// Hub returns the reload event hub.
func (s *Server) Hub() *Hub { return s.hub }

// Dataset returns the dataset currently served.
func (s *Server) Dataset() *model.Dataset { return s.data.Load() }

// SetDataset replaces the served dataset and notifies event subscribers.
func (s *Server) SetDataset(ds *model.Dataset, hash string) {
	if ds == nil {
		ds = model.NewDataset()
	}
	s.data.Store(ds)
	s.hub.Broadcast(ReloadEvent{Count: ds.Len(), Hash: hash})
	s.log.Info().Int("companies", ds.Len()).Msg("Dataset swapped")
}

type listResponse struct {
	Count  int             `json:"count"`
	Result []model.Company `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleCompany implements GET /api/company. Precedence is name, then nse,
// then bse; with no filter every record is returned.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	ds := s.Dataset()
	q := r.URL.Query()

	if name := q.Get("name"); name != "" {
		result := ds.FilterByName(name)
		writeJSON(w, http.StatusOK, listResponse{Count: len(result), Result: result})
		return
	}

	var (
		c   model.Company
		err error
	)
	switch {
	case q.Get("nse") != "":
		c, err = ds.FindByNSE(strings.TrimSpace(q.Get("nse")))
	case q.Get("bse") != "":
		c, err = ds.FindByBSE(strings.TrimSpace(q.Get("bse")))
	default:
		all := ds.Records()
		writeJSON(w, http.StatusOK, listResponse{Count: len(all), Result: all})
		return
	}

	if errors.Is(err, model.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Company not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Company lookup failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.hub.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
