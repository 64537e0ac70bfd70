package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/aktivasi/internal/period"
)

// Reader is the read side of the record store.
type Reader interface {
	ReadAll(ctx context.Context, table string) ([][]string, error)
}

type Options struct {
	Port            int
	ActivationTable string
	UserTable       string
	JWTSecret       string
	JWTIssuer       string
	// Location is the regional timezone for report windows. Nil means
	// period.DefaultTimezone.
	Location *time.Location
}

type Server struct {
	router *chi.Mux
	store  Reader
	opts   Options
	logger *slog.Logger
	http   *http.Server
}

func NewServer(store Reader, opts Options, logger *slog.Logger) *Server {
	if opts.Location == nil {
		opts.Location = period.LoadLocation(period.DefaultTimezone)
	}
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		store:  store,
		opts:   opts,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/status", s.status)

	router.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/api/v1/reports/{period}", s.getReport)
		r.Get("/api/v1/export.csv", s.exportCSV)
	})

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "aktivasi",
		"status":  "ok",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
