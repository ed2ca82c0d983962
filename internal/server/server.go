// Package server exposes the health endpoints used by the hosting
// platform to keep the monitor alive and observable.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/adwatch/internal/monitor"
)

// Server serves liveness and monitor status over HTTP.
type Server struct {
	port    int
	sheetID string
	health  *monitor.Health
	log     *zap.Logger
}

// New builds a health server reading from the given tracker.
func New(port int, sheetID string, health *monitor.Health) *Server {
	return &Server{
		port:    port,
		sheetID: sheetID,
		health:  health,
		log:     zap.L().With(zap.String("component", "server")),
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleRoot)
	r.Get("/status", s.handleStatus)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("health server listening", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"message":           "ad metrics monitor",
		"monitoring_active": snap.Running,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Snapshot()

	lastPass := ""
	if !snap.LastPass.IsZero() {
		lastPass = snap.LastPass.UTC().Format(time.RFC3339)
	}

	body := map[string]any{
		"status":            "healthy",
		"monitoring_status": snap.State,
		"monitoring_active": snap.Running,
		"sheet_id":          s.sheetID,
		"passes":            snap.Passes,
		"rows_written":      snap.RowsWritten,
		"last_pass":         lastPass,
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	}
	if snap.LastError != "" {
		body["last_error"] = snap.LastError
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
