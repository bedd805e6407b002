package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"labelspool/internal/agent"
	"labelspool/internal/config"
	"labelspool/internal/logging"
)

const defaultHistoryLimit = 50

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// statusPayload mirrors Daemon.Status for JSON consumers.
type statusPayload struct {
	Running      bool   `json:"running"`
	Blocked      bool   `json:"blocked"`
	LastTickAt   string `json:"last_tick_at,omitempty"`
	Ticks        uint64 `json:"ticks"`
	LastError    string `json:"last_error,omitempty"`
	DatabasePath string `json:"database_path"`
	LockFilePath string `json:"lock_file_path"`
}

type historyEntry struct {
	OrderID   string `json:"order_id"`
	PrintedAt string `json:"printed_at"`
}

type queueEntry struct {
	ID        int64  `json:"id"`
	OrderID   string `json:"order_id"`
	Customer  string `json:"customer,omitempty"`
	Courier   string `json:"courier,omitempty"`
	Ext       string `json:"ext"`
	CreatedAt string `json:"created_at"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  cfg.Paths.APIToken,
		logger: logging.WithComponent(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.requireToken(srv.handleStatus))
	mux.HandleFunc("/api/history", srv.requireToken(srv.handleHistory))
	mux.HandleFunc("/api/queue", srv.requireToken(srv.handleQueue))
	mux.HandleFunc("/api/health", srv.requireToken(srv.handleHealth))
	mux.HandleFunc("/test", srv.requireToken(srv.handleTest))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := statusPayload{
		Running:      status.Running,
		Blocked:      status.Agent.Blocked,
		Ticks:        status.Agent.TicksComplete,
		LastError:    status.Agent.LastError,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
	}
	if !status.Agent.LastTickAt.IsZero() {
		payload.LastTickAt = status.Agent.LastTickAt.UTC().Format(time.RFC3339)
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	records, err := s.daemon.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			OrderID:   rec.OrderID,
			PrintedAt: rec.PrintedAt.UTC().Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"orders": entries})
}

func (s *apiServer) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	labels, err := s.daemon.Queue(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	entries := make([]queueEntry, 0, len(labels))
	for _, lbl := range labels {
		entries = append(entries, queueEntry{
			ID:        lbl.ID,
			OrderID:   lbl.OrderID,
			Customer:  lbl.Context.CustomerName,
			Courier:   lbl.Courier,
			Ext:       lbl.Ext,
			CreatedAt: lbl.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"labels": entries})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health, err := s.daemon.DatabaseHealth(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	s.writeJSON(w, http.StatusOK, health)
}

// handleTest re-sends the notification for the last observed order. Before
// any order has been seen there is nothing to send and the endpoint 404s.
func (s *apiServer) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	err := s.daemon.TestNotification(r.Context())
	switch {
	case errors.Is(err, agent.ErrNoOrderObserved):
		s.writeError(w, http.StatusNotFound, "no order observed yet")
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "notification sent"})
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
