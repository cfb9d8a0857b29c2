package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/greekscope/greekscope/internal/database"
)

// StatusHandler serves health and status endpoints. db may be nil when the
// service runs on built-in presets without Postgres.
type StatusHandler struct {
	db      *sql.DB
	started time.Time
	logger  *slog.Logger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(db *sql.DB, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		db:      db,
		started: time.Now(),
		logger:  logger,
	}
}

// Health handles GET /api/v1/health.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"status": "ok",
	}

	if h.db != nil {
		if err := database.HealthCheck(r.Context(), h.db); err != nil {
			h.logger.Error("database health check failed", "error", err)
			status["status"] = "degraded"
			status["database"] = "unreachable"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if err := json.NewEncoder(w).Encode(status); err != nil {
				h.logger.Error("failed to encode response", "error", err)
			}
			return
		}
		status["database"] = "ok"
	}

	writeJSON(w, h.logger, status)
}

// Status handles GET /api/v1/status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"service":        "greekscope",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"profiles":       "builtin",
	}

	if h.db != nil {
		status["profiles"] = "postgres"
		status["database"] = database.Stats(h.db)
	}

	writeJSON(w, h.logger, status)
}
