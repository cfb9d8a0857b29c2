package api

import (
	"database/sql"
	"net/http"

	"log/slog"

	"github.com/greekscope/greekscope/internal/auth"
	"github.com/greekscope/greekscope/internal/commentary"
	"github.com/greekscope/greekscope/internal/config"
	"github.com/greekscope/greekscope/internal/metrics"
	"github.com/greekscope/greekscope/internal/presets"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, profiles presets.Repository, commentator commentary.Commentator, collector *metrics.Collector, engineCfg config.EngineConfig, db *sql.DB, authConfig auth.Config, logger *slog.Logger) {
	analysisHandler := NewAnalysisHandler(profiles, commentator, collector, engineCfg, logger)
	profileHandler := NewProfileHandler(profiles, logger)
	statusHandler := NewStatusHandler(db, logger)
	authHandler := NewAuthHandler(authConfig, logger)

	// Auth middleware
	authMiddleware := auth.AuthMiddleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(authHandler.ValidateToken)).ServeHTTP(w, r)
	})

	// Analysis routes (public)
	mux.HandleFunc("/api/v1/options/analyze", analysisHandler.AnalyzeOptions)
	mux.HandleFunc("/api/v1/options/iv", analysisHandler.SolveIV)
	mux.HandleFunc("/api/v1/options/ladder", analysisHandler.GetLadder)
	mux.HandleFunc("/api/v1/market/expected-moves", analysisHandler.GetExpectedMoves)
	mux.HandleFunc("/api/v1/trading/best-contracts", analysisHandler.BestContracts)

	// Profile routes (reads public, writes admin only)
	mux.HandleFunc("/api/v1/profiles", profileHandler.ListProfiles)
	mux.HandleFunc("/api/v1/profiles/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/profiles/" {
			http.NotFound(w, r)
			return
		}

		// Handle CORS preflight
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusOK)
			return
		}

		switch r.Method {
		case http.MethodGet:
			profileHandler.GetProfile(w, r)
		case http.MethodPut:
			authMiddleware(http.HandlerFunc(profileHandler.UpsertProfile)).ServeHTTP(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health and status routes (public)
	mux.HandleFunc("/api/v1/health", statusHandler.Health)
	mux.HandleFunc("/api/v1/status", statusHandler.Status)

	// CORS preflight
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})
}
