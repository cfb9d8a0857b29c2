package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"log/slog"

	"github.com/greekscope/greekscope/internal/models"
	"github.com/greekscope/greekscope/internal/presets"
)

// ProfileHandler serves the underlying-profile endpoints. Reads are public;
// mutation requires authentication.
type ProfileHandler struct {
	repo   presets.Repository
	logger *slog.Logger
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(repo presets.Repository, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		repo:   repo,
		logger: logger,
	}
}

// ListProfiles handles GET /api/v1/profiles.
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profiles, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list profiles", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// GetProfile handles GET /api/v1/profiles/{symbol}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	symbol := profileSymbolFromPath(r.URL.Path)
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	profile, err := h.repo.Get(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, presets.ErrNotFound) {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch profile", "symbol", symbol, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.logger, profile)
}

// UpsertProfile handles PUT /api/v1/profiles/{symbol}. The symbol in the
// path wins over any symbol in the body.
func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	symbol := profileSymbolFromPath(r.URL.Path)
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	var profile models.UnderlyingProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	profile.Symbol = strings.ToUpper(symbol)

	if err := ValidateProfile(&profile); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.Upsert(r.Context(), profile); err != nil {
		h.logger.Error("failed to store profile", "symbol", profile.Symbol, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("profile stored", "symbol", profile.Symbol)
	writeJSON(w, h.logger, profile)
}

func profileSymbolFromPath(path string) string {
	const prefix = "/api/v1/profiles/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	symbol := strings.TrimPrefix(path, prefix)
	return strings.Trim(symbol, "/")
}
