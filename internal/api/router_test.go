package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/greekscope/greekscope/internal/auth"
	"github.com/greekscope/greekscope/internal/commentary"
	"github.com/greekscope/greekscope/internal/metrics"
	"github.com/greekscope/greekscope/internal/presets"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	collector, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	authConfig := auth.Config{
		JWTSecret:     "test-secret",
		AdminPassword: "test-password",
		TokenDuration: time.Hour,
	}

	mux := http.NewServeMux()
	SetupRoutes(mux, presets.NewInMemoryRepository(), commentary.NewRuleBased(), collector, testEngineConfig(), nil, authConfig, testLogger())
	return mux
}

func TestRouterPublicRoutes(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"analyze", http.MethodPost, "/api/v1/options/analyze", `{"underlying":"SPY","vol":0.132}`, http.StatusOK},
		{"ladder", http.MethodGet, "/api/v1/options/ladder?spot=604.53&increment=2.5&width=35&dte=8", "", http.StatusOK},
		{"expected moves", http.MethodGet, "/api/v1/market/expected-moves?spot=605&vol=0.15&dte=7&increment=2.5", "", http.StatusOK},
		{"profiles", http.MethodGet, "/api/v1/profiles", "", http.StatusOK},
		{"profile by symbol", http.MethodGet, "/api/v1/profiles/SPY", "", http.StatusOK},
		{"health", http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{"status", http.MethodGet, "/api/v1/status", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.target, bytes.NewReader([]byte(tc.body)))
			} else {
				req = httptest.NewRequest(tc.method, tc.target, nil)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRouterProfileMutationRequiresAuth(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(validProfile("QQQ"))
	if err != nil {
		t.Fatalf("failed to marshal profile: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profiles/QQQ", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestRouterLoginThenMutateProfile(t *testing.T) {
	mux := newTestMux(t)

	loginBody := []byte(`{"password":"test-password"}`)
	loginReq := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(loginBody))
	loginRR := httptest.NewRecorder()
	mux.ServeHTTP(loginRR, loginReq)

	if loginRR.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", loginRR.Code, loginRR.Body.String())
	}

	var login LoginResponse
	if err := json.NewDecoder(loginRR.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a token")
	}

	body, err := json.Marshal(validProfile("QQQ"))
	if err != nil {
		t.Fatalf("failed to marshal profile: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profiles/QQQ", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterRejectsBadLogin(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(`{"password":"wrong"}`)))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/profiles/SPY", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on preflight response")
	}
}
