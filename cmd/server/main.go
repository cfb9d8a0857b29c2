package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/greekscope/greekscope/internal/api"
	"github.com/greekscope/greekscope/internal/auth"
	"github.com/greekscope/greekscope/internal/commentary"
	"github.com/greekscope/greekscope/internal/config"
	"github.com/greekscope/greekscope/internal/database"
	"github.com/greekscope/greekscope/internal/logging"
	"github.com/greekscope/greekscope/internal/metrics"
	"github.com/greekscope/greekscope/internal/presets"
	"github.com/greekscope/greekscope/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting greekscope")

	// Profile store: Postgres when DATABASE_URL is set, built-in presets
	// otherwise.
	var db *sql.DB
	var profiles presets.Repository
	if cfg.Database.URL != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Database.URL

		logger.Info("connecting to database")
		db, err = database.Connect(context.Background(), dbCfg)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("database connected")

		profileRepo := database.NewProfileRepository(db)
		if err := profileRepo.EnsureSchema(context.Background()); err != nil {
			logger.Error("failed to ensure profile schema", "error", err)
			os.Exit(1)
		}
		profiles = profileRepo
	} else {
		logger.Info("no DATABASE_URL set, using built-in profiles")
		profiles = presets.NewInMemoryRepository()
	}

	// Commentary: OpenAI when an API key is configured, deterministic
	// rules otherwise.
	var commentator commentary.Commentator
	openaiCommentator, err := commentary.NewOpenAICommentator(commentary.ConfigFromEnv(), logger)
	if err != nil {
		logger.Info("OpenAI commentary unavailable, using rule-based commentary", "reason", err)
		commentator = commentary.NewRuleBased()
	} else {
		logger.Info("using OpenAI commentary")
		commentator = openaiCommentator
	}

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"greekscope","status":"ready","version":"0.1.0"}`))
	})

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}
	mux.Handle("/metrics", collector.Handler())

	// Load auth configuration
	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	// Add REST API routes
	logger.Info("setting up REST API")
	api.SetupRoutes(mux, profiles, commentator, collector, cfg.Engine, db, authConfig, logger)

	handler := collector.InstrumentHandler(mux)

	// Start server
	srv := server.New(cfg.Server, logger, handler)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("greekscope started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
