package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tphummel/equipment_tracker/internal/db"
	"github.com/tphummel/equipment_tracker/internal/handlers"
	"github.com/tphummel/equipment_tracker/internal/metrics"
	"github.com/tphummel/equipment_tracker/internal/middleware"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

// loadConfig reads service configuration from environment variables and
// applies defaults. API_TOKEN is optional; when unset the API is open.
func loadConfig() (token, dbPath, port string) {
	token = os.Getenv("API_TOKEN")
	dbPath = os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./equipment.db"
	}
	port = os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return
}

// newHandler wires the routes, metrics and request logging around h.
func newHandler(h *handlers.Handler, token string, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux, token)

	// Prometheus metrics are served without auth.
	mux.Handle("GET /metrics", metrics.Handler(reg))

	skip := func(r *http.Request) bool {
		return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
	}
	return middleware.RequestLogger(logger, skip, mux)
}

func main() {
	token, dbPath, port := loadConfig()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	if token == "" {
		slog.Warn("API_TOKEN is not set; equipment routes are unauthenticated")
	}

	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics.Register(reg, database)

	h := &handlers.Handler{DB: database, Version: version, Commit: commit}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           newHandler(h, token, reg, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", srv.Addr, "db", dbPath, "version", version)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
	if err := database.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
	slog.Info("server stopped")
}
