// Command sevdesk-emulator runs a local stand-in for the sevDesk v1 API so
// sync runs and integration tests never have to touch a production account.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sevsync-dev/sevsync/internal/emulator/api"
	"github.com/sevsync-dev/sevsync/internal/emulator/store"
)

const (
	defaultPort   = "8080"
	defaultDBPath = "./data/sevdesk.db"
)

func main() {
	// Setup structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Get configuration from environment variables.
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	token := os.Getenv("SEVDESK_EMULATOR_TOKEN")
	if token == "" {
		token = uuid.NewString()
		slog.Info("generated API token", "token", token)
	}

	// Initialize store.
	st, err := store.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize store", "error", err, "db_path", dbPath)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()

	slog.Info("database initialized", "db_path", dbPath)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	slog.Info("starting sevDesk API emulator", "addr", addr, "port", port)

	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(st, token),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
