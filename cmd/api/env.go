package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// listenAddr returns the HTTP listen address (CALC_ADDR, default :8080).
func listenAddr() string {
	addr := os.Getenv("CALC_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return addr
}

// dataDir returns the directory holding the JSON stores
// (CALC_DATA_DIR, default ./data).
func dataDir() string {
	dir := os.Getenv("CALC_DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	return dir
}

func usersPath() string   { return filepath.Join(dataDir(), "users.json") }
func historyPath() string { return filepath.Join(dataDir(), "history.json") }

// otlpConfigured reports whether an OTLP endpoint is set, gating the log
// bridge in main.
func otlpConfigured() bool {
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}
