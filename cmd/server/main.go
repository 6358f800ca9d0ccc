/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PlantSwap marketplace server. Handles
  configuration, dependency wiring, catalog seeding, and graceful
  shutdown.

STARTUP SEQUENCE:
  1. Load .env (never overwriting already-set environment variables)
  2. Parse command-line flags
  3. Open the document store (JSON file or SQLite)
  4. Seed the catalog into an empty document
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        Document path (default: plantswap.json)
  -backend   Storage backend: "json" or "sqlite" (default: json)
  -catalog   Optional YAML catalog file overriding the built-in seed

ENVIRONMENT:
  LOG_LEVEL   debug|info|warn|error (default info)
  LOG_FORMAT  text|json (default text)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

EXAMPLES:
  # Flat-file document
  ./server -db=./data/plantswap.json

  # SQLite-backed document
  ./server -backend=sqlite -db=./data/plantswap.db

SEE ALSO:
  - api/server.go: Router configuration
  - store/jsonfile, store/sqlite: Backends
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/plantswap/marketplace/api"
	"github.com/plantswap/marketplace/catalog"
	"github.com/plantswap/marketplace/document"
	"github.com/plantswap/marketplace/economy"
	"github.com/plantswap/marketplace/logging"
	"github.com/plantswap/marketplace/store/jsonfile"
	"github.com/plantswap/marketplace/store/sqlite"
)

func main() {
	// Load .env if present, without overwriting already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "plantswap.json", "Document path (JSON file or SQLite database)")
	backend := flag.String("backend", "json", `Storage backend: "json" or "sqlite"`)
	catalogPath := flag.String("catalog", "", "Optional YAML catalog file")
	flag.Parse()

	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	// Open store
	var store document.Store
	switch *backend {
	case "json":
		s, err := jsonfile.Open(*dbPath)
		if err != nil {
			log.Error("failed to open document", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		store = s
	case "sqlite":
		s, err := sqlite.New(*dbPath)
		if err != nil {
			log.Error("failed to open database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	default:
		log.Error("unknown backend", "backend", *backend)
		os.Exit(1)
	}

	// Seed catalog
	seed := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.LoadFile(*catalogPath)
		if err != nil {
			log.Error("failed to load catalog", "path", *catalogPath, "error", err)
			os.Exit(1)
		}
		seed = loaded
	}
	if err := seed.Seed(context.Background(), store); err != nil {
		log.Error("failed to seed catalog", "error", err)
		os.Exit(1)
	}

	// Wire handler and router
	ops := economy.New(store, economy.DefaultConfig())
	handler := api.NewHandler(store, ops, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", *port), "backend", *backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
