/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the library policy engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the logger
  3. Initialize SQLite store
  4. Load the policy table (defaults, or a JSON overlay file)
  5. Create API handler, configure the router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: library.db, env DATABASE_PATH)
           Use ":memory:" for in-memory database
  -policy  Path to a policy JSON overlay (optional, env POLICY_FILE)
  -dev     Human-readable console logging instead of JSON

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/library.db"

  # Run with custom policy overlay
  ./server -policy="./config/policy.json"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/policy.go: Policy JSON parsing
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/readwell/library-engine/api"
	"github.com/readwell/library-engine/engine"
	"github.com/readwell/library-engine/factory"
	"github.com/readwell/library-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override environment values.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "library.db"), "SQLite database path")
	policyPath := flag.String("policy", envStr("POLICY_FILE", ""), "policy JSON overlay path")
	dev := flag.Bool("dev", false, "console logging")
	flag.Parse()

	logger, err := buildLogger(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer store.Close()

	// Load policy table
	policy, err := loadPolicy(*policyPath)
	if err != nil {
		logger.Fatal("Failed to load policy", zap.String("path", *policyPath), zap.Error(err))
	}

	// Initialize handler and router
	handler := api.NewHandler(store, policy, time.Now, logger)
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
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("db", *dbPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadPolicy returns the default policy table, with the JSON overlay applied
// when a path is given.
func loadPolicy(path string) (engine.PolicyTable, error) {
	if path == "" {
		return engine.DefaultPolicyTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.PolicyTable{}, err
	}
	return factory.NewPolicyFactory().ParsePolicy(string(data))
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
