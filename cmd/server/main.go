/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the workbench server. Handles configuration,
  store selection, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env, then environment, then flags), validate once
  2. Open the selected store (memory, sqlite or firestore)
  3. Load settings and build the workspace service
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port    HTTP server port                 (PORT, default 8080)
  -store   memory | sqlite | firestore      (STORE, default sqlite)
  -db      SQLite database path             (SQLITE_PATH, default workbench.db)
           Use ":memory:" for an in-memory database
  -locale  Default label language           (LOCALE, default pt-BR)

FIRESTORE:
  FIREBASE_PROJECT_ID is required. FIREBASE_CREDENTIALS_PATH points to a
  service account file; without it application default credentials (or
  FIRESTORE_EMULATOR_HOST) are used.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SHUTDOWN_TIMEOUT seconds)
  3. Close the store
  4. Exit

EXAMPLES:
  ./server -db="./data/workbench.db"
  ./server -store=memory -port=3000
  STORE=firestore FIREBASE_PROJECT_ID=nexwork ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexwork/workbench/api"
	"github.com/nexwork/workbench/config"
	"github.com/nexwork/workbench/generic"
	"github.com/nexwork/workbench/generic/store"
	"github.com/nexwork/workbench/settings"
	"github.com/nexwork/workbench/store/firestore"
	"github.com/nexwork/workbench/store/sqlite"
	"github.com/nexwork/workbench/workspace"
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize store
	repo, closer, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.Store.Kind, err)
	}
	defer closer.Close()

	state, err := settings.Load(ctx, repo)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	svc := workspace.NewService(repo)
	handler := api.NewHandler(svc, state, cfg.App.Locale)
	router := api.NewRouter(handler, api.NewMetrics(), cfg.Server.CORSOrigins)

	// WriteTimeout stays unset: /api/events streams are long-lived.
	server := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s (store: %s)", cfg.Server.Port, cfg.Store.Kind)
		log.Printf("API available at http://localhost:%s/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// openStore returns the configured repository and what to close on exit.
func openStore(ctx context.Context, cfg *config.Config) (generic.Repository, io.Closer, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return store.NewMemory(), io.NopCloser(nil), nil
	case config.StoreSQLite:
		s, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.StoreFirestore:
		s, err := firestore.New(ctx, firestore.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsPath: cfg.Firebase.CredentialsPath,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store.Kind)
	}
}
