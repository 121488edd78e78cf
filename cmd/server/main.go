package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/rpattn/propertyapi/internal/config"
	"github.com/rpattn/propertyapi/internal/db"
	"github.com/rpattn/propertyapi/internal/export"
	"github.com/rpattn/propertyapi/internal/ingestion"
	"github.com/rpattn/propertyapi/internal/logger"
	"github.com/rpattn/propertyapi/internal/middleware"
	"github.com/rpattn/propertyapi/internal/properties"
	"github.com/rpattn/propertyapi/internal/repository"
)

const appName = "property-api"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG_PATH"))
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(appName, cfg.Log.Level, cfg.Log.Format)

	repo, closeStore, err := openRepository(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeStore()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newHandler(cfg, repo),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Log.WithField("addr", cfg.Server.Addr).Info("Starting property API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		return
	}

	logger.Log.Info("Server exited")
}

// newHandler assembles the routes and middleware chain of the API.
func newHandler(cfg config.Config, repo repository.PropertyRepository) http.Handler {
	propertyService := properties.NewService(repo)
	exportService := export.NewService(propertyService, export.WithPageSize(cfg.Export.PageSize))
	ingestionService := ingestion.NewService(propertyService)

	router := mux.NewRouter()
	// Fixed sub-paths go first so they are not captured by /api/properties/{id}.
	export.NewHTTPHandler(exportService).Register(router)
	ingestion.NewHTTPHandler(ingestionService, cfg.Ingestion.MaxUploadBytes).Register(router)
	properties.NewHTTPHandler(propertyService).Register(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})

	return corsHandler.Handler(middleware.LoggingMiddleware(middleware.RecoverMiddleware(router)))
}

// openRepository builds the repository selected by storage.driver and returns
// a function releasing its resources.
func openRepository(ctx context.Context, cfg config.Config) (repository.PropertyRepository, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Log.Warn("Using in-memory storage; data is lost on restart")
		return repository.NewMemoryPropertyRepository(), func() {}, nil
	}

	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Migrate {
		if err := db.RunMigrations(cfg.Database); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}
	return repository.NewPropertyRepository(conn), conn.Close, nil
}
