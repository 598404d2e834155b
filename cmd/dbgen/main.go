package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Paulaf319/sas-db-generator/internal/api"
	"github.com/Paulaf319/sas-db-generator/internal/bootstrap"
	"github.com/Paulaf319/sas-db-generator/internal/config"
	"github.com/Paulaf319/sas-db-generator/internal/migrate"
	"github.com/Paulaf319/sas-db-generator/internal/schema"
	"github.com/Paulaf319/sas-db-generator/internal/seed"
	"github.com/Paulaf319/sas-db-generator/internal/store"
)

const (
	defaultAppName = "SasDbGenerator" // App name for logger
)

func main() {
	dumpSchema := flag.Bool("dump-schema", false, "print the schema description as YAML and exit")
	printSQL := flag.Bool("print-sql", false, "print the migration SQL and exit")
	printModelSQL := flag.Bool("print-model-sql", false, "print the DDL of the current model for an empty database and exit")
	flag.Parse()

	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)

	switch {
	case *dumpSchema:
		if err := writeSchemaYAML(os.Stdout); err != nil {
			logger.Fatalf("FATAL: Failed to dump schema: %v", err)
		}
		return
	case *printSQL:
		if err := writeMigrationSQL(os.Stdout); err != nil {
			logger.Fatalf("FATAL: Failed to render migrations: %v", err)
		}
		return
	case *printModelSQL:
		if err := writeModelSQL(os.Stdout); err != nil {
			logger.Fatalf("FATAL: Failed to render model: %v", err)
		}
		return
	}

	if err := godotenv.Load(); err != nil {
		logger.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger.Println("INFO: Starting bootstrap...")

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	migrations, err := schema.Migrations()
	if err != nil {
		logger.Fatalf("FATAL: Invalid schema definition: %v", err)
	}

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize database connection: %v", err)
	}
	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	dbStore := store.NewPostgresStore(db)

	runner := migrate.NewRunner(db, migrations, logger)
	runner.LogStatements = cfg.Debug()
	var seeder bootstrap.Seeder
	if cfg.Bootstrap.Seed {
		seeder = seed.NewLoader(dbStore, logger)
	}
	boot := bootstrap.New(ensureDatabase(cfg, db), runner, seeder, logger)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Bootstrap.Serve {
		err := runBootstrap(sigCtx, boot, cfg.Bootstrap.Timeout)
		if closeErr := dbStore.Close(); closeErr != nil {
			logger.Printf("WARN: Error closing database: %v", closeErr)
		}
		if err != nil {
			logger.Fatalf("FATAL: %v", err)
		}
		return
	}

	// --- Serve mode: health endpoints come up first and report readiness ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger)
	api.NewHTTPHandler(dbStore, boot.Ready, runner, dbStore, dbStore).RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}
	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	grpcServer, healthServer := setupGRPCServer(logger)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatalf("FATAL: Failed to listen for gRPC on port %s: %v", cfg.GrpcServer.Port, err)
	}
	go func() {
		logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("FATAL: gRPC server Serve error: %v", err)
		}
		logger.Println("INFO: gRPC server has stopped.")
	}()

	if err := runBootstrap(sigCtx, boot, cfg.Bootstrap.Timeout); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	<-sigCtx.Done()
	shutdown(logger, httpServer, grpcServer, healthServer, dbStore)
}

func runBootstrap(ctx context.Context, boot *bootstrap.Bootstrapper, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := boot.Run(ctx)
	return err
}

// ensureDatabase creates the target database through the maintenance database
// when enabled, then checks the target is reachable.
func ensureDatabase(cfg *config.Config, db *sql.DB) bootstrap.EnsureFunc {
	return func(ctx context.Context) (bool, error) {
		created := false
		if cfg.Bootstrap.CreateDatabase {
			admin, err := sql.Open("postgres", cfg.Postgres.MaintenanceDSN())
			if err != nil {
				return false, fmt.Errorf("%w: %v", migrate.ErrUnreachable, err)
			}
			defer admin.Close()
			if created, err = migrate.EnsureDatabase(ctx, admin, cfg.Postgres.DBName); err != nil {
				return false, err
			}
		}
		if err := db.PingContext(ctx); err != nil {
			return created, fmt.Errorf("%w: %v", migrate.ErrUnreachable, err)
		}
		return created, nil
	}
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))
	logger.Println("INFO: Base HTTP middleware registered.")
}

func setupGRPCServer(logger *log.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer()

	// NOT_SERVING until bootstrap completes.
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	logger.Println("INFO: gRPC health check service registered.")

	reflection.Register(s)
	logger.Println("INFO: gRPC reflection service registered.")

	return s, healthServer
}

func shutdown(
	logger *log.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	healthServer *health.Server,
	dbStore *store.PostgresStore,
) {
	logger.Println("INFO: Received shutdown signal. Starting graceful shutdown...")
	healthServer.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		logger.Println("INFO: gRPC server gracefully shut down.")
	case <-shutdownCtx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
		grpcServer.Stop()
	}

	if err := dbStore.Close(); err != nil {
		logger.Printf("WARN: Error closing database connection: %v", err)
	}
	logger.Println("INFO: Graceful shutdown sequence completed.")
}
