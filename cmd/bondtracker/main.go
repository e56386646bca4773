package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/sijms/go-ora/v2"

	"github.com/jmanzanog/bond-tracker/internal/application"
	"github.com/jmanzanog/bond-tracker/internal/domain"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/auth"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/config"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/metrics"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/sqldb"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/registry/cdcp"
	httpHandler "github.com/jmanzanog/bond-tracker/internal/interfaces/http"
)

const tokenIssuer = "bond-tracker"

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     lvl,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

// Repositories groups the stores backing the services. Close releases the
// underlying connection, if any.
type Repositories struct {
	Bonds    domain.BondRepository
	Users    domain.UserRepository
	Sessions domain.SessionRepository
	Close    func() error
}

// initializeDatabase sets up the database connection and runs migrations
func initializeDatabase(cfg *config.Config) (*Repositories, error) {
	var db *sql.DB
	var dialect sqldb.Dialect
	var err error

	switch cfg.DBDriver {
	case config.DBDriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &Repositories{
			Bonds:    memory.NewBondRepository(),
			Users:    memory.NewUserRepository(),
			Sessions: memory.NewSessionRepository(),
			Close:    func() error { return nil },
		}, nil
	case config.DBDriverPostgres:
		db, err = sql.Open("pgx", cfg.DBDSN)
		dialect = &sqldb.PostgresDialect{}
	case config.DBDriverOracle:
		db, err = sql.Open("oracle", cfg.DBDSN)
		dialect = &sqldb.OracleDialect{}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DBDriver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	wrapper := sqldb.New(db, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := wrapper.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repositories{
		Bonds:    sqldb.NewBondRepository(wrapper),
		Users:    sqldb.NewUserRepository(wrapper),
		Sessions: sqldb.NewSessionRepository(wrapper),
		Close:    db.Close,
	}, nil
}

// createRegistryClient builds the CDCP client from configuration
func createRegistryClient(cfg *config.Config) *cdcp.Client {
	client := cdcp.NewClient(cfg.CDCPTimeout)
	if cfg.CDCPBaseURL != "" {
		client.SetBaseURL(cfg.CDCPBaseURL)
	}
	return client
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, bondService *application.BondService, userService *application.UserService, gatherer prometheus.Gatherer) *http.Server {
	router := gin.Default()
	handler := httpHandler.NewHandler(bondService, userService)
	httpHandler.SetupRoutes(router, handler, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// App wraps the application components for easier testing
type App struct {
	Server         *http.Server
	SessionJanitor *application.SessionJanitor
	CancelContext  context.CancelFunc
	CloseStorage   func() error
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	a.SessionJanitor.Stop()
	a.CancelContext()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.CloseStorage != nil {
		if err := a.CloseStorage(); err != nil {
			return fmt.Errorf("storage close error: %w", err)
		}
	}

	return nil
}

// run contains the main application logic without os.Exit calls
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	registry := createRegistryClient(cfg)
	slog.Info("Using CDCP registry", "base_url", cfg.CDCPBaseURL, "timeout", cfg.CDCPTimeout)

	repos, err := initializeDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(reg)

	tokens := auth.NewTokenService(cfg.JWTSigningKey, tokenIssuer)
	bondService := application.NewBondService(repos.Bonds, registry, recorder)
	userService := application.NewUserService(repos.Users, repos.Sessions, tokens, cfg.TokenTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	janitor := application.NewSessionJanitor(userService, cfg.SessionCleanupInterval)
	go janitor.Start(ctx)

	server := buildServer(cfg, bondService, userService, reg)

	app := &App{
		Server:         server,
		SessionJanitor: janitor,
		CancelContext:  cancel,
		CloseStorage:   repos.Close,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort, "db_driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
