package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmanzanog/bond-tracker/internal/application"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/auth"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/config"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/metrics"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/bond-tracker/internal/infrastructure/persistence/sqldb"
)

func TestSetupLogger(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	testCases := []struct {
		level string
		want  slog.Level
	}{
		{level: "debug", want: slog.LevelDebug},
		{level: "info", want: slog.LevelInfo},
		{level: "WARN", want: slog.LevelWarn},
		{level: "error", want: slog.LevelError},
		{level: "nonsense", want: slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			logger := setupLogger(tc.level)

			if logger == nil {
				t.Fatal("setupLogger returned nil logger")
			}
			if slog.Default() != logger {
				t.Error("setupLogger did not set the logger as default")
			}
			if !logger.Enabled(context.Background(), tc.want) {
				t.Errorf("expected level %s to be enabled", tc.want)
			}
			if tc.want > slog.LevelDebug && logger.Enabled(context.Background(), tc.want-1) {
				t.Errorf("expected levels below %s to be disabled", tc.want)
			}
		})
	}
}

func TestInitializeDatabase_Memory(t *testing.T) {
	repos, err := initializeDatabase(&config.Config{DBDriver: config.DBDriverMemory})
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}

	if _, ok := repos.Bonds.(*memory.BondRepository); !ok {
		t.Errorf("expected *memory.BondRepository, got %T", repos.Bonds)
	}
	if _, ok := repos.Users.(*memory.UserRepository); !ok {
		t.Errorf("expected *memory.UserRepository, got %T", repos.Users)
	}
	if err := repos.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestInitializeDatabase_Success(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, cleanup := createTestDBConfig(t)
	defer cleanup()

	repos, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}
	defer func() { _ = repos.Close() }()

	if _, ok := repos.Bonds.(*sqldb.BondRepository); !ok {
		t.Errorf("expected *sqldb.BondRepository, got %T", repos.Bonds)
	}

	bonds, err := repos.Bonds.ListByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(bonds) != 0 {
		t.Errorf("expected no bonds, got %d", len(bonds))
	}
}

func TestInitializeDatabase_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "mysql",
		DBDSN:    "some-connection-string",
	}

	repos, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
	if repos != nil {
		t.Errorf("expected nil repositories, got %v", repos)
	}

	expectedErrMsg := "unsupported database driver: mysql"
	if err.Error() != expectedErrMsg {
		t.Errorf("expected error message %q, got %q", expectedErrMsg, err.Error())
	}
}

func TestInitializeDatabase_InvalidDSN(t *testing.T) {
	cfg := &config.Config{
		DBDriver: config.DBDriverPostgres,
		DBDSN:    "invalid-connection-string",
	}

	repos, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
	if repos != nil {
		t.Errorf("expected nil repositories, got %v", repos)
	}
}

func TestCreateRegistryClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/VydaneISINy" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"vydaneisiny":[{"cval":"CZ0003551251"}]}`))
	}))
	defer server.Close()

	client := createRegistryClient(&config.Config{CDCPBaseURL: server.URL, CDCPTimeout: time.Second})

	matching, err := client.IsMatching(context.Background(), "CZ0003551251")
	if err != nil {
		t.Fatalf("IsMatching failed: %v", err)
	}
	if !matching {
		t.Error("expected identifier to match")
	}
}

func newTestServices(t *testing.T) (*application.BondService, *application.UserService, *prometheus.Registry) {
	t.Helper()

	repos, err := initializeDatabase(&config.Config{DBDriver: config.DBDriverMemory})
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}

	reg := prometheus.NewRegistry()
	registry := createRegistryClient(&config.Config{CDCPBaseURL: "http://127.0.0.1:1", CDCPTimeout: time.Second})
	bondService := application.NewBondService(repos.Bonds, registry, metrics.New(reg))
	userService := application.NewUserService(repos.Users, repos.Sessions,
		auth.NewTokenService("test-signing-key-0123456789", tokenIssuer), time.Hour)
	return bondService, userService, reg
}

func TestBuildServer(t *testing.T) {
	gin := os.Getenv("GIN_MODE")
	if err := os.Setenv("GIN_MODE", "release"); err != nil {
		t.Fatalf("failed to set GIN_MODE: %v", err)
	}
	defer func() {
		if err := os.Setenv("GIN_MODE", gin); err != nil {
			t.Logf("failed to restore GIN_MODE: %v", err)
		}
	}()

	bondService, userService, reg := newTestServices(t)

	cfg := &config.Config{
		ServerHost: "localhost",
		ServerPort: "8080",
	}

	server := buildServer(cfg, bondService, userService, reg)

	if server == nil {
		t.Fatal("buildServer returned nil server")
	}
	if server.Addr != "localhost:8080" {
		t.Errorf("expected server address %q, got %q", "localhost:8080", server.Addr)
	}

	for _, path := range []string{"/health", "/metrics"} {
		w := httptest.NewRecorder()
		server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status code 200, got %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bonds/manage/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status code 401 without a token, got %d", w.Code)
	}
}

func TestBuildServer_DifferentPorts(t *testing.T) {
	gin := os.Getenv("GIN_MODE")
	if err := os.Setenv("GIN_MODE", "release"); err != nil {
		t.Fatalf("failed to set GIN_MODE: %v", err)
	}
	defer func() {
		if err := os.Setenv("GIN_MODE", gin); err != nil {
			t.Logf("failed to restore GIN_MODE: %v", err)
		}
	}()

	testCases := []struct {
		name string
		host string
		port string
		want string
	}{
		{name: "default localhost", host: "localhost", port: "8080", want: "localhost:8080"},
		{name: "all interfaces", host: "0.0.0.0", port: "3000", want: "0.0.0.0:3000"},
		{name: "custom port", host: "127.0.0.1", port: "9090", want: "127.0.0.1:9090"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bondService, userService, reg := newTestServices(t)
			cfg := &config.Config{ServerHost: tc.host, ServerPort: tc.port}

			server := buildServer(cfg, bondService, userService, reg)

			if server.Addr != tc.want {
				t.Errorf("expected server address %q, got %q", tc.want, server.Addr)
			}
		})
	}
}

func TestApp_Shutdown(t *testing.T) {
	bondService, userService, reg := newTestServices(t)

	ctx, cancel := context.WithCancel(context.Background())
	janitor := application.NewSessionJanitor(userService, time.Hour)
	done := make(chan struct{})
	go func() {
		janitor.Start(ctx)
		close(done)
	}()

	closed := false
	app := &App{
		Server:         buildServer(&config.Config{ServerHost: "127.0.0.1", ServerPort: "0"}, bondService, userService, reg),
		SessionJanitor: janitor,
		CancelContext:  cancel,
		CloseStorage: func() error {
			closed = true
			return nil
		},
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session janitor did not stop")
	}
	if !closed {
		t.Error("expected storage to be closed")
	}
}

// TestMain silences logging for the whole package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func BenchmarkSetupLogger(b *testing.B) {
	for i := 0; i < b.N; i++ {
		setupLogger("info")
	}
}

func createTestDBConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	cfg := &config.Config{
		DBDriver: config.DBDriverPostgres,
		DBDSN:    connStr,
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return cfg, cleanup
}

func TestFullInitializationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	logger := setupLogger("debug")
	if logger == nil {
		t.Fatal("failed to setup logger")
	}

	cfg, cleanup := createTestDBConfig(t)
	defer cleanup()

	repos, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	defer func() { _ = repos.Close() }()

	reg := prometheus.NewRegistry()
	registry := createRegistryClient(&config.Config{CDCPBaseURL: "http://127.0.0.1:1", CDCPTimeout: time.Second})
	bondService := application.NewBondService(repos.Bonds, registry, metrics.New(reg))
	userService := application.NewUserService(repos.Users, repos.Sessions,
		auth.NewTokenService("test-signing-key-0123456789", tokenIssuer), time.Hour)

	cfg.ServerHost = "localhost"
	cfg.ServerPort = "0"

	server := buildServer(cfg, bondService, userService, reg)
	if server == nil {
		t.Fatal("failed to build server")
	}

	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("health check failed: expected 200, got %d", w.Code)
	}

	if _, err := userService.Register(context.Background(), "alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("register against postgres failed: %v", err)
	}
	if _, err := userService.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("login against postgres failed: %v", err)
	}
}
