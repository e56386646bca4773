package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverOracle   = "oracle"
	DBDriverMemory   = "memory"

	DefaultCDCPBaseURL = "https://www.cdcp.cz/isbpublicjson/api"

	minSigningKeyLen = 16
)

type Config struct {
	ServerHost             string
	ServerPort             string
	DBDriver               string
	DBDSN                  string
	CDCPBaseURL            string
	CDCPTimeout            time.Duration
	JWTSigningKey          string
	TokenTTL               time.Duration
	SessionCleanupInterval time.Duration
	LogLevel               string
}

func Load() (*Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DB_DRIVER", DBDriverPostgres))
	switch driver {
	case DBDriverPostgres, DBDriverOracle, DBDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q: expected postgres, oracle or memory", driver)
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver != DBDriverMemory {
		return nil, fmt.Errorf("DB_DSN environment variable is required for the %s driver", driver)
	}

	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if len(signingKey) < minSigningKeyLen {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required and must be at least %d bytes", minSigningKeyLen)
	}

	baseURL := strings.TrimRight(getEnvOrDefault("CDCP_BASE_URL", DefaultCDCPBaseURL), "/")
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid CDCP_BASE_URL %q", baseURL)
	}

	cdcpTimeout, err := parsePositiveDuration("CDCP_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	tokenTTL, err := parsePositiveDuration("TOKEN_TTL", "24h")
	if err != nil {
		return nil, err
	}
	cleanupInterval, err := parsePositiveDuration("SESSION_CLEANUP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerHost:             getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:             getEnvOrDefault("SERVER_PORT", "8080"),
		DBDriver:               driver,
		DBDSN:                  dsn,
		CDCPBaseURL:            baseURL,
		CDCPTimeout:            cdcpTimeout,
		JWTSigningKey:          signingKey,
		TokenTTL:               tokenTTL,
		SessionCleanupInterval: cleanupInterval,
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

func parsePositiveDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
