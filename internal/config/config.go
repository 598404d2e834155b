package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"POSTGRES_HOST"` specify the environment variable name.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug enables per-statement migration logs
	Bootstrap  BootstrapConfig
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
}

// BootstrapConfig controls the startup sequence.
type BootstrapConfig struct {
	Timeout        time.Duration `envconfig:"BOOTSTRAP_TIMEOUT" default:"2m"`
	CreateDatabase bool          `envconfig:"BOOTSTRAP_CREATE_DATABASE" default:"true"`
	Seed           bool          `envconfig:"BOOTSTRAP_SEED" default:"true"`
	// Serve keeps the process running with health endpoints once bootstrap is done.
	Serve bool `envconfig:"BOOTSTRAP_SERVE" default:"false"`
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host          string `envconfig:"POSTGRES_HOST" required:"true"`
	Port          string `envconfig:"POSTGRES_PORT" default:"5432"`
	User          string `envconfig:"POSTGRES_USER" required:"true"`
	Password      string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName        string `envconfig:"POSTGRES_DBNAME" required:"true"`
	SSLMode       string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaintenanceDB string `envconfig:"POSTGRES_MAINTENANCE_DB" default:"postgres"`
	MaxOpenConns  int    `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"10"`
}

// DSN constructs the connection string for the target database.
func (pc *PostgresConfig) DSN() string {
	return pc.dsnFor(pc.DBName)
}

// MaintenanceDSN points at the database used to create the target one.
func (pc *PostgresConfig) MaintenanceDSN() string {
	return pc.dsnFor(pc.MaintenanceDB)
}

func (pc *PostgresConfig) dsnFor(dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pc.User, pc.Password),
		Host:     pc.Host + ":" + pc.Port,
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": {pc.SSLMode}}.Encode(),
	}
	return u.String()
}

// Debug reports whether verbose logging was requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Postgres.DBName == cfg.Postgres.MaintenanceDB {
		return nil, fmt.Errorf("POSTGRES_DBNAME must differ from POSTGRES_MAINTENANCE_DB (%q)", cfg.Postgres.DBName)
	}
	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}
