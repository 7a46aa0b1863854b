// Package config provides centralized configuration management for the portal.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
	_ "time/tzdata" // export timezone must resolve on hosts without zoneinfo
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Backup   BackupConfig
	Auth     AuthConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Export   ExportConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3000)
	// Supports both SERVER_PORT and PORT for hosting platforms that inject PORT.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"3000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// StaticDir serves the public form and admin page when set
	StaticDir string `env:"STATIC_DIR"`
}

// StorageConfig selects where the registration dataset lives.
type StorageConfig struct {
	// Driver is one of file, sqlite, postgres, s3, memory (default: file)
	Driver string `env:"STORAGE_DRIVER" default:"file"`

	// Path is the workbook file used by the file driver
	Path string `env:"STORAGE_PATH" default:"data/registrations.xlsx"`

	// SQLitePath is the database file used by the sqlite driver
	SQLitePath string `env:"SQLITE_PATH" default:"data/registrations.db"`

	S3 S3Config
}

// S3Config holds S3 (or S3-compatible, e.g. MinIO) settings.
type S3Config struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" default:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	PathStyle bool   `env:"S3_PATH_STYLE" default:"false"`

	// Key is the object key of the dataset workbook
	Key string `env:"S3_KEY" default:"registrations.xlsx"`

	// Static credentials; the default AWS credential chain is used when empty
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres driver.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// BackupConfig holds periodic dataset backup settings.
type BackupConfig struct {
	// Enabled turns on the backup scheduler (default: false)
	Enabled bool `env:"BACKUP_ENABLED" default:"false"`

	// Dir is the local backup directory; with the s3 driver backups go to the bucket instead
	Dir string `env:"BACKUP_DIR" default:"data/backups"`

	// Interval is how often a backup is taken (default: 24h)
	Interval time.Duration `env:"BACKUP_INTERVAL" default:"24h"`

	// Retain is how many backups to keep (default: 14)
	Retain int `env:"BACKUP_RETAIN" default:"14"`
}

// AuthConfig holds admin login settings.
type AuthConfig struct {
	Username string `env:"ADMIN_USERNAME" default:"admin"`

	// Password is compared in constant time; prefer PasswordHash in production
	Password string `env:"ADMIN_PASSWORD"`

	// PasswordHash is a bcrypt hash and takes precedence over Password
	PasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	// JWTSecret signs admin session tokens (required)
	JWTSecret string `env:"JWT_SECRET" required:"true"`

	// JWTExpiry is the session lifetime (default: 24h)
	JWTExpiry time.Duration `env:"JWT_EXPIRY" default:"24h"`
}

// RateLimitConfig holds per-IP rate limiting settings for /api.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// Requests is the number of requests allowed per window per IP (default: 100)
	Requests int `env:"RATE_LIMIT_REQUESTS" default:"100"`

	// Window is the rate limit window (default: 15m)
	Window time.Duration `env:"RATE_LIMIT_WINDOW" default:"15m"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins (default: *)
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ExportConfig holds report rendering settings.
type ExportConfig struct {
	// MaxConcurrent is the maximum number of parallel renders (default: 2)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"2"`

	// MaxWait is how long to wait for a render slot (default: 10s)
	MaxWait time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`

	// Timezone is the IANA zone used for dates in reports (default: Asia/Kolkata)
	Timezone string `env:"EXPORT_TIMEZONE" default:"Asia/Kolkata"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location resolves the export timezone, falling back to UTC.
func (c *ExportConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
