package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Storage validation
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.Path == "" {
			errs = append(errs, "STORAGE_PATH is required for the file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	case DriverS3:
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, "S3_BUCKET is required for the s3 driver")
		}
		if c.Storage.S3.Key == "" {
			errs = append(errs, "S3_KEY must not be empty")
		}
		if (c.Storage.S3.AccessKeyID == "") != (c.Storage.S3.SecretAccessKey == "") {
			errs = append(errs, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER (%q) must be one of: file, sqlite, postgres, s3, memory", c.Storage.Driver))
	}

	// Backup validation
	if c.Backup.Enabled {
		if c.Backup.Interval <= 0 {
			errs = append(errs, "BACKUP_INTERVAL must be positive")
		}
		if c.Backup.Retain <= 0 {
			errs = append(errs, "BACKUP_RETAIN must be positive")
		}
		if c.Storage.Driver != DriverS3 && c.Backup.Dir == "" {
			errs = append(errs, "BACKUP_DIR is required when backups are enabled")
		}
	}

	// Auth validation
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		errs = append(errs, "ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	if c.Auth.JWTExpiry <= 0 {
		errs = append(errs, "JWT_EXPIRY must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.Requests <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS must be positive when rate limiting is enabled")
	}
	if c.Rate.Enabled && c.Rate.Window <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}

	// Export validation
	if c.Export.MaxConcurrent <= 0 {
		errs = append(errs, "EXPORT_MAX_CONCURRENT must be positive")
	}
	if c.Export.MaxWait <= 0 {
		errs = append(errs, "EXPORT_MAX_WAIT must be positive")
	}
	if c.Export.Timezone != "" {
		if _, err := time.LoadLocation(c.Export.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("EXPORT_TIMEZONE (%q) is not a known timezone", c.Export.Timezone))
		}
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Sprintf("METRICS_PATH (%q) must start with /", c.Metrics.Path))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Secrets (database URL, JWT secret, admin password, S3 keys) are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Storage: {Driver: %q, Path: %q, S3Bucket: %q}, ",
		c.Storage.Driver, c.Storage.Path, c.Storage.S3.Bucket)
	fmt.Fprintf(&b, "Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		mask(c.Database.URL), c.Database.MaxConns, c.Database.MinConns)
	fmt.Fprintf(&b, "Auth: {Username: %q, Password: %s, JWTSecret: %s}, ",
		c.Auth.Username, mask(c.Auth.Password+c.Auth.PasswordHash), mask(c.Auth.JWTSecret))
	fmt.Fprintf(&b, "Backup: {Enabled: %v, Interval: %s, Retain: %d}, ",
		c.Backup.Enabled, c.Backup.Interval, c.Backup.Retain)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, Requests: %d, Window: %s}, ",
		c.Rate.Enabled, c.Rate.Requests, c.Rate.Window)
	fmt.Fprintf(&b, "Export: {MaxConcurrent: %d, Timezone: %q}, ",
		c.Export.MaxConcurrent, c.Export.Timezone)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
