// Package config provides configuration management for the export CLI.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Config is the full CLI configuration.
type Config struct {
	Database DatabaseConfig
	Export   ExportConfig
	Log      LogConfig
}

// DatabaseConfig holds connection settings.
type DatabaseConfig struct {
	URL            string
	ConnectTimeout time.Duration
}

// ExportConfig holds export file and worker settings.
type ExportConfig struct {
	OutputDir   string
	FilePattern string // strftime pattern for generated file names
	Workers     int
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			ConnectTimeout: 10 * time.Second,
		},
		Export: ExportConfig{
			OutputDir:   "./out",
			FilePattern: "export_%Y%m%d_%H%M%S.txt",
			Workers:     4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// URLHasPassword reports whether a database URL carries a password.
// Unparseable URLs report false; db.Open rejects them later.
func URLHasPassword(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}

// RedactURL replaces the password of a database URL for logging.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func validateConfig(cfg *Config) error {
	if cfg.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("database.connect_timeout must be positive, got %v", cfg.Database.ConnectTimeout)
	}
	if cfg.Export.Workers <= 0 {
		return fmt.Errorf("export.workers must be positive, got %d", cfg.Export.Workers)
	}
	if cfg.Export.FilePattern == "" {
		return fmt.Errorf("export.file_pattern must not be empty")
	}
	if _, err := strftime.New(cfg.Export.FilePattern); err != nil {
		return fmt.Errorf("export.file_pattern %q: %w", cfg.Export.FilePattern, err)
	}
	return nil
}
