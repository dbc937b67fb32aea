package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned Config.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	def := DefaultConfig()
	v.SetDefault("database.url", def.Database.URL)
	v.SetDefault("database.connect_timeout", def.Database.ConnectTimeout.String())
	v.SetDefault("export.output_dir", def.Export.OutputDir)
	v.SetDefault("export.file_pattern", def.Export.FilePattern)
	v.SetDefault("export.workers", def.Export.Workers)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check runs before env binding so only file values are seen.
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	// Bind environment variables with HA_ prefix
	v.SetEnvPrefix("HA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Database: DatabaseConfig{
			URL:            v.GetString("database.url"),
			ConnectTimeout: v.GetDuration("database.connect_timeout"),
		},
		Export: ExportConfig{
			OutputDir:   v.GetString("export.output_dir"),
			FilePattern: v.GetString("export.file_pattern"),
			Workers:     v.GetInt("export.workers"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNoSecretsInConfig enforces environment-only database credentials.
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("database.password") {
		return fmt.Errorf("database passwords not allowed in config files (use HA_DATABASE_URL environment variable)")
	}
	if URLHasPassword(v.GetString("database.url")) {
		return fmt.Errorf("database URL with password not allowed in config files (use HA_DATABASE_URL environment variable)")
	}
	return nil
}
