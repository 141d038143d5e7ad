package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*AdminAPIConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultAdminAPIConfig
	v.SetDefault("admin_api.host", "0.0.0.0")
	v.SetDefault("admin_api.port", 8080)
	v.SetDefault("admin_api.request_timeout", "30s")
	v.SetDefault("admin_api.max_upload_size", 4*1024*1024)

	// Bind environment variables with RK_ prefix
	v.SetEnvPrefix("RK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &AdminAPIConfig{
		Host:           v.GetString("admin_api.host"),
		Port:           v.GetInt("admin_api.port"),
		RequestTimeout: v.GetDuration("admin_api.request_timeout"),
		MaxUploadSize:  v.GetInt64("admin_api.max_upload_size"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range and positive timeout/upload limits.
func validateConfig(cfg *AdminAPIConfig) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxUploadSize <= 0 {
		return fmt.Errorf("max_upload_size must be positive, got %d", cfg.MaxUploadSize)
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("admin_api.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use RK_HMAC_SECRET environment variable)")
	}
	return nil
}
