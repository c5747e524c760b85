package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "WIRECHAT_RELAY"
	envConfigDefaultPath = "WIRECHAT_RELAY_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// Load resolves configuration and returns it with the file path it used.
// Precedence: defaults < config file < WIRECHAT_RELAY_* env vars. Flag
// overrides are applied by the caller with UpdateFrom.
// A missing file is created from defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	cfg := Default()
	defaults := settings(cfg)

	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := resolveConfigPath(explicitPath)
	v.SetConfigFile(path)

	switch err := v.ReadInConfig(); {
	case err == nil:
		logger.Debug().Str("path", path).Msg("config file loaded")
	case isNotExist(err):
		if writeErr := writeDefaultConfig(path, defaults); writeErr != nil {
			logger.Warn().Err(writeErr).Str("path", path).Msg("failed to write default config")
		} else {
			logger.Info().Str("path", path).Msg("created default config")
		}
	default:
		return cfg, path, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, path, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// settings flattens cfg into viper keys. Durations are kept as strings so
// the generated file reads "5s" rather than nanoseconds.
func settings(cfg Config) map[string]any {
	return map[string]any{
		"addr":                  cfg.Addr,
		"read_header_timeout":   cfg.ReadHeaderTimeout.String(),
		"shutdown_timeout":      cfg.ShutdownTimeout.String(),
		"log_level":             cfg.LogLevel,
		"log_format":            cfg.LogFormat,
		"max_message_bytes":     cfg.MaxMessageBytes,
		"rate_limit_per_minute": cfg.RateLimitPerMinute,
		"session_buffer":        cfg.SessionBuffer,
		"empty_room_ttl":        durationString(cfg.EmptyRoomTTL),
		"allowed_origins":       cfg.AllowedOrigins,
		"jwt_secret":            cfg.JWTSecret,
		"jwt_issuer":            cfg.JWTIssuer,
		"jwt_audience":          cfg.JWTAudience,
	}
}

func durationString(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if base := os.Getenv(envConfigDefaultPath); base != "" {
		return filepath.Join(base, defaultConfigName)
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, defaultConfigName)
	}
	return defaultConfigName
}

func writeDefaultConfig(path string, values map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
