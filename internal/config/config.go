// Package config loads application settings with viper.
//
// CONFIGURATION PRECEDENCE (lowest to highest):
// 1. Built-in defaults, so the app runs out of the box with `go run ./cmd/server`
// 2. An optional config.yaml in the working directory or ./configs
// 3. Environment variables (PORT, DB_PATH, JWT_SECRET, ...)
//
// Environment variables win so deployments can override a checked-in
// config.yaml without editing files. The Config struct is passed around
// explicitly rather than exposed as a package-level global, which keeps
// components testable with hand-built configs.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root of all application settings.
// Field groups mirror the sections of config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Web      WebConfig      `mapstructure:"web"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds admin session settings. JWTSecret must be a long
// random string (e.g. `openssl rand -hex 32`); when empty, the admin
// routes still mount but every login attempt is rejected.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// WebConfig holds the locations of templates and static assets.
type WebConfig struct {
	TemplateDir string `mapstructure:"template_dir"`
	StaticDir   string `mapstructure:"static_dir"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SlogLevel maps the configured level name to a slog.Level.
// Unknown names fall back to Info rather than failing startup.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from defaults, an optional config.yaml, and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	// A private viper instance: the package-level one carries state
	// between calls, which leaks between tests.
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "data/codekeeper.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("web.template_dir", "web/templates")
	v.SetDefault("web.static_dir", "web/static")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine (defaults + env take over);
		// a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// The env var names predate the yaml layout, so they are bound
	// individually instead of derived with SetEnvPrefix.
	bindings := map[string]string{
		"server.port":      "PORT",
		"database.path":    "DB_PATH",
		"auth.jwt_secret":  "JWT_SECRET",
		"web.template_dir": "TEMPLATE_DIR",
		"web.static_dir":   "STATIC_DIR",
		"log.level":        "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
