// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	Backend    model.Backend

	// memory backend
	SeedFile string

	// file backend
	UsersFile string

	// document backend
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// sqlite backend
	DBPath string

	CSRF      bool
	Banner    string
	LogLevel  slog.Level
	LogFormat string
}

// Mongo connection defaults match the original docker-compose deployment.
const (
	DefaultMongoURI        = "mongodb://mongodb:27017/"
	DefaultMongoDatabase   = "instagram"
	DefaultMongoCollection = "users"
)

// Load reads configuration from environment variables and returns a validated Config.
// All variables are optional: LOGINPANEL_LISTEN_ADDR (127.0.0.1:5000),
// LOGINPANEL_BACKEND (memory), LOGINPANEL_SEED_FILE, LOGINPANEL_USERS_FILE (users.json),
// LOGINPANEL_MONGO_URI, LOGINPANEL_MONGO_DATABASE, LOGINPANEL_MONGO_COLLECTION,
// LOGINPANEL_DB_PATH (loginpanel.db), LOGINPANEL_CSRF (false), LOGINPANEL_BANNER,
// LOGINPANEL_LOG_LEVEL (info), LOGINPANEL_LOG_FORMAT (text).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      envOr("LOGINPANEL_LISTEN_ADDR", "127.0.0.1:5000"),
		SeedFile:        os.Getenv("LOGINPANEL_SEED_FILE"),
		UsersFile:       envOr("LOGINPANEL_USERS_FILE", "users.json"),
		MongoURI:        envOr("LOGINPANEL_MONGO_URI", DefaultMongoURI),
		MongoDatabase:   envOr("LOGINPANEL_MONGO_DATABASE", DefaultMongoDatabase),
		MongoCollection: envOr("LOGINPANEL_MONGO_COLLECTION", DefaultMongoCollection),
		DBPath:          envOr("LOGINPANEL_DB_PATH", "loginpanel.db"),
		Banner:          os.Getenv("LOGINPANEL_BANNER"),
		LogLevel:        slog.LevelInfo,
		LogFormat:       "text",
	}

	backend, err := model.ParseBackend(envOr("LOGINPANEL_BACKEND", string(model.BackendMemory)))
	if err != nil {
		return nil, fmt.Errorf("LOGINPANEL_BACKEND: %w", err)
	}
	cfg.Backend = backend

	if v, ok := os.LookupEnv("LOGINPANEL_CSRF"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LOGINPANEL_CSRF has invalid boolean %q: %w", v, err)
		}
		cfg.CSRF = parsed
	}

	if v, ok := os.LookupEnv("LOGINPANEL_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LOGINPANEL_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	if v, ok := os.LookupEnv("LOGINPANEL_LOG_FORMAT"); ok && v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("LOGINPANEL_LOG_FORMAT must be text or json, got %q", v)
		}
		cfg.LogFormat = v
	}

	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
