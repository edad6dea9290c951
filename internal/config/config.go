package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr        string
	DataFile        string
	DataDir         string
	PostgresDSN     string
	LogLevel        log.Level
	ShutdownTimeout time.Duration
	// UpdateInterval is how often the IEEE registries are re-downloaded. Zero disables refresh.
	UpdateInterval time.Duration
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads a .env file when one exists, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using process environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DataFile:    getenv("OUI_DATA_FILE", ""),
		DataDir:     getenv("OUI_DATA_DIR", ""),
		PostgresDSN: getenv("OUI_POSTGRES_DSN", ""),
	}

	levelStr := getenv("LOG_LEVEL", "info")
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL=%q: %w", levelStr, err)
	}
	cfg.LogLevel = level

	timeoutStr := getenv("SHUTDOWN_TIMEOUT", "5s")
	d, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT=%q: %w", timeoutStr, err)
	}
	if d < time.Second {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT too small (%s), must be >=1s", d)
	}
	if d > time.Minute {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT too large (%s), must be <=1m", d)
	}
	cfg.ShutdownTimeout = d

	intervalStr := getenv("UPDATE_INTERVAL", "0")
	d, err = time.ParseDuration(intervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid UPDATE_INTERVAL=%q: %w", intervalStr, err)
	}
	if d != 0 && d < time.Hour {
		return Config{}, fmt.Errorf("UPDATE_INTERVAL too small (%s), must be 0 or >=1h", d)
	}
	if d > 30*24*time.Hour {
		return Config{}, fmt.Errorf("UPDATE_INTERVAL too large (%s), must be <=720h", d)
	}
	cfg.UpdateInterval = d

	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DataFile != "" && cfg.DataDir != "" {
		return Config{}, fmt.Errorf("OUI_DATA_FILE and OUI_DATA_DIR are mutually exclusive")
	}

	return cfg, nil
}
