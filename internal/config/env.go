package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvRenderMode = "PLANTBUILD_RENDER_MODE"
	EnvServer     = "PLANTBUILD_SERVER"
	EnvLogLevel   = "PLANTBUILD_LOG_LEVEL"
)

var errNoEnvFile = errors.New("no .env file found")

// loadEnvFile loads environment variables from the first readable of .env and
// .env.local. Existing process environment variables are not overwritten.
func loadEnvFile() (string, error) {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to parse env file", "file", envPath, "error", err)
			continue
		}
		return envPath, nil
	}
	return "", errNoEnvFile
}

// applyEnvOverrides lets the process environment win over file values.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRenderMode)); v != "" {
		slog.Debug("Overriding render mode from environment", "env", EnvRenderMode, "value", v)
		cfg.Render.Mode = RenderMode(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvServer)); v != "" {
		cfg.Render.Server = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}
