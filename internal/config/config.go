// Package config provides CLI configuration through environment variables.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all CLI configuration.
type Config struct {
	// MasterKey is the 64-hex-character key used to encrypt new credentials.
	MasterKey string
	// OldMasterKeys are retired keys still accepted for decryption, newest first.
	OldMasterKeys []string

	// File is the default credentials document path.
	File string
	// BackupCount is the number of prior document versions to keep.
	BackupCount int
	// CreateDirs creates missing parent directories on write.
	CreateDirs bool
	// AutoRestore puts a recovered temp or backup file back on the primary path.
	AutoRestore bool

	// Iterations is the PBKDF2 iteration count for new envelopes.
	Iterations int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string
	// LogFormat is the log handler format, "text" or "json".
	LogFormat string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		MasterKey:     env.GetString("CONFIG_SECRETS_MASTER_KEY", ""),
		OldMasterKeys: splitList(env.GetString("CONFIG_SECRETS_OLD_MASTER_KEYS", "")),

		File:        env.GetString("CONFIG_SECRETS_FILE", "credentials.json"),
		BackupCount: env.GetInt("BACKUP_COUNT", 3),
		CreateDirs:  env.GetBool("CREATE_DIRS", true),
		AutoRestore: env.GetBool("AUTO_RESTORE", true),

		Iterations: env.GetInt("PBKDF2_ITERATIONS", 100000),

		LogLevel:  env.GetString("LOG_LEVEL", "info"),
		LogFormat: env.GetString("LOG_FORMAT", "text"),
	}
}

// NewLogger creates a structured logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch c.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
