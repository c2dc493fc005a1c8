package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir       string
	DBPath        string
	ReportDir     string
	ActivePath    string
	LogLevel      string
	LogFormat     string
	DatabaseURL   string
	RedisURL      string
	HTTPAddr      string
	TickInterval  time.Duration
	SyncInterval  time.Duration
	Defibrillator string
}

// Load resolves configuration from dataDir/.env (when present) and the
// environment. SIAV_DATA_DIR overrides an empty dataDir.
func Load(dataDir string) (Config, error) {
	if dataDir == "" {
		dataDir = getEnvOrDefault("SIAV_DATA_DIR", ".")
	}
	if err := godotenv.Load(filepath.Join(dataDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return New(dataDir)
}

// New builds a Config for dataDir from the current environment only.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	tickMS := getEnvAsIntOrDefault("SIAV_TICK_INTERVAL_MS", 1000)
	if tickMS <= 0 {
		return Config{}, fmt.Errorf("SIAV_TICK_INTERVAL_MS must be positive, got %d", tickMS)
	}
	syncS := getEnvAsIntOrDefault("SIAV_SYNC_INTERVAL_S", 60)
	if syncS <= 0 {
		return Config{}, fmt.Errorf("SIAV_SYNC_INTERVAL_S must be positive, got %d", syncS)
	}
	device := strings.ToLower(getEnvOrDefault("SIAV_DEFIBRILLATOR", "biphasic"))
	if device != "biphasic" && device != "monophasic" {
		return Config{}, fmt.Errorf("SIAV_DEFIBRILLATOR must be biphasic or monophasic, got %q", device)
	}
	return Config{
		DataDir:       dataDir,
		DBPath:        filepath.Join(dataDir, ".siav", "siav.db"),
		ReportDir:     filepath.Join(dataDir, "reports"),
		ActivePath:    filepath.Join(dataDir, ".siav", "active-session.json"),
		LogLevel:      getEnvOrDefault("SIAV_LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("SIAV_LOG_FORMAT", "text"),
		DatabaseURL:   getEnvOrDefault("SIAV_DATABASE_URL", ""),
		RedisURL:      getEnvOrDefault("SIAV_REDIS_URL", ""),
		HTTPAddr:      getEnvOrDefault("SIAV_HTTP_ADDR", ":8088"),
		TickInterval:  time.Duration(tickMS) * time.Millisecond,
		SyncInterval:  time.Duration(syncS) * time.Second,
		Defibrillator: device,
	}, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
