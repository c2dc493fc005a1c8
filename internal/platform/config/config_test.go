package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"siav/internal/platform/config"
)

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{"SIAV_TICK_INTERVAL_MS", "SIAV_SYNC_INTERVAL_S", "SIAV_DEFIBRILLATOR", "SIAV_HTTP_ADDR", "SIAV_DATABASE_URL"} {
		t.Setenv(key, "")
	}
	cfg, err := config.New("/data")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join("/data", ".siav", "siav.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.ActivePath != filepath.Join("/data", ".siav", "active-session.json") {
		t.Fatalf("unexpected active path %q", cfg.ActivePath)
	}
	if cfg.TickInterval != time.Second || cfg.HTTPAddr != ":8088" || cfg.Defibrillator != "biphasic" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SyncInterval != time.Minute {
		t.Fatalf("sync interval got=%s", cfg.SyncInterval)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("database url must default to empty")
	}
}

func TestNewRejectsBadValues(t *testing.T) {
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
	t.Setenv("SIAV_TICK_INTERVAL_MS", "0")
	if _, err := config.New("/data"); err == nil {
		t.Fatalf("expected error for zero tick interval")
	}
	t.Setenv("SIAV_TICK_INTERVAL_MS", "")
	t.Setenv("SIAV_SYNC_INTERVAL_S", "-5")
	if _, err := config.New("/data"); err == nil {
		t.Fatalf("expected error for negative sync interval")
	}
	t.Setenv("SIAV_SYNC_INTERVAL_S", "")
	t.Setenv("SIAV_DEFIBRILLATOR", "laser")
	if _, err := config.New("/data"); err == nil {
		t.Fatalf("expected error for unknown defibrillator")
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	// Setenv restores the variable afterwards; godotenv skips keys that exist.
	t.Setenv("SIAV_HTTP_ADDR", "")
	os.Unsetenv("SIAV_HTTP_ADDR")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SIAV_HTTP_ADDR=127.0.0.1:9999\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("http addr got=%q", cfg.HTTPAddr)
	}
}
