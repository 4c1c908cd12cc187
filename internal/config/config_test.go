package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timer.DefaultMinutes != 60 {
		t.Errorf("expected default minutes 60, got %d", cfg.Timer.DefaultMinutes)
	}
	if cfg.Timer.TickInterval != time.Second {
		t.Errorf("expected tick interval 1s, got %v", cfg.Timer.TickInterval)
	}
	if cfg.Logs.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", cfg.Logs.PageSize)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_CreatesFileWithDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".fuzzle", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if cfg.Storage.DataDir != filepath.Join(home, ".fuzzle") {
		t.Errorf("DataDir = %q, want expanded home", cfg.Storage.DataDir)
	}
	if cfg.Log.File != filepath.Join(home, ".fuzzle", "fuzzle.log") {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
	if cfg.Timer.TickInterval != time.Second {
		t.Errorf("TickInterval = %v, want 1s", cfg.Timer.TickInterval)
	}
	if GetDBPath(cfg) != filepath.Join(home, ".fuzzle", "fuzzle.db") {
		t.Errorf("GetDBPath() = %q", GetDBPath(cfg))
	}
}

func TestLoadFrom_ReadsFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := strings.Join([]string{
		`user_id = "kid-1"`,
		`[timer]`,
		`default_minutes = 25`,
		`tick_interval = "500ms"`,
		`[logs]`,
		`page_size = 10`,
		`[storage]`,
		`data_dir = "` + filepath.ToSlash(dir) + `"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.UserID != "kid-1" {
		t.Errorf("UserID = %q, want kid-1", cfg.UserID)
	}
	if cfg.Timer.DefaultMinutes != 25 {
		t.Errorf("DefaultMinutes = %d, want 25", cfg.Timer.DefaultMinutes)
	}
	if cfg.Timer.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.Timer.TickInterval)
	}
	if cfg.Logs.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Logs.PageSize)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Backend = %q, default should fill in", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir != filepath.ToSlash(dir) {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("FUZZLE_USER_ID", "env-user")
	t.Setenv("FUZZLE_STORAGE_BACKEND", "postgres")
	t.Setenv("FUZZLE_STORAGE_POSTGRES_DSN", "postgres://localhost/fuzzle")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.UserID != "env-user" {
		t.Errorf("UserID = %q, want env-user", cfg.UserID)
	}
	if cfg.Storage.Backend != "postgres" {
		t.Errorf("Backend = %q, want postgres", cfg.Storage.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestSaveTo_RoundTripsUserSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.UserID = "kid-2"
	cfg.Notifications.Enabled = false
	cfg.Storage.DataDir = t.TempDir()

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.UserID != "kid-2" {
		t.Errorf("UserID = %q, want kid-2", loaded.UserID)
	}
	if loaded.Notifications.Enabled {
		t.Error("Notifications.Enabled should stay false")
	}
}

func TestSetNotificationsEnabledAt_KeepsEnvOutOfFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, ".fuzzle", "config.toml")

	if err := SaveTo(path, DefaultConfig()); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	before := readRawFile(t, path)

	t.Setenv("FUZZLE_USER_ID", "env-only-user")
	t.Setenv("FUZZLE_STORAGE_POSTGRES_DSN", "postgres://u:secret@h/db")

	if err := SetNotificationsEnabledAt(path, false); err != nil {
		t.Fatalf("SetNotificationsEnabledAt() error = %v", err)
	}
	after := readRawFile(t, path)

	if after.GetBool("notifications.enabled") {
		t.Error("notifications.enabled should be false")
	}
	if len(after.AllKeys()) != len(before.AllKeys()) {
		t.Errorf("keys changed: before %v, after %v", before.AllKeys(), after.AllKeys())
	}
	for _, key := range before.AllKeys() {
		if key == "notifications.enabled" {
			continue
		}
		if before.GetString(key) != after.GetString(key) {
			t.Errorf("%s = %q, want unchanged %q", key, after.GetString(key), before.GetString(key))
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, leaked := range []string{"env-only-user", "secret", home} {
		if strings.Contains(string(raw), leaked) {
			t.Errorf("config file contains %q:\n%s", leaked, raw)
		}
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Notifications.Enabled {
		t.Error("loaded config should have notifications disabled")
	}
}

func TestSetNotificationsEnabledAt_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	if err := SetNotificationsEnabledAt(path, true); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

// readRawFile reads path as TOML with no defaults or environment overrides.
func readRawFile(t *testing.T, path string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"default minutes off step", func(c *Config) { c.Timer.DefaultMinutes = 62 }},
		{"default minutes too long", func(c *Config) { c.Timer.DefaultMinutes = 180 }},
		{"zero tick", func(c *Config) { c.Timer.TickInterval = 0 }},
		{"zero page size", func(c *Config) { c.Logs.PageSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
