// Package config provides configuration management for Fuzzle.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xvierd/fuzzle/internal/domain"
)

const (
	appDirName     = ".fuzzle"
	defaultDataDir = "~/" + appDirName
	envPrefix      = "FUZZLE"
)

// Config holds all configuration for the Fuzzle application.
type Config struct {
	UserID        string             `mapstructure:"user_id"`
	Timer         TimerConfig        `mapstructure:"timer"`
	Logs          LogsConfig         `mapstructure:"logs"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// TimerConfig holds countdown settings.
type TimerConfig struct {
	DefaultMinutes int           `mapstructure:"default_minutes"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
}

// LogsConfig holds study log settings.
type LogsConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	DataDir     string `mapstructure:"data_dir"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// LogConfig holds application log settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File defaults to fuzzle.log inside the data directory.
	File string `mapstructure:"file"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorPrimary  string `mapstructure:"color_primary"`
	ColorAccent   string `mapstructure:"color_accent"`
	ColorMuted    string `mapstructure:"color_muted"`
	ColorError    string `mapstructure:"color_error"`
	ColorTitle    string `mapstructure:"color_title"`
	ColorHelp     string `mapstructure:"color_help"`
	GradientStart string `mapstructure:"gradient_start"`
	GradientEnd   string `mapstructure:"gradient_end"`
	IconApp       string `mapstructure:"icon_app"`
	IconPoints    string `mapstructure:"icon_points"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorPrimary:  "#7C6FE0",
		ColorAccent:   "#4ECDC4",
		ColorMuted:    "#6B7280",
		ColorError:    "#E06C75",
		ColorTitle:    "#A78BFA",
		ColorHelp:     "#95A5A6",
		GradientStart: "#7C6FE0",
		GradientEnd:   "#4ECDC4",
		IconApp:       "📚",
		IconPoints:    "⭐",
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timer: TimerConfig{
			DefaultMinutes: domain.DefaultDurationMinutes,
			TickInterval:   time.Second,
		},
		Logs: LogsConfig{
			PageSize: 5,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			DataDir: defaultDataDir,
		},
		Log: LogConfig{
			Level: "info",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from configPath, creating it with
// defaults if it does not exist. FUZZLE_* environment variables override
// file values.
func LoadFrom(configPath string) (*Config, error) {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.Storage.DataDir, "fuzzle.log")
	}

	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg as TOML to configPath.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")

	v.Set("user_id", cfg.UserID)
	v.Set("timer.default_minutes", cfg.Timer.DefaultMinutes)
	v.Set("timer.tick_interval", cfg.Timer.TickInterval.String())
	v.Set("logs.page_size", cfg.Logs.PageSize)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("mcp.enabled", cfg.MCP.Enabled)
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("storage.postgres_dsn", cfg.Storage.PostgresDSN)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("theme.color_primary", cfg.Theme.ColorPrimary)
	v.Set("theme.color_accent", cfg.Theme.ColorAccent)
	v.Set("theme.color_muted", cfg.Theme.ColorMuted)
	v.Set("theme.color_error", cfg.Theme.ColorError)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.gradient_start", cfg.Theme.GradientStart)
	v.Set("theme.gradient_end", cfg.Theme.GradientEnd)
	v.Set("theme.icon_app", cfg.Theme.IconApp)
	v.Set("theme.icon_points", cfg.Theme.IconPoints)

	return v.WriteConfigAs(configPath)
}

// SetNotificationsEnabled updates notifications.enabled in the default
// config file.
func SetNotificationsEnabled(enabled bool) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SetNotificationsEnabledAt(configPath, enabled)
}

// SetNotificationsEnabledAt rewrites only notifications.enabled in the file
// at configPath. The file is read without defaults or FUZZLE_* overrides so
// nothing that exists only in the environment is written out.
func SetNotificationsEnabledAt(configPath string, enabled bool) error {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	v.Set("notifications.enabled", enabled)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown storage.backend %q (want sqlite or postgres)", c.Storage.Backend)
	}

	if err := domain.ValidateDuration(c.Timer.DefaultMinutes); err != nil {
		return fmt.Errorf("timer.default_minutes: %w", err)
	}
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval must be positive")
	}
	if c.Logs.PageSize <= 0 {
		return fmt.Errorf("logs.page_size must be positive")
	}
	return nil
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDirName, "config.toml"), nil
}

// GetDBPath returns the path to the SQLite database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "fuzzle.db")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func expandHome(path string) (string, error) {
	if path != "" && path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "" || path == "~" {
		return filepath.Join(homeDir, appDirName), nil
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~/")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("user_id", "")
	v.SetDefault("timer.default_minutes", d.Timer.DefaultMinutes)
	v.SetDefault("timer.tick_interval", d.Timer.TickInterval.String())
	v.SetDefault("logs.page_size", d.Logs.PageSize)
	v.SetDefault("notifications.enabled", d.Notifications.Enabled)
	v.SetDefault("notifications.sound", d.Notifications.Sound)
	v.SetDefault("mcp.enabled", d.MCP.Enabled)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", "")

	// Theme defaults
	v.SetDefault("theme.color_primary", d.Theme.ColorPrimary)
	v.SetDefault("theme.color_accent", d.Theme.ColorAccent)
	v.SetDefault("theme.color_muted", d.Theme.ColorMuted)
	v.SetDefault("theme.color_error", d.Theme.ColorError)
	v.SetDefault("theme.color_title", d.Theme.ColorTitle)
	v.SetDefault("theme.color_help", d.Theme.ColorHelp)
	v.SetDefault("theme.gradient_start", d.Theme.GradientStart)
	v.SetDefault("theme.gradient_end", d.Theme.GradientEnd)
	v.SetDefault("theme.icon_app", d.Theme.IconApp)
	v.SetDefault("theme.icon_points", d.Theme.IconPoints)
}
