// Package config loads focusboard settings from a JSON file, then lets the
// environment (optionally seeded from a .env file) override them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"github.com/sadopc/focusboard/internal/store"
)

// Environment variables that override the file.
const (
	EnvDB           = "FOCUSBOARD_DB"
	EnvLog          = "FOCUSBOARD_LOG"
	EnvLogLevel     = "FOCUSBOARD_LOG_LEVEL"
	EnvSyncInterval = "FOCUSBOARD_SYNC_INTERVAL"
	EnvFocusMinutes = "FOCUSBOARD_FOCUS_MINUTES"
)

type Config struct {
	DBPath       string `json:"db_path"`
	LogFile      string `json:"log_file"`
	LogLevel     string `json:"log_level"`
	SyncInterval string `json:"sync_interval"`
	// FocusMinutes is the weekly focus target shown on the dashboard.
	FocusMinutes  int `json:"focus_minutes"`
	RetentionDays int `json:"retention_days"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	dir := Dir()
	db, err := store.DefaultDBPath()
	if err != nil {
		db = filepath.Join(dir, "focusboard.db")
	}
	return Config{
		DBPath:        db,
		LogFile:       filepath.Join(dir, "focusboard.log"),
		LogLevel:      "info",
		SyncInterval:  "2s",
		FocusMinutes:  35 * 60,
		RetentionDays: store.DefaultRetentionDays,
	}
}

// Dir is ~/.config/focusboard, or the working directory when the user
// config dir is unknown.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(cfg, "focusboard")
}

// Path is the default config file location.
func Path() string { return filepath.Join(Dir(), "config.json") }

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, c.Validate()
}

// LoadEnv seeds the process environment from .env files. Variables that
// are already set win. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// GetEnv returns the variable's value or fallback when it is unset.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.DBPath = GetEnv(EnvDB, c.DBPath)
	c.LogFile = GetEnv(EnvLog, c.LogFile)
	c.LogLevel = GetEnv(EnvLogLevel, c.LogLevel)
	c.SyncInterval = GetEnv(EnvSyncInterval, c.SyncInterval)
	if v, ok := os.LookupEnv(EnvFocusMinutes); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFocusMinutes, err)
		}
		c.FocusMinutes = n
	}
	return nil
}

// Validate rejects settings the program cannot run with.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path is empty")
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	if c.FocusMinutes < 0 {
		return fmt.Errorf("focus_minutes must not be negative, got %d", c.FocusMinutes)
	}
	return nil
}

// Interval parses SyncInterval. Zero disables cross-process sync.
func (c Config) Interval() (time.Duration, error) {
	if c.SyncInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SyncInterval)
	if err != nil {
		return 0, fmt.Errorf("sync_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("sync_interval must not be negative, got %s", d)
	}
	return d, nil
}

// Save writes c to path, creating its directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
