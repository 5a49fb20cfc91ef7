// Package config loads the dbdesk TOML configuration.
// The file lives at <user config dir>/dbdesk/config.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/oukeidos/dbdesk/internal/apperrors"
	"github.com/oukeidos/dbdesk/internal/files"
)

// Config is the effective configuration after defaults are applied.
type Config struct {
	Database Database
	Log      Log
}

// Database describes how the database process is launched.
type Database struct {
	Command string
	// Args may contain the {dir} placeholder for the database directory.
	Args []string
	Env  map[string]string
	// BrowseURL is shown in the status panel while the database runs.
	BrowseURL        string
	DefaultDirectory string
	StartGrace       time.Duration
	StopTimeout      time.Duration
	LogDir           string
	LogMaxSizeMB     int
	LogMaxBackups    int
	// PasswordEnv names the variable that receives the stored password.
	PasswordEnv    string
	RejectSymlinks bool
}

type Log struct {
	Level string
	File  string
}

const (
	defaultCommand     = "neo4j"
	defaultBrowseURL   = "http://localhost:7474/"
	defaultStartGrace  = 2 * time.Second
	defaultStopTimeout = 30 * time.Second
	defaultLogDir      = "~/.local/share/dbdesk/logs"
	defaultPasswordEnv = "DBDESK_AUTH_PASSWORD"
	defaultLogLevel    = "info"
	maxStopTimeout     = 10 * time.Minute
)

type rawConfig struct {
	Database rawDatabase `toml:"database"`
	Log      rawLog      `toml:"log"`
}

type rawDatabase struct {
	Command          string            `toml:"command"`
	Args             []string          `toml:"args"`
	Env              map[string]string `toml:"env,omitempty"`
	BrowseURL        string            `toml:"browse_url"`
	DefaultDirectory string            `toml:"default_directory,omitempty"`
	StartGrace       string            `toml:"start_grace"`
	StopTimeout      string            `toml:"stop_timeout"`
	LogDir           string            `toml:"log_dir"`
	LogMaxSizeMB     int               `toml:"log_max_size_mb,omitempty"`
	LogMaxBackups    int               `toml:"log_max_backups,omitempty"`
	PasswordEnv      string            `toml:"password_env"`
	RejectSymlinks   bool              `toml:"reject_symlinks"`
}

type rawLog struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultPath returns the platform config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return mustExpand("~/.config/dbdesk/config.toml")
	}
	return filepath.Join(dir, "dbdesk", "config.toml")
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Database: Database{
			Command:     defaultCommand,
			Args:        []string{"console"},
			Env:         map[string]string{},
			BrowseURL:   defaultBrowseURL,
			StartGrace:  defaultStartGrace,
			StopTimeout: defaultStopTimeout,
			LogDir:      mustExpand(defaultLogDir),
			PasswordEnv: defaultPasswordEnv,
		},
		Log: Log{Level: defaultLogLevel},
	}
}

// Load reads path, falling back to defaults when the file is missing.
// A malformed file also yields defaults, together with a config error.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	cfg := Default()

	file, err := os.Open(mustExpand(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, apperrors.Config(fmt.Errorf("open config: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return cfg, apperrors.Config(fmt.Errorf("read config: %w", err))
	}
	return Parse(data)
}

// Parse decodes TOML data on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return cfg, apperrors.Config(fmt.Errorf("parse config: %w", err))
	}

	db := &cfg.Database
	if v := strings.TrimSpace(raw.Database.Command); v != "" {
		db.Command = v
	}
	if raw.Database.Args != nil {
		db.Args = raw.Database.Args
	}
	for k, v := range raw.Database.Env {
		db.Env[k] = v
	}
	if v := strings.TrimSpace(raw.Database.BrowseURL); v != "" {
		db.BrowseURL = v
	}
	if v := strings.TrimSpace(raw.Database.DefaultDirectory); v != "" {
		db.DefaultDirectory = mustExpand(v)
	}
	var err error
	if db.StartGrace, err = parseDuration(raw.Database.StartGrace, defaultStartGrace); err != nil {
		return Default(), apperrors.Config(fmt.Errorf("start_grace: %w", err))
	}
	if db.StopTimeout, err = parseDuration(raw.Database.StopTimeout, defaultStopTimeout); err != nil {
		return Default(), apperrors.Config(fmt.Errorf("stop_timeout: %w", err))
	}
	if db.StopTimeout > maxStopTimeout {
		db.StopTimeout = maxStopTimeout
	}
	if v := strings.TrimSpace(raw.Database.LogDir); v != "" {
		db.LogDir = mustExpand(v)
	}
	if raw.Database.LogMaxSizeMB > 0 {
		db.LogMaxSizeMB = raw.Database.LogMaxSizeMB
	}
	if raw.Database.LogMaxBackups > 0 {
		db.LogMaxBackups = raw.Database.LogMaxBackups
	}
	if v := strings.TrimSpace(raw.Database.PasswordEnv); v != "" {
		db.PasswordEnv = v
	}
	db.RejectSymlinks = raw.Database.RejectSymlinks

	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(raw.Log.File); v != "" {
		cfg.Log.File = mustExpand(v)
	}
	return cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}
	resolved := mustExpand(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := Encode(cfg)
	if err != nil {
		return err
	}
	return files.AtomicWrite(resolved, data, 0o600)
}

// Encode renders cfg in the file format read by Parse.
func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toRaw(cfg))
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func toRaw(cfg Config) rawConfig {
	db := cfg.Database
	return rawConfig{
		Database: rawDatabase{
			Command:          db.Command,
			Args:             db.Args,
			Env:              db.Env,
			BrowseURL:        db.BrowseURL,
			DefaultDirectory: db.DefaultDirectory,
			StartGrace:       db.StartGrace.String(),
			StopTimeout:      db.StopTimeout.String(),
			LogDir:           db.LogDir,
			LogMaxSizeMB:     db.LogMaxSizeMB,
			LogMaxBackups:    db.LogMaxBackups,
			PasswordEnv:      db.PasswordEnv,
			RejectSymlinks:   db.RejectSymlinks,
		},
		Log: rawLog{Level: cfg.Log.Level, File: cfg.Log.File},
	}
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

func mustExpand(path string) string {
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
		}
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}
