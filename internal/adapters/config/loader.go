// Package config loads the runtime configuration from defaults, a YAML file,
// environment variables and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.trai.ch/notekeep/internal/core/domain"
	"go.trai.ch/notekeep/internal/core/ports"
	"go.trai.ch/zerr"
)

// Configuration keys.
const (
	KeyCachePath    = "cache_path"
	KeyBackupDir    = "backup_dir"
	KeyMaxSnapshots = "max_snapshots"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyTimezone     = "timezone"
	KeyQuerySource  = "query_source"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Loader implements ports.ConfigLoader with koanf.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// DefaultPath returns the configuration file read when no path is given:
// notekeep/config.yaml below $XDG_CONFIG_HOME, or below ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "notekeep", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "notekeep", "config.yaml")
}

func defaults() map[string]any {
	return map[string]any{
		KeyCachePath:    domain.DefaultCachePath,
		KeyBackupDir:    domain.DefaultBackupDir,
		KeyMaxSnapshots: domain.DefaultMaxSnapshots,
		KeyLogLevel:     domain.DefaultLogLevel,
		KeyLogFormat:    domain.LogFormatAuto,
		KeyTimezone:     "",
		KeyQuerySource:  domain.QuerySourceLive,
	}
}

// Load resolves the configuration. Later sources override earlier ones:
//  1. built-in defaults
//  2. the YAML file at path, or the default file when path is empty and it exists
//  3. GRANOLA_ environment variables, e.g. GRANOLA_BACKUP_DIR
//  4. overrides, keyed by configuration key
func (l *Loader) Load(path string, overrides map[string]any) (*domain.Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, loadFailed(err, "defaults")
	}

	if path == "" {
		if def := DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}
	if path != "" {
		l.logger.Debug("loading configuration from " + path)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(err, path)
		}
	}

	if err := k.Load(env.Provider(domain.EnvPrefix, ".", envKey), nil); err != nil {
		return nil, loadFailed(err, "environment")
	}

	if len(overrides) > 0 {
		if err := k.Load(mapProvider(overrides), nil); err != nil {
			return nil, loadFailed(err, "flags")
		}
	}

	var cfg domain.Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, loadFailed(err, "unmarshal")
	}

	if err := resolve(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps GRANOLA_BACKUP_DIR to backup_dir.
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, domain.EnvPrefix))
}

func loadFailed(err error, source string) error {
	return errors.Join(domain.ErrConfigLoadFailed, zerr.With(zerr.Wrap(err, "load failed"), "source", source))
}

func invalid(key string, value any, reason string) error {
	return errors.Join(domain.ErrConfigInvalid, zerr.With(zerr.New(fmt.Sprintf("%s %s", key, reason)), key, value))
}

// resolve validates cfg and fills in derived values.
func resolve(cfg *domain.Config) error {
	var err error
	if cfg.CachePath, err = ExpandHome(cfg.CachePath); err != nil {
		return err
	}
	if cfg.BackupDir, err = ExpandHome(cfg.BackupDir); err != nil {
		return err
	}

	if cfg.MaxSnapshots < 1 {
		return invalid(KeyMaxSnapshots, cfg.MaxSnapshots, "must be at least 1")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return invalid(KeyLogLevel, cfg.LogLevel, "must be one of debug, info, warn or error")
	}

	switch cfg.LogFormat {
	case domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON:
	default:
		return invalid(KeyLogFormat, cfg.LogFormat, "must be pretty or json")
	}

	switch cfg.QuerySource {
	case domain.QuerySourceLive, domain.QuerySourceBackup:
	default:
		return invalid(KeyQuerySource, cfg.QuerySource, "must be source or backup")
	}

	cfg.Location = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return errors.Join(domain.ErrConfigInvalid, zerr.With(zerr.Wrap(err, "unknown timezone"), KeyTimezone, cfg.Timezone))
		}
		cfg.Location = loc
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Join(domain.ErrConfigInvalid, zerr.With(zerr.Wrap(err, "cannot expand ~"), "path", path))
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
