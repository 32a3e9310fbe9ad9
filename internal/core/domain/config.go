package domain

import "time"

// Query sources.
const (
	QuerySourceLive   = "source"
	QuerySourceBackup = "backup"
)

// Log formats.
const (
	LogFormatAuto   = ""
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

const (
	// DefaultCachePath is the standard location of the cache file on macOS.
	DefaultCachePath = "~/Library/Application Support/Granola/cache-v3.json"
	// DefaultBackupDir is the default backup root.
	DefaultBackupDir = "~/.granola-backup"
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
	// EnvPrefix prefixes every environment variable read by the configuration loader.
	EnvPrefix = "GRANOLA_"
)

// Config is the resolved runtime configuration.
type Config struct {
	CachePath    string         `koanf:"cache_path"`
	BackupDir    string         `koanf:"backup_dir"`
	MaxSnapshots int            `koanf:"max_snapshots"`
	LogLevel     string         `koanf:"log_level"`
	LogFormat    string         `koanf:"log_format"`
	Timezone     string         `koanf:"timezone"`
	QuerySource  string         `koanf:"query_source"`
	Location     *time.Location `koanf:"-"`
}

// QueryPath returns the file the query tools read from.
func (c *Config) QueryPath() string {
	if c.QuerySource == QuerySourceBackup {
		return BackupFilePath(c.BackupDir)
	}
	return c.CachePath
}
