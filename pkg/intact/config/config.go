package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LogConfig configures application logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Destination string `mapstructure:"destination"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Limit   int  `mapstructure:"limit"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Settle time.Duration `mapstructure:"settle"`
}

// Config represents the application configuration.
type Config struct {
	Algorithm string   `mapstructure:"algorithm"`
	Workers   int      `mapstructure:"workers"`
	Recursive bool     `mapstructure:"recursive"`
	MaxDepth  int      `mapstructure:"max_depth"`
	Hidden    bool     `mapstructure:"hidden"`
	ReadOnly  bool     `mapstructure:"read_only"`
	Backend   string   `mapstructure:"backend"`
	Output    string   `mapstructure:"output"`
	Include   []string `mapstructure:"include"`
	Exclude   []string `mapstructure:"exclude"`
	Xattr     bool     `mapstructure:"xattr"`

	Log     LogConfig     `mapstructure:"log"`
	History HistoryConfig `mapstructure:"history"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/intact/config.yaml
//   - $HOME/.config/intact/config.yaml
//
// Environment variables are prefixed with INTACT_
// (e.g., INTACT_ALGORITHM, INTACT_LOG_LEVEL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "intact"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "intact"))

	v.SetEnvPrefix("INTACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults registers every configuration default on v. The CLI
// shares these with Load so flags, environment, file, and defaults
// resolve against the same keys.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("workers", 0)
	v.SetDefault("recursive", false)
	v.SetDefault("max_depth", DefaultMaxDepth)
	v.SetDefault("hidden", false)
	v.SetDefault("read_only", false)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("xattr", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.destination", DefaultLogDestination)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.limit", DefaultHistoryLimit)
	v.SetDefault("watch.settle", DefaultWatchSettle)
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "intact"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "intact"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return nil
}

// StateDir returns $XDG_STATE_HOME/intact/ for the history store and
// log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "intact")
}

// HistoryPath returns the default history database directory.
func HistoryPath() string {
	return filepath.Join(StateDir(), "history")
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}

// WriteDefault writes a commented default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	path, err := Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# intact configuration

# Digest algorithm: md5, sha1, sha224, sha256, sha384, sha512, blake2b
algorithm: %s

# Worker count for hashing and reconciliation (0 = all available CPUs)
workers: 0

# Descend into subdirectories
recursive: false

# Recursion depth limit (-1 = unbounded; setting a limit implies recursive)
max_depth: %d

# Audit hidden files and directories
hidden: false

# Verify only, never rewrite manifests
read_only: false

# Digest backend: auto, native, command
backend: %s

# Report format: pretty, plain, json, yaml, tsv
output: %s

# rsync-style patterns naming what to audit (mutually exclusive with exclude)
include: []

# rsync-style patterns naming what to skip
exclude: []

# Mirror fresh checksums into user.checksum.* extended attributes
xattr: false

# Logging
log:
  # Log level: debug, info, warn, error
  level: %s
  # Destination: stderr, syslog, or a file path
  destination: %s

# Run history
history:
  enabled: true
  # Past runs retained; older ones are pruned after each audit
  limit: %d

# Watch mode
watch:
  # Quiet period after the last change before the next audit
  settle: %s
`, DefaultAlgorithm, DefaultMaxDepth, DefaultBackend, DefaultOutput,
		DefaultLogLevel, DefaultLogDestination, DefaultHistoryLimit, DefaultWatchSettle)

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	return nil
}
