package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" validate:"required"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" validate:"required,oneof=debug info warn warning error"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components" validate:"dive,oneof=debug info warn warning error"`
}

// CatalogConfig configures the scanned-directory catalog.
type CatalogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

// Config represents the application configuration.
type Config struct {
	// Key is the primary key every container file must contain. There is no
	// default; commands that read containers fail without one.
	Key string `mapstructure:"key"`

	// KeyForLength restricts shape collection to a single entry.
	KeyForLength string `mapstructure:"key_for_length"`

	// ReadOnly disables writing dataset_info.yaml files.
	ReadOnly bool `mapstructure:"read_only"`

	// Extensions are the container file extensions, in discovery order.
	Extensions []string `mapstructure:"extensions" validate:"required,min=1,dive,startswith=."`

	Output  string        `mapstructure:"output" validate:"required,oneof=plain json yaml"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return err
	}
	if _, err := humanize.ParseBytes(c.Logging.Rotation.MaxSize); err != nil {
		return fmt.Errorf("logging.rotation.max_size: %w", err)
	}
	return nil
}

// LogMaxSizeBytes returns the parsed log rotation threshold.
func (c *Config) LogMaxSizeBytes() int64 {
	n, err := humanize.ParseBytes(c.Logging.Rotation.MaxSize)
	if err != nil {
		return 0
	}
	return int64(n)
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("key", "")
	v.SetDefault("key_for_length", "")
	v.SetDefault("read_only", false)
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("output", DefaultOutput)

	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.path", DefaultCatalogPath())

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)
	v.SetDefault("logging.components", map[string]string{})

	v.SetDefault("watch.debounce", DefaultWatchDebounce)
}

// NewViper returns a viper instance with config paths, the H5INDEX_
// environment prefix and defaults registered.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(ConfigDir())

	v.SetEnvPrefix("H5INDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	return v
}

// Load loads configuration from file and environment variables.
// Config file location: $XDG_CONFIG_HOME/h5index/config.yaml
// (~/.config/h5index/config.yaml when XDG_CONFIG_HOME is unset).
//
// Environment variables are prefixed with H5INDEX_ (e.g., H5INDEX_KEY).
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper reads the config file registered on v (a missing file is not an
// error), unmarshals and validates the result.
func FromViper(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expanded, err := ExpandPath(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	cfg.Catalog.Path = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ConfigDir returns the configuration directory.
func ConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "h5index")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "h5index")
	}
	return filepath.Join(xdg.ConfigHome, "h5index")
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DataDir returns $XDG_DATA_HOME/h5index/.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "h5index")
}

// DefaultCatalogPath returns the default badger directory for the catalog.
func DefaultCatalogPath() string {
	return filepath.Join(DataDir(), "catalog")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a default config file if none exists and returns its
// path.
func WriteDefault() (string, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# h5index configuration

# Primary key every container file must contain (required by scan,
# validate, shapes and watch; usually given with -k)
key: ""

# Restrict shape collection to one entry (empty collects all entries)
key_for_length: ""

# Never write dataset_info.yaml files
read_only: false

# Container file extensions, scanned in this order
extensions:
  - .h5
  - .hdf5

# Output format: plain, json, yaml
output: %s

# Catalog of scanned directories
catalog:
  enabled: true
  path: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/h5index/h5index.log)
  path: ""
  rotation:
    max_size: %s
    max_backups: %d
  # Per-component log levels (scanner, dataset, catalog, watcher, cli)
  components: {}

# Watch mode
watch:
  debounce: %s
`, DefaultOutput, DefaultCatalogPath(), DefaultLogLevel, DefaultLogMaxSize, DefaultLogMaxBackups, DefaultWatchDebounce)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}
