package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pable/crickmetrics/internal/logger"
)

// EnvPrefix is the prefix for environment overrides, e.g. CRICKMETRICS_DB.
const EnvPrefix = "CRICKMETRICS"

// Default values.
const (
	DefaultWorkers       = 4
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
)

// Config is the full tool configuration.
type Config struct {
	DB         string        `mapstructure:"db"`
	DataDir    string        `mapstructure:"data_dir"`
	Workers    int           `mapstructure:"workers"`
	VenuesFile string        `mapstructure:"venues_file"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggerOptions converts the logging section for the logger package.
func (c LoggingConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
}

// HomeDir is the tool's directory under the user's home.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".crickmetrics")
}

// LoadDotEnv loads a .env file from the working directory if present.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadConfig resolves configuration from defaults, the config file,
// CRICKMETRICS_* environment variables and finally any flags in fs that were
// set explicitly. configPath may be empty to search the default locations.
func LoadConfig(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(HomeDir())
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"db":         "db",
	"data-dir":   "data_dir",
	"workers":    "workers",
	"venues":     "venues_file",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"log-file":   "logging.file",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", filepath.Join(HomeDir(), "matches.db"))
	v.SetDefault("data_dir", "")
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("venues_file", "")
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", DefaultLogMaxSizeMB)
	v.SetDefault("logging.max_backups", DefaultLogMaxBackups)
}

func validate(cfg *Config) error {
	if cfg.DB == "" {
		return errors.New("db path is empty")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	return nil
}
