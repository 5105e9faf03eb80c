package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. BLOOMWATCH_PORT
const EnvPrefix = "BLOOMWATCH"

// Config holds process configuration
type Config struct {
	// Server settings
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`

	// Profile settings; empty directories use the built-in profiles only
	ProfileDirectory string `mapstructure:"profile_dir"`
	HasteTable       string `mapstructure:"haste_table"`

	// Storage settings; an empty database disables persistence and an empty
	// ability cache path keeps names in memory
	DatabasePath     string `mapstructure:"database"`
	AbilityCachePath string `mapstructure:"ability_cache"`

	// Batch settings
	Concurrency  int  `mapstructure:"concurrency"`
	SkipExisting bool `mapstructure:"skip_existing"`

	// Logging settings
	LogLevel    string `mapstructure:"log_level"`
	Development bool   `mapstructure:"development"`

	// Operational settings
	GracefulShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	if c.GracefulShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative")
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Port:                    8080,
		Host:                    "0.0.0.0",
		DatabasePath:            "bloomwatch.db",
		Concurrency:             4,
		SkipExisting:            true,
		LogLevel:                "info",
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// Load reads configuration from defaults, an optional YAML file and
// BLOOMWATCH_* environment variables, in increasing precedence
func Load(path string) (Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("port", def.Port)
	v.SetDefault("host", def.Host)
	v.SetDefault("profile_dir", def.ProfileDirectory)
	v.SetDefault("haste_table", def.HasteTable)
	v.SetDefault("database", def.DatabasePath)
	v.SetDefault("ability_cache", def.AbilityCachePath)
	v.SetDefault("concurrency", def.Concurrency)
	v.SetDefault("skip_existing", def.SkipExisting)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("development", def.Development)
	v.SetDefault("shutdown_timeout", def.GracefulShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Logger builds the process logger
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.New("invalid log level")
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
