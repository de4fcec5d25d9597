// Package config loads methodtree configuration with viper
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vsinha/methodtree/pkg/infrastructure/logging"
)

// Source types
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	Source  SourceConfig   `mapstructure:"source"`
	Routing RoutingConfig  `mapstructure:"routing"`
	Log     logging.Config `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SourceConfig selects where method rows are read from
type SourceConfig struct {
	Type string `mapstructure:"type"` // "csv" or "sqlite"
	Dir  string `mapstructure:"dir"`  // csv directory
	Path string `mapstructure:"path"` // sqlite database file
}

type RoutingConfig struct {
	DefaultQuantity float64 `mapstructure:"default_quantity"`
}

// Address returns the listen address of the HTTP server
func (c ServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads config.yaml from ./configs or the working directory, or from
// configFile when it is set. METHODTREE_* environment variables override
// file values, e.g. METHODTREE_SERVER_PORT.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("METHODTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("source.type", SourceCSV)
	v.SetDefault("source.dir", "./data")
	v.SetDefault("source.path", "./data/methods.db")

	v.SetDefault("routing.default_quantity", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("log.development", false)
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Source.Type {
	case SourceCSV, SourceSQLite:
	default:
		return fmt.Errorf("invalid source.type: %s (expected: csv or sqlite)", c.Source.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Routing.DefaultQuantity < 0 {
		return fmt.Errorf("routing.default_quantity cannot be negative, got %v", c.Routing.DefaultQuantity)
	}
	return nil
}
