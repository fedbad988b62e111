// Package config loads pgrc configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edgeflare/pgrc/pkg/pgrest"
	"github.com/spf13/viper"
)

// Version is the pgrc release version.
var Version = "0.1.0"

// Config holds application-wide configuration
type Config struct {
	BaseURL       string              `mapstructure:"baseURL"`
	DefaultListOp string              `mapstructure:"defaultListOp"`
	PrimaryKeys   map[string][]string `mapstructure:"primaryKeys"`
	Timeout       time.Duration       `mapstructure:"timeout"`
	MaxRetries    uint64              `mapstructure:"maxRetries"`
	MetricsAddr   string              `mapstructure:"metricsAddr"`
}

func Default() Config {
	return Config{
		DefaultListOp: "eq",
		Timeout:       30 * time.Second,
		MaxRetries:    3,
	}
}

// Registry converts the configured per-resource primary keys into the
// immutable registry the translation core consumes.
func (c *Config) Registry() pgrest.Registry {
	reg := make(pgrest.Registry, len(c.PrimaryKeys))
	for resource, fields := range c.PrimaryKeys {
		reg[resource] = pgrest.PrimaryKey(fields)
	}
	return reg
}

// Load reads config from file or environment
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pgrc")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config"))
		}
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PGRC")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}
