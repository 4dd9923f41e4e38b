// Package config loads querycost settings from a config file, QUERYCOST_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const EnvPrefix = "QUERYCOST"

type Config struct {
	Schema      []string      `mapstructure:"schema"`
	Root        string        `mapstructure:"root"`
	Operations  string        `mapstructure:"operations"`
	Fragments   string        `mapstructure:"fragments"`
	Output      string        `mapstructure:"output"`
	Format      string        `mapstructure:"format"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Synth       struct {
		Placeholder string         `mapstructure:"placeholder"`
		MaxDepth    int            `mapstructure:"max_depth"`
		Classify    string         `mapstructure:"classify"`
		Overrides   map[string]any `mapstructure:"overrides"`
	} `mapstructure:"synth"`
	Cost struct {
		DefaultFieldCost int `mapstructure:"default_field_cost"`
	} `mapstructure:"cost"`
	Log struct {
		Level string `mapstructure:"level"`
		Env   string `mapstructure:"env"`
	} `mapstructure:"log"`
	Otel struct {
		Endpoint string `mapstructure:"endpoint"`
		Service  string `mapstructure:"service"`
	} `mapstructure:"otel"`
}

// New returns a viper instance with querycost defaults and environment
// binding. Flags are bound by the caller.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", []string{"schema.graphql"})
	v.SetDefault("root", ".")
	v.SetDefault("operations", "operations.graphql")
	v.SetDefault("fragments", "fragments.graphql")
	v.SetDefault("output", "complexity-report.json")
	v.SetDefault("format", "json")
	v.SetDefault("concurrency", runtime.NumCPU())
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("synth.placeholder", "test")
	v.SetDefault("synth.max_depth", 32)
	v.SetDefault("synth.classify", "kind")
	v.SetDefault("cost.default_field_cost", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "production")
	v.SetDefault("otel.service", "querycost")
}

// Load reads file (if set, otherwise ./querycost.{yaml,toml} when present)
// into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("querycost")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	switch c.Format {
	case "json", "yaml", "yml":
	default:
		result = multierror.Append(result, fmt.Errorf("format: %q is not json or yaml", c.Format))
	}
	if c.Concurrency < 1 {
		result = multierror.Append(result, fmt.Errorf("concurrency: must be at least 1, got %d", c.Concurrency))
	}
	if c.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeout: must be positive, got %s", c.Timeout))
	}
	if c.Synth.MaxDepth < 1 {
		result = multierror.Append(result, fmt.Errorf("synth.max_depth: must be at least 1, got %d", c.Synth.MaxDepth))
	}
	switch c.Synth.Classify {
	case "kind", "suffix":
	default:
		result = multierror.Append(result, fmt.Errorf("synth.classify: %q is not kind or suffix", c.Synth.Classify))
	}
	if c.Cost.DefaultFieldCost < 0 {
		result = multierror.Append(result, fmt.Errorf("cost.default_field_cost: must not be negative, got %d", c.Cost.DefaultFieldCost))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log.level: %q is not debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Env {
	case "development", "production":
	default:
		result = multierror.Append(result, fmt.Errorf("log.env: %q is not development or production", c.Log.Env))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
