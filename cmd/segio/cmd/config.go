package cmd

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the tool configuration, merged from defaults, an optional YAML
// file, and flags.
type Config struct {
	Log  LogConfig  `yaml:"log" mapstructure:"log"`
	Copy CopyConfig `yaml:"copy" mapstructure:"copy"`
}

// LogConfig configures the tool's logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

// CopyConfig carries defaults for the copy command.
type CopyConfig struct {
	Workers   int `yaml:"workers" mapstructure:"workers"`
	Retries   int `yaml:"retries" mapstructure:"retries"`
	RateLimit int `yaml:"rate_limit" mapstructure:"rate_limit"` // bytes per second, 0 = unlimited
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Copy: CopyConfig{
			Workers: 4,
			Retries: 3,
		},
	}
}

// LoadConfig loads configuration from file and merges with defaults. A
// missing default config file is fine; a missing explicit one is an error.
func LoadConfig(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		viper.SetConfigName("segio")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if ok := asConfigNotFound(err, &notFound); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

func asConfigNotFound(err error, target *viper.ConfigFileNotFoundError) bool {
	if e, ok := err.(viper.ConfigFileNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Copy.Workers < 1 {
		return fmt.Errorf("copy.workers must be at least 1, got %d", c.Copy.Workers)
	}
	if c.Copy.Retries < 0 {
		return fmt.Errorf("copy.retries must not be negative, got %d", c.Copy.Retries)
	}
	if c.Copy.RateLimit < 0 {
		return fmt.Errorf("copy.rate_limit must not be negative, got %d", c.Copy.RateLimit)
	}
	return nil
}
