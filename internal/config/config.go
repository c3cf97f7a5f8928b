// Package config loads CLI-level settings from an optional YAML file plus
// environment variable overrides. It is the only place static
// configuration loading happens; the engine itself takes a plain options
// struct and never reads a file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds every setting the CLI needs to build and query an engine.
type Config struct {
	Classpath         ClasspathConfig `mapstructure:"classpath"`
	Filter            FilterConfig    `mapstructure:"filter"`
	EntryPointClasses []string        `mapstructure:"entry_point_classes"`
	TimeoutSeconds    int             `mapstructure:"timeout_seconds"`
	Log               LogConfig       `mapstructure:"log"`
}

// ClasspathConfig names the class artifacts to analyze.
type ClasspathConfig struct {
	// Entries is a list of directories or archives (.jar/.war/.ear/.rar),
	// joined with the platform path separator the same way the JVM
	// classpath string works.
	Entries []string `mapstructure:"entries"`
}

// FilterConfig carries the regular expression lists that parameterize
// internal/filter.Filter beyond its built-in defaults.
type FilterConfig struct {
	IgnoredClassNames []string `mapstructure:"ignored_class_names"`
	IgnoredSources    []string `mapstructure:"ignored_sources"`
	Focus             []string `mapstructure:"focus"`
}

// LogConfig controls the CLI's logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load reads configuration from configPath, falling back to defaults and
// standard search locations if configPath is empty, then applies
// environment variable overrides (prefixed DEPENGINE_, nested keys
// separated by "_", e.g. DEPENGINE_TIMEOUT_SECONDS).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("depengine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/depengine")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file: defaults and env vars only
		} else if os.IsNotExist(err) {
			// explicit path doesn't exist: defaults and env vars only
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("depengine")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadFromReader loads configuration from in-memory YAML content, useful
// for tests that should not touch the filesystem.
func LoadFromReader(content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout_seconds", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects configurations the engine could not act on.
func (c *Config) Validate() error {
	if len(c.Classpath.Entries) == 0 {
		return fmt.Errorf("classpath.entries must name at least one directory or archive")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}
