// Package config resolves settings from flags, ENRON_SUMMARY_* variables,
// an optional config file and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. ENRON_SUMMARY_DB.
const EnvPrefix = "ENRON_SUMMARY"

// Config holds all settings.
type Config struct {
	Input      string    `mapstructure:"input"`
	Delimiter  string    `mapstructure:"delimiter"`
	Timezone   string    `mapstructure:"timezone"`
	ResultsDir string    `mapstructure:"results_dir"`
	DB         string    `mapstructure:"db"`
	TopSenders int       `mapstructure:"top_senders"`
	Exclude    []string  `mapstructure:"exclude"`
	Addr       string    `mapstructure:"addr"`
	Log        LogConfig `mapstructure:"log"`

	location *time.Location
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

// Location returns the time zone used for month bucketing.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input", "./enron-event-history-all.csv")
	v.SetDefault("delimiter", "|")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("results_dir", "./results")
	v.SetDefault("db", defaultDBPath())
	v.SetDefault("top_senders", 10)
	v.SetDefault("exclude", []string{})
	v.SetDefault("addr", "127.0.0.1:8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".enron-summary", "summary.db")
	}
	return filepath.Join(home, ".enron-summary", "summary.db")
}

// Load reads the optional config file and decodes all settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var c Config
	// viper's default decode hooks split comma-separated env values into slices.
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Delimiter == "" {
		return errors.New("delimiter must not be empty")
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	exclude := c.Exclude[:0]
	for _, e := range c.Exclude {
		if e = strings.TrimSpace(e); e != "" {
			exclude = append(exclude, e)
		}
	}
	c.Exclude = exclude
	return nil
}
