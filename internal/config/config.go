// Package config loads runtime settings for the notifier: built-in defaults, an optional
// YAML file, a .env file, and F2B_NOTIFIER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "F2B_NOTIFIER"

const (
	DefaultSlackBaseURL = "https://hooks.slack.com/services/"
	DefaultGeoBaseURL   = "https://ipinfo.io"
)

type Config struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Geo     GeoConfig     `mapstructure:"geo"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type SlackConfig struct {
	// BaseURL is joined with the webhook path given on the command line.
	BaseURL   string        `mapstructure:"base_url"`
	Channel   string        `mapstructure:"channel"`
	Username  string        `mapstructure:"username"`
	IconEmoji string        `mapstructure:"icon_emoji"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type GeoConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"` // ipinfo.io access token, optional
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	// PushgatewayURL enables a single push of run metrics when set.
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("slack.base_url", DefaultSlackBaseURL)
	v.SetDefault("slack.channel", "#alerts")
	v.SetDefault("slack.username", "fail2ban")
	v.SetDefault("slack.icon_emoji", "")
	v.SetDefault("slack.timeout", 2*time.Second)

	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.base_url", DefaultGeoBaseURL)
	v.SetDefault("geo.token", "")
	v.SetDefault("geo.timeout", 1*time.Second)

	v.SetDefault("log.level", "info")

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "f2b_notifier")
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Load builds the configuration. configFile may be empty. A missing .env file is fine;
// a configFile that was asked for but cannot be read is an error.
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would make every run fail.
func (c Config) Validate() error {
	if c.Slack.BaseURL == "" {
		return fmt.Errorf("slack.base_url must not be empty")
	}
	if c.Slack.Timeout <= 0 {
		return fmt.Errorf("slack.timeout must be positive, got %s", c.Slack.Timeout)
	}
	if c.Geo.Enabled {
		if c.Geo.BaseURL == "" {
			return fmt.Errorf("geo.base_url must not be empty when geo is enabled")
		}
		if c.Geo.Timeout <= 0 {
			return fmt.Errorf("geo.timeout must be positive, got %s", c.Geo.Timeout)
		}
	}
	return nil
}
