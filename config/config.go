package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the client needs to reach its backend.
type Config struct {
	Username           string `mapstructure:"username"`
	APIBaseURL         string `mapstructure:"api_base_url"`
	WSURL              string `mapstructure:"ws_url"`
	LogPath            string `mapstructure:"log_path"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`
	Development        bool   `mapstructure:"development"`

	// Derived
	HTTPTimeout time.Duration
}

// Load reads configuration from an optional file plus CHATKA_-prefixed
// environment variables. An empty path skips the file and uses defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	// Defaults double as key registrations so env overrides bind.
	v.SetDefault("username", "")
	v.SetDefault("development", false)
	v.SetDefault("api_base_url", "http://localhost:8080")
	v.SetDefault("ws_url", "ws://localhost:8081/ws")
	v.SetDefault("log_path", "chatka.log")
	v.SetDefault("http_timeout_seconds", 15)

	v.SetEnvPrefix("CHATKA")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 15
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	return &cfg, nil
}
