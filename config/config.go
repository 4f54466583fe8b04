package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// API
	APIBaseURL  string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout time.Duration `mapstructure:"HTTP_TIMEOUT"`

	// Session
	TokenFile string `mapstructure:"TOKEN_FILE"`

	// UI behavior
	UsernameCheckDelay time.Duration `mapstructure:"USERNAME_CHECK_DELAY"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/codeprep")

	// Environment variables take precedence
	viper.SetEnvPrefix("CODEPREP")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("API_BASE_URL", "https://codeprep.dev")
	viper.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	viper.SetDefault("TOKEN_FILE", defaultTokenFile())
	viper.SetDefault("USERNAME_CHECK_DELAY", 500*time.Millisecond)
	viper.SetDefault("LOG_LEVEL", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK if we're using env vars
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	config.APIBaseURL = strings.TrimRight(config.APIBaseURL, "/")

	return config, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "token"
	}
	return filepath.Join(home, ".config", "codeprep", "token")
}
