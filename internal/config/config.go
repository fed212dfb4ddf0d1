package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or individual keys are absent.
const (
	DefaultModelServiceURL = "http://127.0.0.1:8000"
	DefaultPredictTimeout  = 5 * time.Second
	DefaultTokenTTL        = 24 * time.Hour
)

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	ModelService struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int64  `yaml:"timeout_seconds"`
	} `yaml:"model_service"`
	Auth struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTLHours int64  `yaml:"token_ttl_hours"`
	} `yaml:"auth"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file, applies
// environment overrides and fills in defaults. A missing file is not an
// error: the service runs against the local model service defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err == nil {
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	applyEnvOverrides(config)
	applyDefaults(config)

	return config, nil
}

// PredictTimeout returns the deadline for the delegated model call.
func (c *Config) PredictTimeout() time.Duration {
	if c.ModelService.TimeoutSeconds <= 0 {
		return DefaultPredictTimeout
	}
	return time.Duration(c.ModelService.TimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime of issued farmer tokens.
func (c *Config) TokenTTL() time.Duration {
	if c.Auth.TokenTTLHours <= 0 {
		return DefaultTokenTTL
	}
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		config.ModelService.URL = v
	}
	if v := os.Getenv("MODEL_SERVICE_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.ModelService.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
}

func applyDefaults(config *Config) {
	if config.ModelService.URL == "" {
		config.ModelService.URL = DefaultModelServiceURL
	}
	if config.Server.Port == "" {
		config.Server.Port = ":8080"
	}
	if config.Auth.JWTSecret == "" {
		config.Auth.JWTSecret = "change_me"
	}
}
