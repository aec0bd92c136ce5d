package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // presentation.timezone must resolve on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. TASKFLOW_SERVER_PORT.
const envPrefix = "TASKFLOW"

// keys without defaults still need an explicit env binding for AutomaticEnv to see them
var envOnlyKeys = []string{
	"database.url",
	"auth.jwt_secret",
	"auth.public_key_pem",
	"broadcast.redis_url",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
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
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("auth.required", false)
	v.SetDefault("broadcast.queue_size", 256)
	v.SetDefault("broadcast.client_buffer", 16)
	v.SetDefault("broadcast.redis_channel", "taskflow:events")
	v.SetDefault("presentation.locale", "pt-BR")
	v.SetDefault("presentation.timezone", "America/Sao_Paulo")
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Database.Driver == DriverPostgres && c.Database.URL == "" {
		return errors.New("config validation failed: database.url is required for the postgres driver")
	}

	if c.Auth.Required && c.Auth.JWTSecret == "" && c.Auth.PublicKeyPEM == "" {
		return errors.New(
			"config validation failed: auth.jwt_secret or auth.public_key_pem is required when auth.required is set",
		)
	}

	if _, err := time.LoadLocation(c.Presentation.Timezone); err != nil {
		return fmt.Errorf("config validation failed: invalid presentation.timezone %q: %w",
			c.Presentation.Timezone, err)
	}

	return nil
}
