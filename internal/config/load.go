package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment.
const EnvPrefix = "STUDYPLAN"

// Load configuration from defaults, an optional config file, a .env file and
// environment variables. Environment variables take precedence over values from
// config files. Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

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

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults must be bound explicitly for Unmarshal to see them.
	for _, key := range []string{"database.url", "auth.jwt_secret", "llm.gemini_api_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Planner.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: planner.timezone %q: %w", cfg.Planner.Timezone, err)
	}
	return nil
}

// Location returns the planner's time zone. Validate has already checked it.
func (c PlannerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.narrative_timeout_seconds", 8)
	v.SetDefault("llm.narrative_max_tokens", 160)
	v.SetDefault("llm.narrative_temperature", 0.7)
	v.SetDefault("llm.parse_timeout_seconds", 30)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 1)

	v.SetDefault("planner.timezone", "UTC")
	v.SetDefault("planner.default_description_days", 14)
	v.SetDefault("planner.max_tasks_per_day", 3)
}
