package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Planner  PlannerConfig  `mapstructure:"planner"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains authentication settings. Tokens are issued elsewhere;
// this service only validates them.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
}

// LLMConfig contains the text-generation settings. An empty GeminiAPIKey disables
// the remote generator; status narratives then always use the local templates.
type LLMConfig struct {
	GeminiAPIKey            string  `mapstructure:"gemini_api_key"`
	ModelName               string  `mapstructure:"model_name"                validate:"required"`
	NarrativeTimeoutSeconds int     `mapstructure:"narrative_timeout_seconds" validate:"gte=1,lte=60"`
	NarrativeMaxTokens      int     `mapstructure:"narrative_max_tokens"      validate:"gte=16"`
	NarrativeTemperature    float64 `mapstructure:"narrative_temperature"     validate:"gte=0,lte=2"`
	ParseTimeoutSeconds     int     `mapstructure:"parse_timeout_seconds"     validate:"gte=1,lte=120"`
	MaxRetries              int     `mapstructure:"max_retries"               validate:"gte=0,lte=5"`
	RetryDelaySeconds       int     `mapstructure:"retry_delay_seconds"       validate:"gte=1"`
}

// PlannerConfig tunes schedule generation.
type PlannerConfig struct {
	// Timezone decides which calendar day "today" is.
	Timezone string `mapstructure:"timezone" validate:"required"`
	// DefaultDescriptionDays is the horizon used by description-derived plans
	// when neither the request nor the goal provides one.
	DefaultDescriptionDays int `mapstructure:"default_description_days" validate:"gte=1,lte=365"`
	// MaxTasksPerDay caps count-budget allocation.
	MaxTasksPerDay int `mapstructure:"max_tasks_per_day" validate:"gte=1,lte=12"`
}
