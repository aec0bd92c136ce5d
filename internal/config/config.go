package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"       validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database"     validate:"required"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Broadcast    BroadcastConfig    `mapstructure:"broadcast"    validate:"required"`
	Presentation PresentationConfig `mapstructure:"presentation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int      `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string   `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`
}

// Supported task store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig selects and configures the task store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL    string `mapstructure:"url"    validate:"omitempty,url"`
	// AutoMigrate applies pending migrations on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig configures credential verification.
type AuthConfig struct {
	// Required gates task routes and the event stream behind a bearer credential.
	Required     bool   `mapstructure:"required"`
	JWTSecret    string `mapstructure:"jwt_secret"     validate:"omitempty,min=32"`
	PublicKeyPEM string `mapstructure:"public_key_pem"`
}

// BroadcastConfig configures real-time event fan-out.
type BroadcastConfig struct {
	QueueSize    int    `mapstructure:"queue_size"    validate:"required,gt=0"`
	ClientBuffer int    `mapstructure:"client_buffer" validate:"required,gt=0"`
	RedisURL     string `mapstructure:"redis_url"     validate:"omitempty,url"`
	RedisChannel string `mapstructure:"redis_channel" validate:"required"`
}

// PresentationConfig controls how timestamps are rendered for display.
type PresentationConfig struct {
	Locale   string `mapstructure:"locale"   validate:"required,oneof=pt-BR en"`
	Timezone string `mapstructure:"timezone" validate:"required"`
}
