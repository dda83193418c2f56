package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains HTTP server and logging settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// LogOutput selects where logs go: stdout, a rotated file, or both.
	LogOutput string `mapstructure:"log_output" validate:"required,oneof=stdout file both"`
	LogFile   string `mapstructure:"log_file" validate:"required_unless=LogOutput stdout"`
	// Timezone is the IANA zone used for calendar-day boundaries (today view,
	// weekly statistics).
	Timezone               string `mapstructure:"timezone" validate:"required,timezone"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// EventsConfig configures publication of task events. Leaving NATSURL empty
// keeps events in-process (logged only).
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url" validate:"omitempty,url"`
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`
}
