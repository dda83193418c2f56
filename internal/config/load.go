package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name, so
// server.port is read from TASKDECK_SERVER_PORT.
const EnvPrefix = "TASKDECK"

// defaults lists every key Load knows about. Registering a default is also
// what makes viper bind the matching environment variable on Unmarshal.
var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.log_output":               "stdout",
	"server.log_file":                 "logs/taskdeck.log",
	"server.timezone":                 "UTC",
	"server.shutdown_timeout_seconds": 10,
	"database.url":                    "",
	"database.max_open_conns":         25,
	"database.max_idle_conns":         5,
	"auth.jwt_secret":                 "",
	"auth.token_lifetime_minutes":     60,
	"events.nats_url":                 "",
	"events.subject_prefix":           "taskdeck",
}

// Load reads configuration from, in increasing precedence: built-in
// defaults, an optional YAML file, a .env file in the working directory, and
// TASKDECK_-prefixed environment variables. An empty configFile means
// config.yaml in the working directory, if present.
//
// The result is validated; a validation failure is returned as an error
// naming the offending fields.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config validation failed: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
