package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"snooze/internal/api"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved client configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" validate:"required,http_url"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"min=100ms,max=5m"`
	RateLimit float64       `mapstructure:"rate_limit" validate:"gte=0"`
	UserAgent string        `mapstructure:"user_agent"`
}

type SessionConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", api.DefaultBaseURL)
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.rate_limit", 5.0)
	v.SetDefault("api.user_agent", "snooze-cli/1.0")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// Load reads snooze.yaml from $HOME/.snooze or the working directory (or
// file when not empty), then SNOOZE_* environment variables and .env.
func Load(file string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("snooze")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.snooze")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("snooze")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Client turns the API section into client settings.
func (c *Config) Client() api.Config {
	return api.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		RateLimit: c.API.RateLimit,
		UserAgent: c.API.UserAgent,
	}
}

// defaultSessionPath prefers the user config dir, then $HOME, then the working directory.
func defaultSessionPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "snooze", "session.json")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".snooze", "session.json")
	}

	return "session.json"
}
