package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name           string        `envconfig:"APP_NAME" default:"token-auth-service"`
	Env            string        `envconfig:"APP_ENV" default:"development"`
	Host           string        `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port           string        `envconfig:"APP_PORT" default:"8080"`
	Version        string        `envconfig:"APP_VERSION" default:"dev"`
	RequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"30s"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN             string        `envconfig:"POSTGRES_DSN"`
	MaxConns        int32         `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"POSTGRES_MIN_CONNS" default:"2"`
	RunMigrations   bool          `envconfig:"POSTGRES_RUN_MIGRATIONS" default:"true"`
	MigrationsDir   string        `envconfig:"POSTGRES_MIGRATIONS_DIR" default:"migrations"`
	ConnMaxIdleTime time.Duration `envconfig:"POSTGRES_CONN_MAX_IDLE" default:"30s"`
	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFE" default:"5m"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	Password  string `envconfig:"REDIS_PASSWORD"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_TOKEN_PREFIX" default:"token"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// AuthConfig defines token issuance parameters.
type AuthConfig struct {
	AccessTokenTTL      time.Duration `envconfig:"AUTH_ACCESS_TOKEN_TTL" default:"1h"`
	TokenRetention      time.Duration `envconfig:"AUTH_TOKEN_RETENTION" default:"24h"`
	TokenInsertAttempts int           `envconfig:"AUTH_TOKEN_INSERT_ATTEMPTS" default:"3"`
	TokenRateLimit      int           `envconfig:"AUTH_TOKEN_RATE_LIMIT" default:"20"`
	TokenRateWindow     time.Duration `envconfig:"AUTH_TOKEN_RATE_WINDOW" default:"1m"`
}

// Load reads configuration from a .env file when present and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	for name, section := range map[string]any{
		"app":      &cfg.App,
		"postgres": &cfg.Postgres,
		"redis":    &cfg.Redis,
		"logger":   &cfg.Logger,
		"auth":     &cfg.Auth,
	} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("load %s config: %w", name, err)
		}
	}

	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a AuthConfig) validate() error {
	if a.AccessTokenTTL <= 0 {
		return fmt.Errorf("invalid AUTH_ACCESS_TOKEN_TTL: %s", a.AccessTokenTTL)
	}
	if a.TokenInsertAttempts < 1 {
		return fmt.Errorf("invalid AUTH_TOKEN_INSERT_ATTEMPTS: %d", a.TokenInsertAttempts)
	}
	if a.TokenRetention < 0 {
		return fmt.Errorf("invalid AUTH_TOKEN_RETENTION: %s", a.TokenRetention)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}
