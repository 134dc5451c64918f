package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const EnvLocal = "local"

type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Cookie   CookieConfig
	Tracing  TracingConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" env-default:"0.0.0.0:8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-required:"true"`
	Password string `env:"POSTGRES_PASSWORD" env-required:"true"`
	DB       string `env:"POSTGRES_DB" env-required:"true"`
	SSLMode  string `env:"POSTGRES_SSLMODE" env-default:"disable"`
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.DB, c.SSLMode)
}

// RedisConfig enables the tally counter and broadcast when URL is set.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

// TracingConfig prints spans to stdout when enabled. APP_ENV=local enables it too.
type TracingConfig struct {
	Stdout bool `env:"TRACES_STDOUT" env-default:"false"`
}

type CookieConfig struct {
	Secret   string `env:"COOKIE_SECRET" env-required:"true"`
	Domain   string `env:"COOKIE_DOMAIN"`
	Secure   bool   `env:"COOKIE_SECURE" env-default:"true"`
	SameSite string `env:"COOKIE_SAMESITE" env-default:"lax"`
}

func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// JobConfig is the subset read by the offline commands, which never serve
// cookies.
type JobConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadJob() (*JobConfig, error) {
	var cfg JobConfig
	if err := read(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func read(cfg any) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}
