package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Commerce CommerceConfig `envPrefix:"COMMERCE_"`
	Checkout CheckoutConfig `envPrefix:"CHECKOUT_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Cart     CartConfig     `envPrefix:"CART_"`
	LogLevel string         `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Addr               string        `env:"ADDR" envDefault:":8080"`
	BaseURL            string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SessionSecret      string        `env:"SESSION_SECRET" envDefault:"dev-secret-change"`
	StorefrontPassword string        `env:"STOREFRONT_PASSWORD"`
	AppEnv             string        `env:"APP_ENV" envDefault:"development"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

func (s ServerConfig) Production() bool {
	return strings.EqualFold(s.AppEnv, "production")
}

type CommerceConfig struct {
	BaseURL      string        `env:"BASE_URL,required,notEmpty"`
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	TokenURL     string        `env:"TOKEN_URL"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// CheckoutConfig points the hand-off at a dedicated endpoint. When Endpoint is
// empty the commerce backend creates the session.
type CheckoutConfig struct {
	Endpoint string        `env:"ENDPOINT"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

// CatalogConfig selects where product references come from: "commerce" or
// "postgres".
type CatalogConfig struct {
	Source string `env:"SOURCE" envDefault:"commerce"`
}

type DatabaseConfig struct {
	DSN      string `env:"DSN"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Name     string `env:"NAME" envDefault:"storefront"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// ConnString returns DSN when set, otherwise builds one from the parts.
func (d DatabaseConfig) ConnString() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password +
		" dbname=" + d.Name + " port=" + d.Port + " sslmode=" + d.SSLMode
}

// RedisConfig enables the catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB" envDefault:"0"`
	TTL      time.Duration `env:"TTL" envDefault:"5m"`
}

type CartConfig struct {
	CookieName string        `env:"COOKIE_NAME" envDefault:"cart"`
	MaxAge     time.Duration `env:"MAX_AGE" envDefault:"720h"`
	File       string        `env:"FILE" envDefault:".storefront/cart.json"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Catalog.Source {
	case "commerce", "postgres":
	default:
		return nil, fmt.Errorf("config: CATALOG_SOURCE %q: want commerce or postgres", cfg.Catalog.Source)
	}
	if cfg.Server.Production() && cfg.Server.SessionSecret == "dev-secret-change" {
		return nil, fmt.Errorf("config: SERVER_SESSION_SECRET must be set in production")
	}
	return cfg, nil
}

// Level maps LOG_LEVEL to a zerolog level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
