package config

import (
	"fmt"
	"strings"
	"time"

	"coaching-payments/internal/apperror"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Validity of a CourseAccess granted by a successful payment.
	AccessValidity time.Duration `env:"ACCESS_VALIDITY" envDefault:"8760h"`

	Database  Database  `envPrefix:"DB_"`
	Liqpay    Liqpay    `envPrefix:"LIQPAY_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Kafka     Kafka     `envPrefix:"KAFKA_"`
	Admin     Admin     `envPrefix:"ADMIN_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Database struct {
	Driver          string        `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql, postgres
	DSN             string        `env:"DSN" envDefault:"file:coaching.db?_foreign_keys=on"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"50"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

type Liqpay struct {
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
	CheckoutURL string `env:"CHECKOUT_URL" envDefault:"https://www.liqpay.ua/api/3/checkout"`
	Sandbox     bool   `env:"SANDBOX" envDefault:"false"`
}

type Redis struct {
	Addr      string        `env:"ADDR"`
	Password  string        `env:"PASSWORD"`
	DB        int           `env:"DB" envDefault:"0"`
	CourseTTL time.Duration `env:"COURSE_TTL" envDefault:"10m"`
}

type Kafka struct {
	Brokers       []string      `env:"BROKERS" envSeparator:","`
	Topic         string        `env:"TOPIC" envDefault:"course-access"`
	RelayInterval time.Duration `env:"RELAY_INTERVAL" envDefault:"2s"`
	RelayBatch    int           `env:"RELAY_BATCH" envDefault:"20"`
}

type Admin struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
}

type RateLimit struct {
	RPS   float64 `env:"RPS" envDefault:"5"`
	Burst int     `env:"BURST" envDefault:"10"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// ValidateGateway reports missing LiqPay credentials so that serve refuses to start.
func (c *Config) ValidateGateway() error {
	var missing []string
	if c.Liqpay.PublicKey == "" {
		missing = append(missing, "LIQPAY_PUBLIC_KEY")
	}
	if c.Liqpay.PrivateKey == "" {
		missing = append(missing, "LIQPAY_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return apperror.Configuration("missing gateway credentials: " + strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) ValidateAdmin() error {
	if c.Admin.JWTSecret == "" {
		return apperror.Configuration("missing ADMIN_JWT_SECRET")
	}
	return nil
}

func (c *Config) Addr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}
