package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"payment-service/internal/domain"
)

type Config struct {
	Port string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string
	DeliveryFee       decimal.Decimal

	DBDriver      string
	DatabaseURL   string
	MySQL         MySQLConfig
	DBAutoMigrate bool

	RedisAddr     string
	RabbitMQURL   string
	OrderExchange string

	SupabaseJWTSecret string

	RequestTimeout time.Duration
	IntentTTL      time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       slog.Level
}

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (c MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", c.User, c.Password, c.Host, c.Port, c.Database)
}

// Load reads the process environment. Missing gateway credentials or auth
// secret are a ConfigurationError.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              env("PORT", "5000"),
		RazorpayKeyID:     env("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: env("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   strings.TrimRight(env("RAZORPAY_BASE_URL", "https://api.razorpay.com"), "/"),
		Currency:          strings.ToUpper(env("CURRENCY", "INR")),
		DBDriver:          strings.ToLower(env("DB_DRIVER", "postgres")),
		DatabaseURL:       env("DATABASE_URL", ""),
		MySQL: MySQLConfig{
			User:     env("MYSQL_USER", ""),
			Password: env("MYSQL_PASSWORD", ""),
			Host:     env("MYSQL_HOST", "localhost"),
			Port:     env("MYSQL_PORT", "3306"),
			Database: env("MYSQL_DATABASE", ""),
		},
		RedisAddr:         env("REDIS_ADDR", ""),
		RabbitMQURL:       env("RABBITMQ_URL", ""),
		OrderExchange:     env("ORDER_EXCHANGE", "order.exchange"),
		SupabaseJWTSecret: env("SUPABASE_JWT_SECRET", ""),
	}

	for _, req := range []struct{ key, val string }{
		{"RAZORPAY_KEY_ID", cfg.RazorpayKeyID},
		{"RAZORPAY_KEY_SECRET", cfg.RazorpayKeySecret},
		{"SUPABASE_JWT_SECRET", cfg.SupabaseJWTSecret},
	} {
		if req.val == "" {
			return nil, &domain.ConfigurationError{Key: req.key}
		}
	}

	if len(cfg.Currency) != 3 {
		return nil, &domain.ConfigurationError{Key: "CURRENCY", Reason: "must be a 3-letter code"}
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, &domain.ConfigurationError{Key: "DATABASE_URL"}
		}
	case "mysql":
		if cfg.MySQL.Database == "" {
			return nil, &domain.ConfigurationError{Key: "MYSQL_DATABASE"}
		}
	default:
		return nil, &domain.ConfigurationError{Key: "DB_DRIVER", Reason: "must be postgres or mysql"}
	}

	var err error
	if cfg.DeliveryFee, err = decimal.NewFromString(env("DELIVERY_FEE", "50")); err != nil || cfg.DeliveryFee.IsNegative() {
		return nil, &domain.ConfigurationError{Key: "DELIVERY_FEE", Reason: "must be a non-negative amount"}
	}
	if cfg.DBAutoMigrate, err = strconv.ParseBool(env("DB_AUTO_MIGRATE", "true")); err != nil {
		return nil, &domain.ConfigurationError{Key: "DB_AUTO_MIGRATE", Reason: err.Error()}
	}
	if cfg.RequestTimeout, err = parseDuration(env("REQUEST_TIMEOUT", "10s")); err != nil {
		return nil, &domain.ConfigurationError{Key: "REQUEST_TIMEOUT", Reason: err.Error()}
	}
	if cfg.IntentTTL, err = parseDuration(env("INTENT_TTL", "24h")); err != nil {
		return nil, &domain.ConfigurationError{Key: "INTENT_TTL", Reason: err.Error()}
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(env("RATE_LIMIT_RPS", "5"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		return nil, &domain.ConfigurationError{Key: "RATE_LIMIT_RPS", Reason: "must be a positive number"}
	}
	if cfg.RateLimitBurst, err = strconv.Atoi(env("RATE_LIMIT_BURST", "10")); err != nil || cfg.RateLimitBurst < 1 {
		return nil, &domain.ConfigurationError{Key: "RATE_LIMIT_BURST", Reason: "must be a positive integer"}
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		return nil, &domain.ConfigurationError{Key: "LOG_LEVEL", Reason: err.Error()}
	}

	return cfg, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}
