package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"hustle/internal/domain"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Logger   LoggerConfig
	Storage  StorageConfig
	Pricing  PricingConfig
	Wallet   WalletConfig
	Auth     AuthConfig
	Matching MatchingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Enabled turns on the geo index, accept locks, session cache and
	// idempotency replay.
	Enabled bool
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LoggerConfig holds zap logger configuration.
type LoggerConfig struct {
	Level       string
	Development bool
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Driver string
}

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// PricingConfig holds the tariff used by the fare estimator.
type PricingConfig struct {
	BaseFee                int64
	PerKmRate              int64
	BaseDistanceKm         int64
	MinimumFare            int64
	PlatformFeeBasisPoints int64
	MinimumTotal           int64
	// Coupons maps an upper-cased coupon code to its flat discount.
	Coupons map[string]int64
}

// FareConfig converts the tariff to the estimator's form.
func (p PricingConfig) FareConfig() domain.FareConfig {
	return domain.FareConfig{
		FlatRate:               p.BaseFee,
		PerKmRate:              p.PerKmRate,
		BaseDistanceKm:         p.BaseDistanceKm,
		MinimumFare:            p.MinimumFare,
		PlatformFeeBasisPoints: p.PlatformFeeBasisPoints,
		MinimumTotal:           p.MinimumTotal,
	}
}

// WalletConfig holds wallet defaults.
type WalletConfig struct {
	StartingBalance int64
}

// AuthConfig holds token and session settings.
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	SessionTTL time.Duration
}

// MatchingConfig holds runner lookup settings.
type MatchingConfig struct {
	SearchRadiusKm float64
	AcceptLockTTL  time.Duration
}

// Load loads configuration from the environment and an optional .env file.
// CONFIG_FILE overrides the .env location.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hustle")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_ENABLED", true)

	v.SetDefault("NEW_RELIC_APP_NAME", "hustle-api")
	v.SetDefault("NEW_RELIC_LICENSE_KEY", "")
	v.SetDefault("NEW_RELIC_ENABLED", false)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)

	v.SetDefault("STORAGE_DRIVER", StorageMemory)

	v.SetDefault("PRICING_BASE_FEE", 500)
	v.SetDefault("PRICING_PER_KM_RATE", 150)
	v.SetDefault("PRICING_BASE_DISTANCE_KM", 2)
	v.SetDefault("PRICING_MINIMUM_FARE", 500)
	v.SetDefault("PRICING_PLATFORM_FEE_BPS", 500)
	v.SetDefault("PRICING_MINIMUM_TOTAL", 800)
	v.SetDefault("PRICING_COUPONS", "")

	v.SetDefault("WALLET_STARTING_BALANCE", 5000)

	v.SetDefault("AUTH_JWT_SECRET", "change-me")
	v.SetDefault("AUTH_TOKEN_TTL", 24*time.Hour)
	v.SetDefault("AUTH_SESSION_TTL", 24*time.Hour)

	v.SetDefault("MATCHING_SEARCH_RADIUS_KM", 10.0)
	v.SetDefault("MATCHING_ACCEPT_LOCK_TTL", 10*time.Second)
}

func fromViper(v *viper.Viper) (*Config, error) {
	coupons, err := parseCoupons(v.GetString("PRICING_COUPONS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),

			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Enabled:  v.GetBool("REDIS_ENABLED"),
		},
		NewRelic: NewRelicConfig{
			AppName:    v.GetString("NEW_RELIC_APP_NAME"),
			LicenseKey: v.GetString("NEW_RELIC_LICENSE_KEY"),
			Enabled:    v.GetBool("NEW_RELIC_ENABLED"),
		},
		Logger: LoggerConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		Pricing: PricingConfig{
			BaseFee:                v.GetInt64("PRICING_BASE_FEE"),
			PerKmRate:              v.GetInt64("PRICING_PER_KM_RATE"),
			BaseDistanceKm:         v.GetInt64("PRICING_BASE_DISTANCE_KM"),
			MinimumFare:            v.GetInt64("PRICING_MINIMUM_FARE"),
			PlatformFeeBasisPoints: v.GetInt64("PRICING_PLATFORM_FEE_BPS"),
			MinimumTotal:           v.GetInt64("PRICING_MINIMUM_TOTAL"),
			Coupons:                coupons,
		},
		Wallet: WalletConfig{
			StartingBalance: v.GetInt64("WALLET_STARTING_BALANCE"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:   v.GetDuration("AUTH_TOKEN_TTL"),
			SessionTTL: v.GetDuration("AUTH_SESSION_TTL"),
		},
		Matching: MatchingConfig{
			SearchRadiusKm: v.GetFloat64("MATCHING_SEARCH_RADIUS_KM"),
			AcceptLockTTL:  v.GetDuration("MATCHING_ACCEPT_LOCK_TTL"),
		},
	}

	if cfg.Storage.Driver != StorageMemory && cfg.Storage.Driver != StoragePostgres {
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// parseCoupons reads "CODE:amount,CODE2:amount" pairs.
func parseCoupons(raw string) (map[string]int64, error) {
	coupons := make(map[string]int64)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, amount, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid coupon %q: expected CODE:amount", pair)
		}
		value, err := strconv.ParseInt(strings.TrimSpace(amount), 10, 64)
		if err != nil || value < 0 {
			return nil, fmt.Errorf("invalid coupon amount %q", pair)
		}
		coupons[strings.ToUpper(strings.TrimSpace(code))] = value
	}
	return coupons, nil
}
