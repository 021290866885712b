package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	StoreDriver       string
	MigrationsPath    string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	LogLevel          slog.Level
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// RateLimit uses the ulule/limiter formatted rate, e.g. "100-M".
	RateLimit          string
	CORSAllowedOrigins []string

	AccountCash         string
	AccountReceivable   string
	AccountInventory    string
	AccountPayable      string
	AccountRevenue      string
	AccountSalesReturns string
	AccountCOGS         string
	AccountBadDebt      string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	std := domain.DefaultStandardAccounts()

	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "erp-ledger")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("ACCOUNT_CASH", std.Cash)
	v.SetDefault("ACCOUNT_AR", std.AccountsReceivable)
	v.SetDefault("ACCOUNT_INVENTORY", std.Inventory)
	v.SetDefault("ACCOUNT_AP", std.AccountsPayable)
	v.SetDefault("ACCOUNT_REVENUE", std.Revenue)
	v.SetDefault("ACCOUNT_SALES_RETURNS", std.SalesReturns)
	v.SetDefault("ACCOUNT_COGS", std.COGS)
	v.SetDefault("ACCOUNT_BAD_DEBT", std.BadDebt)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		StoreDriver:         strings.ToLower(v.GetString("STORE_DRIVER")),
		MigrationsPath:      v.GetString("MIGRATIONS_PATH"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		AccountCash:         v.GetString("ACCOUNT_CASH"),
		AccountReceivable:   v.GetString("ACCOUNT_AR"),
		AccountInventory:    v.GetString("ACCOUNT_INVENTORY"),
		AccountPayable:      v.GetString("ACCOUNT_AP"),
		AccountRevenue:      v.GetString("ACCOUNT_REVENUE"),
		AccountSalesReturns: v.GetString("ACCOUNT_SALES_RETURNS"),
		AccountCOGS:         v.GetString("ACCOUNT_COGS"),
		AccountBadDebt:      v.GetString("ACCOUNT_BAD_DEBT"),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL must be set when STORE_DRIVER is %q", StoreDriverPostgres)
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		slog.Warn("PORT environment variable not set, using default", slog.String("port", cfg.Port))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		slog.Warn("Invalid JWT_EXPIRY_DURATION, using default",
			slog.String("value", jwtExpiryStr),
			slog.String("default", jwtExpiryDuration.String()))
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	if cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

// StandardAccounts returns the configured numbers of the standard chart.
func (c *Config) StandardAccounts() domain.StandardAccounts {
	return domain.StandardAccounts{
		Cash:               c.AccountCash,
		AccountsReceivable: c.AccountReceivable,
		Inventory:          c.AccountInventory,
		AccountsPayable:    c.AccountPayable,
		Revenue:            c.AccountRevenue,
		SalesReturns:       c.AccountSalesReturns,
		COGS:               c.AccountCOGS,
		BadDebt:            c.AccountBadDebt,
	}
}
