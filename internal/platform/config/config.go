package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	StorageDriver  string
	MigrationsPath string

	JWTSecret string
	JWTIssuer string
	// bcrypt hash of the X-Trigger-Key the billing scheduler sends
	BillingTriggerKeyHash string

	BillingDueDays       int
	BillingLockTTL       time.Duration
	OverdueGraceDays     int
	FiscalYearStartMonth time.Month
	DefaultCashAccount   string
	ChartOfAccountsFile  string

	RedisAddress    string
	PubSubProjectID string
	PubSubTopic     string

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("STORAGE_DRIVER", StoragePostgres)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_ISSUER", "estate-platform")
	viper.SetDefault("BILLING_TRIGGER_KEY_HASH", "")
	viper.SetDefault("BILLING_DUE_DAYS", 7)
	viper.SetDefault("BILLING_LOCK_TTL", "10m")
	viper.SetDefault("OVERDUE_GRACE_DAYS", 0)
	viper.SetDefault("FISCAL_YEAR_START_MONTH", 1)
	viper.SetDefault("DEFAULT_CASH_ACCOUNT", "1000")
	viper.SetDefault("CHART_OF_ACCOUNTS_FILE", "")
	viper.SetDefault("REDIS_ADDRESS", "")
	viper.SetDefault("PUBSUB_PROJECT_ID", "")
	viper.SetDefault("PUBSUB_TOPIC", "ledger-events")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected %q or %q", cfg.StorageDriver, StoragePostgres, StorageMemory)
	}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" && cfg.StorageDriver == StoragePostgres {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.BillingTriggerKeyHash = viper.GetString("BILLING_TRIGGER_KEY_HASH")
	if cfg.BillingTriggerKeyHash == "" {
		log.Println("Warning: BILLING_TRIGGER_KEY_HASH not set. The billing trigger endpoint will reject every call.")
	}

	cfg.BillingDueDays = viper.GetInt("BILLING_DUE_DAYS")
	if cfg.BillingDueDays < 0 {
		return nil, fmt.Errorf("BILLING_DUE_DAYS must not be negative, got %d", cfg.BillingDueDays)
	}

	lockTTLStr := viper.GetString("BILLING_LOCK_TTL")
	lockTTL, err := time.ParseDuration(lockTTLStr)
	if err != nil || lockTTL <= 0 {
		lockTTL = 10 * time.Minute
		log.Printf("Warning: Invalid value for BILLING_LOCK_TTL ('%s'). Defaulting to %s.\n", lockTTLStr, lockTTL)
	}
	cfg.BillingLockTTL = lockTTL

	cfg.OverdueGraceDays = viper.GetInt("OVERDUE_GRACE_DAYS")
	if cfg.OverdueGraceDays < 0 {
		return nil, fmt.Errorf("OVERDUE_GRACE_DAYS must not be negative, got %d", cfg.OverdueGraceDays)
	}

	month := viper.GetInt("FISCAL_YEAR_START_MONTH")
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("FISCAL_YEAR_START_MONTH must be between 1 and 12, got %d", month)
	}
	cfg.FiscalYearStartMonth = time.Month(month)

	cfg.DefaultCashAccount = viper.GetString("DEFAULT_CASH_ACCOUNT")
	cfg.ChartOfAccountsFile = viper.GetString("CHART_OF_ACCOUNTS_FILE")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.RedisAddress = viper.GetString("REDIS_ADDRESS")
	if cfg.RedisAddress == "" {
		log.Println("Warning: REDIS_ADDRESS not set. Batch billing uses an in-process lock only.")
	}
	cfg.PubSubProjectID = viper.GetString("PUBSUB_PROJECT_ID")
	cfg.PubSubTopic = viper.GetString("PUBSUB_TOPIC")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}
