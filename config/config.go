package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Firebase  FirebaseConfig  `mapstructure:"firebase"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Functions FunctionsConfig `mapstructure:"functions"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	Cron      CronConfig      `mapstructure:"cron"`
	App       AppConfig       `mapstructure:"app"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type FirebaseConfig struct {
	CredentialsPath string `mapstructure:"credentialsPath"`
	ProjectID       string `mapstructure:"projectID"`
}

// Enabled reports whether the hosted store and identity provider are configured.
func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsPath != "" || f.ProjectID != ""
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cacheTTL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslMode"`
}

// Enabled reports whether the activity database is configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.Host) != ""
}

type FunctionsConfig struct {
	BaseURL       string        `mapstructure:"baseURL"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"ratePerSecond"`
	Burst         int           `mapstructure:"burst"`
}

type CheckoutConfig struct {
	SuccessURL string        `mapstructure:"successURL"`
	CancelURL  string        `mapstructure:"cancelURL"`
	PendingTTL time.Duration `mapstructure:"pendingTTL"`
	Plans      PlanPrices    `mapstructure:"plans"`
}

// PlanPrices overrides catalog prices, in cents. Zero keeps the default.
type PlanPrices struct {
	OnetimeCents      int64 `mapstructure:"onetimeCents"`
	BasicMonthCents   int64 `mapstructure:"basicMonthCents"`
	BasicYearCents    int64 `mapstructure:"basicYearCents"`
	PremiumMonthCents int64 `mapstructure:"premiumMonthCents"`
	PremiumYearCents  int64 `mapstructure:"premiumYearCents"`
}

type CronConfig struct {
	SnapshotSpec string `mapstructure:"snapshotSpec"`
}

type AppConfig struct {
	Environment string   `mapstructure:"environment"`
	LogLevel    string   `mapstructure:"logLevel"`
	Version     string   `mapstructure:"version"`
	TimeZone    string   `mapstructure:"timeZone"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
	// SeedPath is a YAML fixture loaded into the in-memory store when
	// Firebase is not configured.
	SeedPath string `mapstructure:"seedPath"`
}

var envBindings = map[string]string{
	"server.port":                      "PORT",
	"server.shutdownTimeout":           "SHUTDOWN_TIMEOUT",
	"firebase.credentialsPath":         "FIREBASE_CREDENTIALS_PATH",
	"firebase.projectID":               "FIREBASE_PROJECT_ID",
	"redis.addr":                       "REDIS_ADDR",
	"redis.password":                   "REDIS_PASSWORD",
	"redis.db":                         "REDIS_DB",
	"redis.cacheTTL":                   "CACHE_TTL",
	"database.host":                    "DB_HOST",
	"database.port":                    "DB_PORT",
	"database.user":                    "DB_USER",
	"database.password":                "DB_PASSWORD",
	"database.name":                    "DB_NAME",
	"database.sslMode":                 "DB_SSLMODE",
	"functions.baseURL":                "FUNCTIONS_BASE_URL",
	"functions.timeout":                "FUNCTIONS_TIMEOUT",
	"functions.ratePerSecond":          "FUNCTIONS_RATE",
	"functions.burst":                  "FUNCTIONS_BURST",
	"checkout.successURL":              "CHECKOUT_SUCCESS_URL",
	"checkout.cancelURL":               "CHECKOUT_CANCEL_URL",
	"checkout.pendingTTL":              "CHECKOUT_PENDING_TTL",
	"checkout.plans.onetimeCents":      "PLAN_ONETIME_CENTS",
	"checkout.plans.basicMonthCents":   "PLAN_BASIC_MONTH_CENTS",
	"checkout.plans.basicYearCents":    "PLAN_BASIC_YEAR_CENTS",
	"checkout.plans.premiumMonthCents": "PLAN_PREMIUM_MONTH_CENTS",
	"checkout.plans.premiumYearCents":  "PLAN_PREMIUM_YEAR_CENTS",
	"cron.snapshotSpec":                "SNAPSHOT_CRON",
	"app.environment":                  "APP_ENV",
	"app.logLevel":                     "LOG_LEVEL",
	"app.version":                      "APP_VERSION",
	"app.timeZone":                     "TZ",
	"app.corsOrigins":                  "CORS_ORIGINS",
	"app.seedPath":                     "SEED_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cacheTTL", "30s")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "haulzy")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("functions.timeout", "15s")
	v.SetDefault("functions.ratePerSecond", 4)
	v.SetDefault("functions.burst", 8)
	v.SetDefault("checkout.successURL", "http://localhost:3000/success")
	v.SetDefault("checkout.cancelURL", "http://localhost:3000/signup")
	v.SetDefault("checkout.pendingTTL", "2h")
	v.SetDefault("cron.snapshotSpec", "0 55 23 * * *")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.corsOrigins", []string{"http://localhost:3000"})
}

// Load reads .env, an optional config.yaml under CONFIG_PATH (default "."),
// then environment variables, in increasing precedence.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dir := os.Getenv("CONFIG_PATH")
	if dir == "" {
		dir = "."
	}
	return LoadFrom(dir)
}

// LoadFrom is Load without the .env step.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if !c.Firebase.Enabled() && !c.App.AllowsLocalBackends() {
		return fmt.Errorf("FIREBASE_CREDENTIALS_PATH or FIREBASE_PROJECT_ID is required when APP_ENV=%q", c.App.Environment)
	}
	if c.App.IsProduction() && c.Functions.BaseURL == "" {
		return fmt.Errorf("FUNCTIONS_BASE_URL is required in production")
	}

	if c.App.TimeZone != "" {
		if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
			return fmt.Errorf("invalid TZ %q: %w", c.App.TimeZone, err)
		}
	}

	return nil
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// AllowsLocalBackends reports whether the in-memory store and unsigned dev
// tokens may stand in for Firebase. Only development and test do.
func (a AppConfig) AllowsLocalBackends() bool {
	switch a.Environment {
	case "development", "test":
		return true
	}
	return false
}
