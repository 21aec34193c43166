package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
	StoreMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig
	Bolt     BoltConfig
	JWT      JWTConfig
	App      AppConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type BoltConfig struct {
	Path string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
	// Timezone is the IANA zone every "today" is computed in; empty means the host zone.
	Timezone     string
	FrontendURLs []string
	StoreType    string
	// SingleUserID, when set, disables token auth and acts as this user.
	SingleUserID string
}

// CronConfig holds the timer intervals
type CronConfig struct {
	AutoCloseInterval time.Duration
	SweepInterval     time.Duration
	LiveHoursInterval time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "timeclock"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: autoMigrate,
	}

	config.Bolt = BoltConfig{
		Path: getEnv("BOLT_PATH", "timeclock.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	frontendURLs := getEnvSlice("APP_FRONTEND_URL")
	if len(frontendURLs) == 0 {
		frontendURLs = []string{"http://localhost:3000"}
	}

	config.App = AppConfig{
		Port:         appPort,
		Env:          getEnv("APP_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Timezone:     getEnv("APP_TIMEZONE", ""),
		FrontendURLs: frontendURLs,
		StoreType:    strings.ToLower(getEnv("STORE_TYPE", StorePostgres)),
		SingleUserID: getEnv("SINGLE_USER_ID", ""),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Timers
	autoClose, err := getEnvDuration("CRON_AUTO_CLOSE_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	sweep, err := getEnvDuration("CRON_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	live, err := getEnvDuration("LIVE_HOURS_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}
	config.Cron = CronConfig{
		AutoCloseInterval: autoClose,
		SweepInterval:     sweep,
		LiveHoursInterval: live,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.StoreType {
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when STORE_TYPE=postgres")
		}
	case StoreBolt:
		if c.Bolt.Path == "" {
			return fmt.Errorf("BOLT_PATH is required when STORE_TYPE=bolt")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE_TYPE must be one of postgres, bolt, memory (got %q)", c.App.StoreType)
	}

	if c.App.SingleUserID == "" && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required unless SINGLE_USER_ID is set")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.App.Timezone != "" {
		if _, err := time.LoadLocation(c.App.Timezone); err != nil {
			return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
		}
	}
	if c.Cron.AutoCloseInterval > time.Minute {
		return fmt.Errorf("CRON_AUTO_CLOSE_INTERVAL must be at most 1m so the 23:59 tick is not skipped")
	}
	return nil
}

// Location resolves App.Timezone; empty means time.Local.
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
