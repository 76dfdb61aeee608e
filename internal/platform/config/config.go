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
	"gopkg.in/yaml.v3"
)

const (
	AuthzModeEnforce  = "enforce"
	AuthzModeShadow   = "shadow"
	AuthzModeDisabled = "disabled"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	DatabaseURL        string        `yaml:"database_url"`
	JWTSecret          string        `yaml:"jwt_secret"`
	DataEncryptionKey  string        `yaml:"data_encryption_key"`
	Environment        string        `yaml:"env"`
	LogLevel           string        `yaml:"log_level"`
	SeedTenantName     string        `yaml:"seed_tenant_name"`
	SeedAdminEmail     string        `yaml:"seed_admin_email"`
	SeedAdminPassword  string        `yaml:"seed_admin_password"`
	RunMigrations      bool          `yaml:"run_migrations"`
	RunSeed            bool          `yaml:"run_seed"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	MetricsEnabled     bool          `yaml:"metrics_enabled"`
	AuthzMode          string        `yaml:"authz_mode"`
	StorageTimeout     time.Duration `yaml:"storage_timeout"`
	DBMaxConns         int           `yaml:"db_max_conns"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
}

func Defaults() Config {
	return Config{
		Addr:               ":8080",
		Environment:        "development",
		LogLevel:           "info",
		SeedTenantName:     "Default Tenant",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		MetricsEnabled:     true,
		AuthzMode:          AuthzModeEnforce,
		StorageTimeout:     5 * time.Second,
		DBMaxConns:         10,
		TokenTTL:           12 * time.Hour,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables. A .env file in the
// working directory is read into the environment first when present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Addr = getEnv("APP_ADDR", c.Addr)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.DataEncryptionKey = getEnv("DATA_ENCRYPTION_KEY", c.DataEncryptionKey)
	c.Environment = getEnv("APP_ENV", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SeedTenantName = getEnv("SEED_TENANT_NAME", c.SeedTenantName)
	c.SeedAdminEmail = getEnv("SEED_ADMIN_EMAIL", c.SeedAdminEmail)
	c.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", c.SeedAdminPassword)
	c.RunMigrations = getEnvBool("RUN_MIGRATIONS", c.RunMigrations)
	c.RunSeed = getEnvBool("RUN_SEED", c.RunSeed)
	c.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(c.MaxBodyBytes)))
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.MetricsEnabled = getEnvBool("METRICS_ENABLED", c.MetricsEnabled)
	c.AuthzMode = strings.ToLower(getEnv("AUTHZ_MODE", c.AuthzMode))
	c.StorageTimeout = getEnvDuration("STORAGE_TIMEOUT", c.StorageTimeout)
	c.DBMaxConns = getEnvInt("DB_MAX_CONNS", c.DBMaxConns)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
		if c.AuthzMode != AuthzModeEnforce {
			return fmt.Errorf("AUTHZ_MODE must be %s in production", AuthzModeEnforce)
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	switch c.AuthzMode {
	case AuthzModeEnforce, AuthzModeShadow, AuthzModeDisabled:
	default:
		return fmt.Errorf("AUTHZ_MODE must be one of enforce, shadow, disabled")
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
