// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"

	DefaultTokenTTL = 24 * time.Hour
	MinTokenTTL     = time.Hour
	MaxTokenTTL     = 48 * time.Hour
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	Issuer   string        `yaml:"issuer"`
	// RestrictAdminRegistration downgrades self-registered ADMIN accounts to
	// COACH. Admins then have to be created by another admin.
	RestrictAdminRegistration bool `yaml:"restrict_admin_registration"`
}

type RateLimitConfig struct {
	LoginMaxAttempts  int           `yaml:"login_max_attempts"`
	LoginLockout      time.Duration `yaml:"login_lockout"`
	LoginMaxIPPerHour int           `yaml:"login_max_ip_per_hour"`
	TrustProxy        bool          `yaml:"trust_proxy"`
}

type SchedulerConfig struct {
	Enabled            bool          `yaml:"enabled"`
	OverdueFixtureCron string        `yaml:"overdue_fixture_cron"`
	OverdueGrace       time.Duration `yaml:"overdue_grace"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	App struct {
		Name          string `yaml:"name"`
		Environment   string `yaml:"environment"`
		Port          int    `yaml:"port"`
		DefaultRegion string `yaml:"default_region"`
		SecretKey     string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	CORS      CORSConfig      `yaml:"cors"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and fills in defaults. It does not read
// the environment and does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = EnvironmentDevelopment
	}
	if c.App.DefaultRegion == "" {
		c.App.DefaultRegion = "US"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = DefaultTokenTTL
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = c.App.Name
	}
	if c.RateLimit.LoginMaxAttempts == 0 {
		c.RateLimit.LoginMaxAttempts = 5
	}
	if c.RateLimit.LoginLockout == 0 {
		c.RateLimit.LoginLockout = 15 * time.Minute
	}
	if c.RateLimit.LoginMaxIPPerHour == 0 {
		c.RateLimit.LoginMaxIPPerHour = 50
	}
	if c.Scheduler.OverdueFixtureCron == "" {
		c.Scheduler.OverdueFixtureCron = "0 * * * *"
	}
	if c.Scheduler.OverdueGrace == 0 {
		c.Scheduler.OverdueGrace = 3 * time.Hour
	}
}

// IsProduction reports whether internal error details must be hidden.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvironmentProduction
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.App.SecretKey == "" {
		return fmt.Errorf("APP_SECRET_KEY must be set")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	// Validate based on database driver
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auth.TokenTTL < MinTokenTTL || c.Auth.TokenTTL > MaxTokenTTL {
		return fmt.Errorf("auth token_ttl must be between %s and %s, got %s", MinTokenTTL, MaxTokenTTL, c.Auth.TokenTTL)
	}
	if c.RateLimit.LoginMaxAttempts < 0 || c.RateLimit.LoginMaxIPPerHour < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.OverdueFixtureCron); err != nil {
			return fmt.Errorf("invalid scheduler overdue_fixture_cron %q: %w", c.Scheduler.OverdueFixtureCron, err)
		}
		if c.Scheduler.OverdueGrace < 0 {
			return fmt.Errorf("scheduler overdue_grace must not be negative")
		}
	}

	return nil
}
