package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// DefaultConfigPath is read when CONFIG_PATH is not set.
const DefaultConfigPath = "configs/config.yaml"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"PORT"`
		Mode            string `yaml:"mode" env:"APP_ENV"`
		StoragePath     string `yaml:"storage_path" env:"STORAGE_PATH"`
		MaxUploadBytes  int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
		ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		IdleTimeout     string `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" env:"DATABASE_URL"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns        int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
		MinConns        int32  `yaml:"min_conns" env:"DB_MIN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		QueryTimeout    string `yaml:"query_timeout" env:"DB_QUERY_TIMEOUT"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRATION"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Admin struct {
		Key          string `yaml:"key" env:"ADMIN_KEY"`
		SeedEmail    string `yaml:"seed_email" env:"ADMIN_SEED_EMAIL"`
		SeedPassword string `yaml:"seed_password" env:"ADMIN_SEED_PASSWORD"`
		SeedName     string `yaml:"seed_name" env:"ADMIN_SEED_NAME"`
	} `yaml:"admin"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	Cache struct {
		Driver   string `yaml:"driver" env:"CACHE_DRIVER"`
		TTL      string `yaml:"ttl" env:"CACHE_TTL"`
		RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	} `yaml:"cache"`

	Jobs struct {
		Enabled         bool   `yaml:"enabled" env:"JOBS_ENABLED"`
		ArchiveInterval string `yaml:"archive_interval" env:"JOBS_ARCHIVE_INTERVAL"`
	} `yaml:"jobs"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"`
		Burst             int     `yaml:"burst" env:"RATE_LIMIT_BURST"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and the environment
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env is optional; existing environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = ModeDevelopment
	config.Server.StoragePath = "uploads"
	config.Server.MaxUploadBytes = 5 << 20
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.IdleTimeout = "120s"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "technohack"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 20
	config.Database.MinConns = 2
	config.Database.ConnMaxLifetime = "1h"
	config.Database.QueryTimeout = "5s"

	config.JWT.Expiration = "24h"
	config.JWT.Issuer = "technohack"

	config.Admin.SeedName = "Administrator"

	config.Cache.Driver = CacheDriverMemory
	config.Cache.TTL = "5m"

	config.Jobs.Enabled = true
	config.Jobs.ArchiveInterval = "1h"

	config.RateLimit.RequestsPerSecond = 1
	config.RateLimit.Burst = 10

	config.Logging.Level = "info"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.JWT.Secret) == "" {
		return fmt.Errorf("JWT secret is required")
	}

	switch config.Server.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("unknown server mode %q", config.Server.Mode)
	}

	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	durations := map[string]string{
		"server.read_timeout":        config.Server.ReadTimeout,
		"server.write_timeout":       config.Server.WriteTimeout,
		"server.idle_timeout":        config.Server.IdleTimeout,
		"server.shutdown_timeout":    config.Server.ShutdownTimeout,
		"database.conn_max_lifetime": config.Database.ConnMaxLifetime,
		"database.query_timeout":     config.Database.QueryTimeout,
		"jwt.expiration":             config.JWT.Expiration,
		"cache.ttl":                  config.Cache.TTL,
		"jobs.archive_interval":      config.Jobs.ArchiveInterval,
	}
	for name, raw := range durations {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	switch config.Cache.Driver {
	case CacheDriverMemory:
	case CacheDriverRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
	}

	if config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == ModeProduction
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// Duration parses one of the validated duration strings.
func Duration(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
