package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "parkinglot/backend/libs/config"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const defaultPort = "8000"

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"PARKING_HTTP_PORT"`
}

// StorageConfig selects the document backend.
type StorageConfig struct {
	Driver  string `yaml:"driver" env:"PARKING_STORAGE_DRIVER"`
	DataDir string `yaml:"dataDir" env:"PARKING_DATA_DIR"`
}

// DatabaseConfig configures the postgres backend.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn" env:"PARKING_POSTGRES_DSN"`
	MaxOpenConns    int           `yaml:"maxOpenConns" env:"PARKING_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"maxIdleConns" env:"PARKING_POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" env:"PARKING_POSTGRES_CONN_MAX_LIFETIME"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"PARKING_REDIS_ADDR"`
	Password  string `yaml:"password" env:"PARKING_REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"PARKING_REDIS_DB"`
	KeyPrefix string `yaml:"keyPrefix" env:"PARKING_REDIS_KEY_PREFIX"`
}

// BillingConfig tunes the calculator.
type BillingConfig struct {
	GraceMinutes int `yaml:"graceMinutes" env:"PARKING_BILLING_GRACE_MINUTES"`
}

// AuthConfig holds account settings.
type AuthConfig struct {
	AdminUsername string `yaml:"adminUsername" env:"PARKING_ADMIN_USERNAME"`
	AdminPassword string `yaml:"adminPassword" env:"PARKING_ADMIN_PASSWORD"`
	BcryptCost    int    `yaml:"bcryptCost" env:"PARKING_BCRYPT_COST"`
}

// WSConfig tunes the session feed.
type WSConfig struct {
	PingSeconds int `yaml:"pingSeconds" env:"PARKING_WS_PING_SECONDS"`
}

// Config defines parking service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Billing  BillingConfig  `yaml:"billing"`
	Auth     AuthConfig     `yaml:"auth"`
	WS       WSConfig       `yaml:"ws"`
}

// Default returns configuration with every default applied.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Port: defaultPort},
		Storage: StorageConfig{Driver: DriverFile, DataDir: "./data"},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis:   RedisConfig{Addr: "localhost:6379", KeyPrefix: "parking:"},
		Billing: BillingConfig{GraceMinutes: 3},
		WS:      WSConfig{PingSeconds: 30},
	}
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver specific requirements.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverFile:
		if strings.TrimSpace(c.Storage.DataDir) == "" {
			return errors.New("config: storage data dir required")
		}
	case DriverMemory:
	case DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required")
		}
	case DriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr required")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Billing.GraceMinutes < 0 {
		return errors.New("config: billing grace minutes must not be negative")
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return errors.New("config: admin username and password must be set together")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// GracePeriod returns the billing grace period as duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Billing.GraceMinutes) * time.Minute
}

// WSPingInterval returns the websocket ping interval as duration.
func (c *Config) WSPingInterval() time.Duration {
	if c.WS.PingSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.WS.PingSeconds) * time.Second
}
