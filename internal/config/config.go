package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Backup     BackupConfig     `yaml:"backup"`
	Redis      RedisConfig      `yaml:"redis"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Events     EventsConfig     `yaml:"events"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type RateLimitConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Requests int     `yaml:"requests"`
	Window   int     `yaml:"window"`
	RPS      float64 `yaml:"rps"`
	Burst    int     `yaml:"burst"`
}

type EventsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	URL          string `yaml:"url"`
	Exchange     string `yaml:"exchange"`
	PollInterval string `yaml:"poll_interval"`
	BatchSize    int    `yaml:"batch_size"`
	MaxRetries   int    `yaml:"max_retries"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type PaginationConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

// Load reads a YAML config file, expanding ${VAR} references from the
// environment (optionally seeded by a .env file).
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return errors.New("events.url is required when events are enabled")
	}
	if c.RateLimit.Enabled && c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}
	if c.Pagination.DefaultSize <= 0 {
		return errors.New("pagination.default_size must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 60
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 60
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 10
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.Events.Exchange == "" {
		c.Events.Exchange = "shareit.bookings"
	}
	if c.Events.PollInterval == "" {
		c.Events.PollInterval = "5s"
	}
	if c.Events.BatchSize == 0 {
		c.Events.BatchSize = 50
	}
	if c.Events.MaxRetries == 0 {
		c.Events.MaxRetries = 5
	}
	if c.Pagination.DefaultSize == 0 {
		c.Pagination.DefaultSize = 10
	}
	if c.Pagination.MaxSize == 0 {
		c.Pagination.MaxSize = 100
	}
}
