package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"staybook/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Booking    BookingConfig    `yaml:"booking"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type GatewayConfig struct {
	BaseURL        string           `yaml:"base_url"`
	TimeoutSeconds int              `yaml:"timeout_seconds"`
	Token          string           `yaml:"token"`
	CacheTTL       int              `yaml:"cache_ttl"` // seconds, catalog GETs only
	RateLimit      GatewayRateLimit `yaml:"rate_limit"`
}

type GatewayRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type BookingConfig struct {
	SelectionTTL         int `yaml:"selection_ttl"` // seconds
	RateLimitSubmissions int `yaml:"rate_limit_submissions"`
	RateLimitWindow      int `yaml:"rate_limit_window"` // seconds
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env файл не обязателен
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
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
	if c.Gateway.BaseURL == "" {
		return errors.New("gateway base_url is required")
	}
	if _, err := url.ParseRequestURI(c.Gateway.BaseURL); err != nil {
		return fmt.Errorf("gateway base_url is invalid: %w", err)
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis address is required when redis is enabled")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "staybook"
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 10
	}
	if c.Gateway.CacheTTL == 0 {
		c.Gateway.CacheTTL = models.DefaultCatalogCacheTTL
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.SelectionTTL == 0 {
		c.Booking.SelectionTTL = models.DefaultSelectionTTL
	}
	if c.Booking.RateLimitSubmissions == 0 {
		c.Booking.RateLimitSubmissions = models.RateLimitSubmissions
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
