package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type LoggingConfig struct {
	Level string
}

// CMSConfig points at the Strapi backend that owns challenges, stages and rewards.
type CMSConfig struct {
	URL   string
	Token string
}

type MetricsConfig struct {
	URL      string
	Token    string
	CacheTTL time.Duration
}

type ShopConfig struct {
	URL    string
	Key    string
	Secret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SchedulerConfig struct {
	Interval time.Duration
}

type HTTPConfig struct {
	Timeout time.Duration
}

type AppConfig struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	CMS       CMSConfig
	Metrics   MetricsConfig
	Shop      ShopConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	HTTP      HTTPConfig
}

func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("DATABASE_DSN", "data/challenges.db")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CMS_URL", "http://localhost:1337")
	viper.SetDefault("METRICS_URL", "https://metastats-api-v1.new-york.agiliumtrade.ai")
	viper.SetDefault("METRICS_CACHE_TTL", "2m")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REFRESH_INTERVAL", "15m")
	viper.SetDefault("HTTP_TIMEOUT", "15s")

	refresh, err := time.ParseDuration(viper.GetString("REFRESH_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval: %w", err)
	}
	cacheTTL, err := time.ParseDuration(viper.GetString("METRICS_CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid metrics cache ttl: %w", err)
	}
	httpTimeout, err := time.ParseDuration(viper.GetString("HTTP_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid http timeout: %w", err)
	}

	cfg := &AppConfig{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			DSN: viper.GetString("DATABASE_DSN"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		CMS: CMSConfig{
			URL:   viper.GetString("CMS_URL"),
			Token: viper.GetString("CMS_TOKEN"),
		},
		Metrics: MetricsConfig{
			URL:      viper.GetString("METRICS_URL"),
			Token:    viper.GetString("METRICS_TOKEN"),
			CacheTTL: cacheTTL,
		},
		Shop: ShopConfig{
			URL:    viper.GetString("SHOP_URL"),
			Key:    viper.GetString("SHOP_KEY"),
			Secret: viper.GetString("SHOP_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Scheduler: SchedulerConfig{
			Interval: refresh,
		},
		HTTP: HTTPConfig{
			Timeout: httpTimeout,
		},
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.CMS.URL == "" {
		return nil, fmt.Errorf("CMS_URL is required")
	}

	return cfg, nil
}
