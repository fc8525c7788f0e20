package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Stats     StatsConfig     `mapstructure:"stats"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	// AutoMigrate creates missing read-model tables on startup. Local runs only.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File enables the rotating JSON file sink when non-empty.
	File string `mapstructure:"file"`
}

type StatsConfig struct {
	WorkerConcurrency int `mapstructure:"worker_concurrency"`
	DefaultWindowDays int `mapstructure:"default_window_days"`
	MaxWindowDays     int `mapstructure:"max_window_days"`
}

var envBindings = map[string]string{
	"server.port":               "PORT",
	"server.mode":               "GIN_MODE",
	"server.allowed_origins":    "ALLOWED_ORIGINS",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"database.sslmode":          "DB_SSLMODE",
	"database.auto_migrate":     "DB_AUTO_MIGRATE",
	"redis.enabled":             "REDIS_ENABLED",
	"redis.host":                "REDIS_HOST",
	"redis.port":                "REDIS_PORT",
	"redis.password":            "REDIS_PASSWORD",
	"redis.db":                  "REDIS_DB",
	"rate_limit.max_requests":   "RATE_LIMIT_MAX_REQUESTS",
	"rate_limit.window_seconds": "RATE_LIMIT_WINDOW_SECONDS",
	"log.level":                 "LOG_LEVEL",
	"log.file":                  "LOG_FILE",
	"stats.worker_concurrency":  "STATS_WORKER_CONCURRENCY",
	"stats.default_window_days": "STATS_DEFAULT_WINDOW_DAYS",
	"stats.max_window_days":     "STATS_MAX_WINDOW_DAYS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window_seconds", 60)

	v.SetDefault("log.level", "info")

	v.SetDefault("stats.worker_concurrency", 8)
	v.SetDefault("stats.default_window_days", 30)
	v.SetDefault("stats.max_window_days", 366)
}

// Load reads an optional .env file, an optional config.yaml under path, then
// the environment. Later sources win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Stats.WorkerConcurrency <= 0 {
		return fmt.Errorf("stats.worker_concurrency must be positive, got %d", c.Stats.WorkerConcurrency)
	}
	if c.Stats.DefaultWindowDays <= 0 || c.Stats.DefaultWindowDays > c.Stats.MaxWindowDays {
		return fmt.Errorf("stats.default_window_days must be in (0, %d], got %d",
			c.Stats.MaxWindowDays, c.Stats.DefaultWindowDays)
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return errors.New("rate_limit values must be positive")
	}
	return nil
}
