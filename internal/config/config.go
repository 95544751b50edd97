package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RateLimitRPS   int `mapstructure:"rate_limit_rps"`
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SchedulingConfig carries the booking-domain knobs. The default weekly
// availability handed to new therapists is built from these values at
// construction time rather than living in a package-level literal.
type SchedulingConfig struct {
	DefaultDayStart string `mapstructure:"default_day_start"`
	DefaultDayEnd   string `mapstructure:"default_day_end"`
}

// WorkerConfig is the schedule for the background jobs binary. Cron
// expressions are in the local timezone.
type WorkerConfig struct {
	NoShowSweepCron  string `mapstructure:"no_show_sweep_cron"`
	ReminderCron     string `mapstructure:"reminder_cron"`
	HealthPort       int    `mapstructure:"health_port"`
	MetricsNamespace string `mapstructure:"metrics_namespace"`
}

// Expiry returns the configured token lifetime.
func (c JWTConfig) Expiry() time.Duration {
	if c.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpiryHours) * time.Hour
}

// envOverrides mirrors the settings operators most often override per
// environment without editing the config file.
type envOverrides struct {
	DatabaseURLHost string `envconfig:"DB_HOST"`
	DatabasePort    int    `envconfig:"DB_PORT"`
	DatabaseUser    string `envconfig:"DB_USER"`
	DatabasePass    string `envconfig:"DB_PASSWORD"`
	DatabaseName    string `envconfig:"DB_NAME"`
	RedisURL        string `envconfig:"REDIS_URL"`
	JWTSecret       string `envconfig:"JWT_SECRET"`
	ServerPort      int    `envconfig:"PORT"`
}

func LoadConfig() (*Config, error) {
	// .env is optional; absence is not an error
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("booking", &env); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}
	applyOverrides(&config, env)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 50)
	viper.SetDefault("server.rate_limit_burst", 100)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("scheduling.default_day_start", "09:00")
	viper.SetDefault("scheduling.default_day_end", "17:00")
	viper.SetDefault("worker.no_show_sweep_cron", "0 2 * * *")
	viper.SetDefault("worker.reminder_cron", "0 8 * * *")
	viper.SetDefault("worker.health_port", 8081)
	viper.SetDefault("worker.metrics_namespace", "booking_worker")
}

func applyOverrides(cfg *Config, env envOverrides) {
	if env.DatabaseURLHost != "" {
		cfg.Database.Host = env.DatabaseURLHost
	}
	if env.DatabasePort != 0 {
		cfg.Database.Port = env.DatabasePort
	}
	if env.DatabaseUser != "" {
		cfg.Database.User = env.DatabaseUser
	}
	if env.DatabasePass != "" {
		cfg.Database.Password = env.DatabasePass
	}
	if env.DatabaseName != "" {
		cfg.Database.Name = env.DatabaseName
	}
	if env.RedisURL != "" {
		cfg.Redis.URL = env.RedisURL
	}
	if env.JWTSecret != "" {
		cfg.JWT.Secret = env.JWTSecret
	}
	if env.ServerPort != 0 {
		cfg.Server.Port = env.ServerPort
	}
}
