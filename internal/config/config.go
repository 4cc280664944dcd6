package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownDriver               = errors.New("unknown database driver")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string     `mapstructure:"env"` // local, dev, production
	TelegramAPIToken string     `mapstructure:"-"`   // optional, enables the telegram channel
	JWTSecret        string     `mapstructure:"-"`   // HS256 key for API bearer tokens
	HTTP             HTTP       `mapstructure:"http"`
	DB               DB         `mapstructure:"database"`
	Scheduler        Scheduler  `mapstructure:"scheduler"`
	Dispatcher       Dispatcher `mapstructure:"dispatcher"`
	Notify           Notify     `mapstructure:"notify"`
}

type HTTP struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DB contains database-related configuration parameters.
type DB struct {
	Driver          string        `mapstructure:"driver"`            // postgres or sqlite
	URL             string        `mapstructure:"-"`                 // postgres connection string loaded from environment
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file for the sqlite driver
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Scheduler shapes generated due times.
type Scheduler struct {
	ReviewHour         int    `mapstructure:"review_hour"`
	DefaultTimezone    string `mapstructure:"default_timezone"`
	InitialOffsetsDays []int  `mapstructure:"initial_offsets_days"`
}

// Dispatcher tunes the due-reminder sweep.
type Dispatcher struct {
	Spec        string        `mapstructure:"spec"` // robfig/cron spec
	BatchSize   int           `mapstructure:"batch_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
	Concurrency int           `mapstructure:"concurrency"`
}

type Notify struct {
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	TelegramRate   float64       `mapstructure:"telegram_rate"` // messages per second
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Sensitive values only come from the environment.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.JWTSecret = v.GetString("jwt_secret")
	cfg.DB.URL = v.GetString("database_url")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.sqlite_path", "revisit.db")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("scheduler.review_hour", 9)
	v.SetDefault("scheduler.default_timezone", "UTC")
	v.SetDefault("scheduler.initial_offsets_days", []int{3, 7, 15})
	v.SetDefault("dispatcher.spec", "@every 1m")
	v.SetDefault("dispatcher.batch_size", 100)
	v.SetDefault("dispatcher.send_timeout", "10s")
	v.SetDefault("dispatcher.concurrency", 8)
	v.SetDefault("notify.webhook_timeout", "5s")
	v.SetDefault("notify.telegram_rate", 25)
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("DATABASE_URL: %w", ErrMissingEnvironmentVariables)
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			return errors.New("database.sqlite_path is empty")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DB.Driver)
	}

	if c.Scheduler.ReviewHour < 0 || c.Scheduler.ReviewHour > 23 {
		return fmt.Errorf("scheduler.review_hour out of range: %d", c.Scheduler.ReviewHour)
	}
	if c.Dispatcher.BatchSize <= 0 {
		return fmt.Errorf("dispatcher.batch_size must be positive: %d", c.Dispatcher.BatchSize)
	}
	return nil
}
