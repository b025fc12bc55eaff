package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

type Config struct {
	Addr            string
	StoreDriver     string
	Postgres        PostgresConfig
	SQLitePath      string
	MySQLDSN        string
	RedisURL        string
	RedisKey        string
	ShutdownTimeout time.Duration
	LogLevel        string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DB)
}

// CounterEnabled reports whether tallies are served from the Redis counter.
func (c Config) CounterEnabled() bool {
	return c.RedisURL != ""
}

// Load resolves configuration from flags, then environment (including an
// optional .env file), then defaults.
func Load(name string, args []string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("store_driver", DriverPostgres)
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("sqlite_path", "waterpoll.db")
	v.SetDefault("redis_key", "waterpoll:tally")
	v.SetDefault("shutdown_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("addr", "", "HTTP listen address")
	fs.String("store-driver", "", "Vote store: postgres, sqlite or mysql")
	fs.String("db-host", "", "Postgres host")
	fs.String("db-port", "", "Postgres port")
	fs.String("db-user", "", "Postgres user")
	fs.String("db-pass", "", "Postgres password")
	fs.String("db-name", "", "Postgres database name")
	fs.String("sqlite-path", "", "SQLite database file")
	fs.String("mysql-dsn", "", "MySQL DSN")
	fs.String("redis-url", "", "Redis URL for the tally counter (empty disables it)")
	fs.Duration("shutdown-timeout", 0, "Graceful shutdown timeout")
	fs.String("log-level", "", "Log level")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	bindings := map[string]string{
		"addr":             "addr",
		"store-driver":     "store_driver",
		"db-host":          "postgres_host",
		"db-port":          "postgres_port",
		"db-user":          "postgres_user",
		"db-pass":          "postgres_password",
		"db-name":          "postgres_db",
		"sqlite-path":      "sqlite_path",
		"mysql-dsn":        "mysql_dsn",
		"redis-url":        "redis_url",
		"shutdown-timeout": "shutdown_timeout",
		"log-level":        "log_level",
	}
	for flagName, key := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return Config{}, err
		}
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Addr:        v.GetString("addr"),
		StoreDriver: strings.ToLower(v.GetString("store_driver")),
		Postgres: PostgresConfig{
			Host:     v.GetString("postgres_host"),
			Port:     v.GetString("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			DB:       v.GetString("postgres_db"),
		},
		SQLitePath:      v.GetString("sqlite_path"),
		MySQLDSN:        v.GetString("mysql_dsn"),
		RedisURL:        v.GetString("redis_url"),
		RedisKey:        v.GetString("redis_key"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		LogLevel:        v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.DB == "" {
			return errors.New("POSTGRES_HOST and POSTGRES_DB are required for the postgres store")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite store")
		}
	case DriverMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}
