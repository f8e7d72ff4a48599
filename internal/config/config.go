package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
	Valkey  ValkeyConfig  `mapstructure:"valkey"`
	History HistoryConfig `mapstructure:"history"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // "development" or "production"
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`
}

// ValkeyConfig enables pub/sub notification fan-out when Addr is set.
type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type HistoryConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

// AdminConfig is the manager account seeded on first start.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production"
}

// Load reads .env (if any) and then the environment. Keys map to variables by
// upper-casing and replacing dots: db.dsn is DB_DSN.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.max_open_conns", 50)
	v.SetDefault("session.secret", "")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("history.window_days", 30)
	v.SetDefault("admin.email", "admin@tracker.local")
	v.SetDefault("admin.password", "Admin123!")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.History.WindowDays <= 0 {
		return fmt.Errorf("HISTORY_WINDOW_DAYS must be positive, got %d", c.History.WindowDays)
	}
	return nil
}
