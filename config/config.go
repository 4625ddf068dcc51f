package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Billing   BillingConfig   `yaml:"billing"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Seed      SeedConfig      `yaml:"seed"`
}

type ServerConfig struct {
	Port            string   `yaml:"port"`
	Mode            string   `yaml:"mode"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimit       float64  `yaml:"rate_limit"`
	RateBurst       int      `yaml:"rate_burst"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_seconds"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
	LogQueries      bool   `yaml:"log_queries"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type BillingConfig struct {
	TaxRate float64 `yaml:"tax_rate"`
	DueDays int     `yaml:"due_days"`
}

type SchedulerConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ReportCron string `yaml:"report_cron"`
	NoShowCron string `yaml:"no_show_cron"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type SeedConfig struct {
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
	AdminName     string `yaml:"admin_name"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimit:       50,
			RateBurst:       100,
			TrustedProxies:  []string{"127.0.0.1"},
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "data/hotel.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30,
		},
		Auth: AuthConfig{ExpiryHours: 24},
		SMTP: SMTPConfig{Port: 587},
		Billing: BillingConfig{
			TaxRate: 0.10,
			DueDays: 7,
		},
		Scheduler: SchedulerConfig{
			Enabled:    true,
			ReportCron: "5 0 * * *",
			NoShowCron: "0 * * * *",
		},
		Log: LogConfig{Level: "info"},
		Seed: SeedConfig{
			AdminEmail: "admin@hotel.local",
			AdminName:  "Administrator",
		},
	}
}

// Load reads an optional YAML file and then applies environment overrides.
// ${VAR} placeholders inside the file are expanded before parsing.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			expanded := os.ExpandEnv(string(raw))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Server.Mode, "GIN_MODE")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.DSN, "DB_DSN")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setInt(&cfg.Auth.ExpiryHours, "JWT_EXPIRY_HOURS")
	setString(&cfg.Redis.Address, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.SMTP.Port, "SMTP_PORT")
	setString(&cfg.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.SMTP.From, "SMTP_FROM")
	if v := os.Getenv("TAX_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Billing.TaxRate = f
		}
	}
	setString(&cfg.Scheduler.ReportCron, "REPORT_CRON")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Seed.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.Seed.AdminPassword, "ADMIN_PASSWORD")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.Billing.TaxRate < 0 || c.Billing.TaxRate >= 1 {
		return fmt.Errorf("tax rate must be in [0, 1), got %v", c.Billing.TaxRate)
	}
	if c.Scheduler.Enabled {
		for _, expr := range []string{c.Scheduler.ReportCron, c.Scheduler.NoShowCron} {
			if _, err := cron.ParseStandard(expr); err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", expr, err)
			}
		}
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	if c.Auth.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Auth.ExpiryHours) * time.Hour
}

func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != ""
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
