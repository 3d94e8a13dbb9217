// Package config loads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/helpdesk/internal/notify"
)

// DefaultEnvFile is read when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

// Config holds the server configuration.
type Config struct {
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	Dev            bool   `env:"DEV" envDefault:"false"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	// Mail relay; without SMTPPassword notifications are skipped.
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	SMTPHost      string        `env:"SMTP_HOST" envDefault:"smtp.yandex.ru"`
	SMTPPort      int           `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser      string        `env:"SMTP_USER"`
	SMTPPassword  string        `env:"SMTP_PASSWORD"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// SessionSweepSchedule is a cron spec for purging expired sessions; "off" disables it.
	SessionSweepSchedule string `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@hourly"`
}

// SweepOff disables the session sweeper.
const SweepOff = "off"

// Load reads envFile (values already present in the process environment win)
// and then parses the environment.
func Load(envFile string) (*Config, error) {
	environ := env.ToMap(os.Environ())
	if envFile != "" {
		fileVals, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist) && envFile == DefaultEnvFile:
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range fileVals {
			if _, set := environ[k]; !set {
				environ[k] = v
			}
		}
	}
	return Parse(environ)
}

// Parse builds a Config from an explicit variable set.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.SMTPUser == "" {
		cfg.SMTPUser = cfg.AdminEmail
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT out of range: %d", c.SMTPPort)
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("NOTIFY_TIMEOUT must be positive, got %s", c.NotifyTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must not be empty")
	}
	if c.SweepEnabled() {
		if _, err := cron.ParseStandard(c.SessionSweepSchedule); err != nil {
			return fmt.Errorf("SESSION_SWEEP_SCHEDULE: %w", err)
		}
	}
	return nil
}

// SweepEnabled reports whether expired sessions are purged periodically.
func (c *Config) SweepEnabled() bool {
	return c.SessionSweepSchedule != SweepOff
}

// Level returns the parsed log level.
func (c *Config) Level() zapcore.Level {
	lvl, _ := zapcore.ParseLevel(c.LogLevel)
	return lvl
}

// SMTP returns the mail relay settings.
func (c *Config) SMTP() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		Admin:    c.AdminEmail,
	}
}

// AllowAllOrigins reports whether CORS is fully permissive.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}
