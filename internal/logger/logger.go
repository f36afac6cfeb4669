// Package logger builds the root zerolog logger for the demo binary. SDK
// packages never construct loggers themselves; they take an injected
// zerolog.Logger and default to a disabled one.
package logger

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Config struct {
	Level          string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format         string `mapstructure:"format" validate:"oneof=json console"`
	Env            string `mapstructure:"env" validate:"oneof=dev staging prod"`
	TimeField      string `mapstructure:"timeField"`
	TimeFormat     string `mapstructure:"timeFormat"`
	ServiceName    string `mapstructure:"serviceName"`
	ServiceVersion string `mapstructure:"serviceVersion"`
	WithCaller     bool   `mapstructure:"withCaller"`
}

func New(cfg *Config) (logger zerolog.Logger, err error) {
	cfg.setDefaults()

	v := validator.New()
	if err = v.Struct(cfg); err != nil {
		return logger, fmt.Errorf("logger config validation error: %w", err)
	}

	zerolog.TimestampFieldName = cfg.TimeField
	zerolog.TimeFieldFormat = cfg.TimeFormat

	// console for humans in dev, JSON on stdout everywhere else
	writer := zerolog.New(os.Stdout)
	if cfg.Env == "dev" && cfg.Format == "console" {
		writer = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}

	logger = writer.With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("env", cfg.Env).
		Logger()

	if cfg.WithCaller {
		logger = logger.With().Caller().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return logger, err
	}
	zerolog.SetGlobalLevel(level)

	return logger, nil
}

func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}
	if c.Level == "" {
		if c.Env == "dev" {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}
	if c.Format == "" {
		if c.Env == "dev" {
			c.Format = "console"
		} else {
			c.Format = "json"
		}
	}
	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = zerolog.TimeFormatUnixMs
	}
	if c.ServiceName == "" {
		c.ServiceName = "labhub-go"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.0.1"
	}
	if !c.WithCaller && c.Env == "dev" {
		c.WithCaller = true
	}
}
