package config

import (
	"github.com/labhub-io/labhub-go/internal/logger"
)

// Config is the demo binary's file-based configuration.
type Config struct {
	Logger logger.Config `mapstructure:"logger"`
	API    APIConfig     `mapstructure:"api"`
}

// APIConfig holds the connection settings handed to the SDK client.
type APIConfig struct {
	Address        string `mapstructure:"address"`
	Key            string `mapstructure:"key"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	MaxRetries     int    `mapstructure:"maxRetries"`
	PageSize       int    `mapstructure:"pageSize"`
}
