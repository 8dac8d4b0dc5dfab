package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

// ServerConfig configures the device-local HTTP API the voting client talks to.
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	WriteTimeout   time.Duration `mapstructure:"write-timeout"`
	ReadTimeout    time.Duration `mapstructure:"read-timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle-timeout"`
	AllowedOrigins []string      `mapstructure:"allowed-origins"`
	LogLevel       string        `mapstructure:"log-level"`
	// Request bodies above this many bytes are refused with 413
	MaxContentLength int64 `mapstructure:"max-content-length"`
	// Seconds between health checks, also drives status cache pruning
	HealthCheckInterval int `mapstructure:"health-check-interval"`
	// Grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

func (cfg *ServerConfig) Validate() error {
	if ip := net.ParseIP(cfg.Host); ip == nil {
		return fmt.Errorf("invalid host: %v", cfg.Host)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return errors.New("invalid port")
	}
	if cfg.WriteTimeout < 0 || cfg.ReadTimeout < 0 || cfg.IdleTimeout < 0 {
		return errors.New("server timeouts cannot be negative")
	}
	if cfg.MaxContentLength <= 0 {
		return errors.New("max content length must be a positive integer")
	}
	if cfg.HealthCheckInterval <= 0 {
		return errors.New("health check interval must be a positive integer")
	}
	if cfg.ShutdownTimeout < 0 {
		return errors.New("shutdown timeout cannot be negative")
	}

	return cfg.ValidateServerLogLevel()
}

func (cfg *ServerConfig) GetShutdownTimeout() time.Duration {
	if cfg.ShutdownTimeout == 0 {
		return defaultShutdownTimeout
	}
	return cfg.ShutdownTimeout
}

func (cfg *ServerConfig) ValidateServerLogLevel() error {
	// Empty keeps the global zerolog level
	if cfg.LogLevel == "" {
		return nil
	}

	parsedLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if parsedLevel < zerolog.DebugLevel || parsedLevel > zerolog.FatalLevel {
		return errors.New("only log levels from debug to fatal are supported")
	}
	return nil
}
