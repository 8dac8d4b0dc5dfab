package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type SubmissionConfig struct {
	MaxRetries      int           `mapstructure:"max-retries"`
	BaseRetryDelay  time.Duration `mapstructure:"base-retry-delay"`
	ClaimValidity   time.Duration `mapstructure:"claim-validity"`
	RequestValidity time.Duration `mapstructure:"request-validity"`
	// How far a claim or request may be dated ahead of the local clock
	ClockSkew       time.Duration `mapstructure:"clock-skew"`
	StatusRetention time.Duration `mapstructure:"status-retention"`
	AttemptTimeout  time.Duration `mapstructure:"attempt-timeout"`
}

func (cfg *SubmissionConfig) Validate() error {
	if cfg.MaxRetries < 0 {
		return errors.New("max-retries cannot be negative")
	}

	if cfg.BaseRetryDelay <= 0 {
		return errors.New("base-retry-delay must be positive")
	}

	if cfg.ClaimValidity <= 0 {
		return errors.New("claim-validity must be positive")
	}

	if cfg.RequestValidity <= 0 {
		return errors.New("request-validity must be positive")
	}

	if cfg.ClockSkew < 0 {
		return errors.New("clock-skew cannot be negative")
	}

	if cfg.StatusRetention <= 0 {
		return errors.New("status-retention must be positive")
	}

	if cfg.AttemptTimeout <= 0 {
		return errors.New("attempt-timeout must be positive")
	}

	return nil
}

// RetryDelay is the backoff before the attempt following retryCount failed retries.
func (cfg *SubmissionConfig) RetryDelay(retryCount int) time.Duration {
	return cfg.BaseRetryDelay * time.Duration(retryCount+1)
}

func DefaultSubmissionConfig() SubmissionConfig {
	return SubmissionConfig{
		MaxRetries:      3,
		BaseRetryDelay:  5 * time.Second,
		ClaimValidity:   5 * time.Minute,
		RequestValidity: 5 * time.Minute,
		ClockSkew:       30 * time.Second,
		StatusRetention: 24 * time.Hour,
		AttemptTimeout:  2 * time.Minute,
	}
}

func setSubmissionDefaults(v *viper.Viper) {
	defaults := DefaultSubmissionConfig()
	v.SetDefault("submission.max-retries", defaults.MaxRetries)
	v.SetDefault("submission.base-retry-delay", defaults.BaseRetryDelay)
	v.SetDefault("submission.claim-validity", defaults.ClaimValidity)
	v.SetDefault("submission.request-validity", defaults.RequestValidity)
	v.SetDefault("submission.clock-skew", defaults.ClockSkew)
	v.SetDefault("submission.status-retention", defaults.StatusRetention)
	v.SetDefault("submission.attempt-timeout", defaults.AttemptTimeout)
}
