package config

import (
	"errors"
)

type BiometricConfig struct {
	// Local bridge exposing the device sensor
	BridgeURL  string `mapstructure:"bridge-url"`
	Timeout    int    `mapstructure:"timeout"`
	DeviceID   string `mapstructure:"device-id"`
	PromptText string `mapstructure:"prompt-text"`
}

func (cfg *BiometricConfig) Validate() error {
	if cfg.BridgeURL == "" {
		return errors.New("biometric bridge-url cannot be empty")
	}

	if err := validateHttpURL(cfg.BridgeURL); err != nil {
		return err
	}

	// The bridge waits on the user, so the timeout has to cover the prompt
	if cfg.Timeout <= 0 {
		return errors.New("timeout cannot be smaller or equal to 0")
	}

	if cfg.DeviceID == "" {
		return errors.New("biometric device-id cannot be empty")
	}

	return nil
}

func (cfg *BiometricConfig) GetPromptText() string {
	if cfg.PromptText == "" {
		return "Authenticate to cast your vote"
	}
	return cfg.PromptText
}
