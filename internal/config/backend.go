package config

import (
	"errors"
	"net/url"
)

type BackendConfig struct {
	// Ordered list of base URLs, the resolver fails over to the next one on error
	Endpoints []string `mapstructure:"endpoints"`
	// Request timeout in milliseconds
	Timeout int `mapstructure:"timeout"`
}

func (cfg *BackendConfig) Validate() error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("backend endpoints cannot be empty")
	}

	if cfg.Timeout <= 0 {
		return errors.New("timeout cannot be smaller or equal to 0")
	}

	for _, endpoint := range cfg.Endpoints {
		if err := validateHttpURL(endpoint); err != nil {
			return err
		}
	}

	return nil
}

func validateHttpURL(rawURL string) error {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return errors.New("invalid url: " + rawURL)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url must start with http or https: " + rawURL)
	}

	return nil
}
