package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const (
	mongoScheme    = "mongodb"
	mongoSrvScheme = "mongodb+srv"
)

// DbConfig points at the mongo instance that keeps submission snapshots
// and unresolved divergences across restarts.
type DbConfig struct {
	DbName  string `mapstructure:"db-name"`
	Address string `mapstructure:"address"`
	// Zero leaves the driver default
	MaxPoolSize    uint64        `mapstructure:"max-pool-size"`
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Address == "" {
		return errors.New("missing db address")
	}
	if cfg.DbName == "" {
		return errors.New("missing db name")
	}

	u, err := url.Parse(cfg.Address)
	if err != nil {
		return fmt.Errorf("invalid db address: %w", err)
	}
	switch u.Scheme {
	case mongoScheme:
		if u.Host == "" {
			return errors.New("missing host in db address")
		}
	case mongoSrvScheme:
		if u.Host == "" || u.Port() != "" {
			return errors.New("srv db address needs a host without port")
		}
	default:
		return fmt.Errorf("unsupported db scheme: %s", u.Scheme)
	}

	if cfg.ConnectTimeout < 0 {
		return errors.New("db connect timeout cannot be negative")
	}
	return nil
}
