package config

import (
	"errors"
	"time"
)

type LedgerConfig struct {
	RpcURL  string `mapstructure:"rpc-url"`
	ChainID int64  `mapstructure:"chain-id"`
	// Upper bound for a single RPC round trip
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	// Upper bound for a transaction to be included in a block
	InclusionTimeout time.Duration `mapstructure:"inclusion-timeout"`
	// Applied on top of the node's gas estimate
	GasLimitMultiplier float64 `mapstructure:"gas-limit-multiplier"`
}

func (cfg *LedgerConfig) Validate() error {
	if cfg.RpcURL == "" {
		return errors.New("ledger rpc-url cannot be empty")
	}

	if err := validateHttpURL(cfg.RpcURL); err != nil {
		return err
	}

	if cfg.ChainID <= 0 {
		return errors.New("ledger chain-id must be greater than 0")
	}

	if cfg.RequestTimeout <= 0 {
		return errors.New("ledger request-timeout must be positive")
	}

	if cfg.InclusionTimeout <= 0 {
		return errors.New("ledger inclusion-timeout must be positive")
	}

	if cfg.GasLimitMultiplier < 1 {
		return errors.New("ledger gas-limit-multiplier cannot be smaller than 1")
	}

	return nil
}
