package clients

import (
	"context"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/clients/biometric"
	"github.com/ballotchain/vote-submission-service/internal/clients/ledger"
	"github.com/ballotchain/vote-submission-service/internal/config"
)

type Clients struct {
	Backend   *backend.BackendClient
	Biometric *biometric.BridgeClient
	Ledger    ledger.LedgerClient
}

func New(ctx context.Context, cfg *config.Config) (*Clients, error) {
	backendClient := backend.NewBackendClient(&cfg.Backend, nil)
	bridgeClient := biometric.NewBridgeClient(&cfg.Biometric)

	ledgerClient, err := ledger.NewEthClient(ctx, &cfg.Ledger)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Backend:   backendClient,
		Biometric: bridgeClient,
		Ledger:    ledgerClient,
	}, nil
}
