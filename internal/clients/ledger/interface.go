package ledger

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Identity is a voter's ledger account. The private key never leaves this package.
type Identity struct {
	Address common.Address
	key     *ecdsa.PrivateKey
}

func (i *Identity) String() string {
	return i.Address.Hex()
}

// TxResult is the outcome of a state-changing contract call.
// Reverted is set when the chain rejected the call itself, which no retry can fix.
// A non-empty TxHash without Success means the tx was signed and handed to the
// node but its inclusion could not be observed, which includes a broadcast whose
// reply was lost. Such a tx must be looked up, never sent again.
type TxResult struct {
	Success     bool
	TxHash      string
	BlockNumber uint64
	Reverted    bool
	Err         error
}

type ElectionInfo struct {
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsActive    bool      `json:"isActive"`
	IsFinalized bool      `json:"isFinalized"`
}

// AcceptsVotes reports whether the contract would accept a vote right now.
func (e *ElectionInfo) AcceptsVotes() bool {
	return e.IsActive && !e.IsFinalized
}

type LedgerClient interface {
	ConnectIdentity(secret string) (*Identity, error)
	IsRegistered(ctx context.Context, contract, voter common.Address) (bool, error)
	HasCommitted(ctx context.Context, contract, voter common.Address) (bool, error)
	Register(ctx context.Context, contract common.Address, identity *Identity) *TxResult
	CommitVote(ctx context.Context, contract common.Address, candidateID *big.Int, identity *Identity) *TxResult
	// GetReceipt returns nil without error when the tx is not known to the node
	GetReceipt(ctx context.Context, txHash string) (*TxResult, error)
	GetElectionInfo(ctx context.Context, contract common.Address) (*ElectionInfo, error)
	Ping(ctx context.Context) error
}
