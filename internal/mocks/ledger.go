package mocks

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	ledgerclient "github.com/ballotchain/vote-submission-service/internal/clients/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Ledger call names recorded in FakeLedger.Calls
const (
	CallIsRegistered = "isRegistered"
	CallHasCommitted = "hasCommitted"
	CallRegister     = "register"
	CallCommitVote   = "commitVote"
	CallGetReceipt   = "getReceipt"
)

// FakeLedger is an in-memory election contract that records every call in
// order. Failure knobs are consumed one call at a time.
type FakeLedger struct {
	mu sync.Mutex

	Registered map[common.Address]bool
	Committed  map[common.Address]bool
	Votes      map[common.Address]*big.Int
	receipts   map[string]*ledgerclient.TxResult
	block      uint64
	txCount    int

	Calls []string

	ElectionClosed bool
	// Queries fail while > 0
	HasCommittedErrors int
	IsRegisteredErrors int
	// Register broadcasts fail while > 0
	RegisterFailures int
	RegisterReverts  bool
	// CommitVote fails before broadcast while > 0
	CommitFailures int
	// CommitVote is mined but its inclusion is not observed while > 0
	CommitUnobserved int
	// CommitVote is accepted and mined but the broadcast reply is lost while > 0
	CommitReplyLost int
	CommitReverts   bool
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		Registered: make(map[common.Address]bool),
		Committed:  make(map[common.Address]bool),
		Votes:      make(map[common.Address]*big.Int),
		receipts:   make(map[string]*ledgerclient.TxResult),
		block:      1000,
	}
}

func (f *FakeLedger) ConnectIdentity(secret string) (*ledgerclient.Identity, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(secret, "0x"))
	if err != nil {
		return nil, errors.New("wallet secret is not a valid private key")
	}
	return &ledgerclient.Identity{Address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

func (f *FakeLedger) IsRegistered(_ context.Context, _, voter common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallIsRegistered)
	if f.IsRegisteredErrors > 0 {
		f.IsRegisteredErrors--
		return false, errors.New("rpc timeout")
	}
	return f.Registered[voter], nil
}

func (f *FakeLedger) HasCommitted(_ context.Context, _, voter common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallHasCommitted)
	if f.HasCommittedErrors > 0 {
		f.HasCommittedErrors--
		return false, errors.New("rpc timeout")
	}
	return f.Committed[voter], nil
}

func (f *FakeLedger) Register(_ context.Context, _ common.Address, identity *ledgerclient.Identity) *ledgerclient.TxResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallRegister)
	if f.RegisterReverts || f.Registered[identity.Address] {
		return &ledgerclient.TxResult{Reverted: true, Err: errors.New("execution reverted: registration refused")}
	}
	if f.RegisterFailures > 0 {
		f.RegisterFailures--
		return &ledgerclient.TxResult{Err: errors.New("replacement transaction underpriced")}
	}
	f.Registered[identity.Address] = true
	return f.mine()
}

func (f *FakeLedger) CommitVote(
	_ context.Context, _ common.Address, candidateID *big.Int, identity *ledgerclient.Identity,
) *ledgerclient.TxResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallCommitVote)
	if f.CommitReverts || !f.Registered[identity.Address] || f.Committed[identity.Address] {
		return &ledgerclient.TxResult{Reverted: true, Err: errors.New("execution reverted: vote refused")}
	}
	if f.CommitFailures > 0 {
		f.CommitFailures--
		return &ledgerclient.TxResult{Err: errors.New("txpool is full")}
	}
	f.Committed[identity.Address] = true
	f.Votes[identity.Address] = new(big.Int).Set(candidateID)
	result := f.mine()
	if f.CommitUnobserved > 0 {
		f.CommitUnobserved--
		return &ledgerclient.TxResult{TxHash: result.TxHash, Err: context.DeadlineExceeded}
	}
	if f.CommitReplyLost > 0 {
		f.CommitReplyLost--
		return &ledgerclient.TxResult{
			TxHash: result.TxHash,
			Err:    fmt.Errorf("failed to broadcast transaction: %w", context.DeadlineExceeded),
		}
	}
	return result
}

func (f *FakeLedger) GetReceipt(_ context.Context, txHash string) (*ledgerclient.TxResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, CallGetReceipt)
	receipt, ok := f.receipts[txHash]
	if !ok {
		return nil, nil
	}
	copied := *receipt
	return &copied, nil
}

func (f *FakeLedger) GetElectionInfo(context.Context, common.Address) (*ledgerclient.ElectionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &ledgerclient.ElectionInfo{
		Title:    "Test election",
		IsActive: !f.ElectionClosed,
	}, nil
}

func (f *FakeLedger) Ping(context.Context) error {
	return nil
}

// TxCount is the number of transactions that reached the chain.
func (f *FakeLedger) TxCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txCount
}

func (f *FakeLedger) CallTrace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *FakeLedger) CountCalls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.Calls {
		if call == name {
			count++
		}
	}
	return count
}

func (f *FakeLedger) mine() *ledgerclient.TxResult {
	f.block++
	f.txCount++
	hash := common.BigToHash(new(big.Int).SetUint64(f.block))
	result := &ledgerclient.TxResult{
		Success:     true,
		TxHash:      hash.Hex(),
		BlockNumber: f.block,
	}
	f.receipts[result.TxHash] = result
	return result
}

var _ ledgerclient.LedgerClient = (*FakeLedger)(nil)
