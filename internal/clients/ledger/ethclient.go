package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
)

// ChainBackend is the part of ethclient.Client the ledger client relies on.
type ChainBackend interface {
	bind.DeployBackend
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
	HeaderByNumber(ctx context.Context, number *big.Int) (*gethtypes.Header, error)
}

type EthClient struct {
	config  *config.LedgerConfig
	backend ChainBackend
	signer  gethtypes.Signer
}

func NewEthClient(ctx context.Context, cfg *config.LedgerConfig) (*EthClient, error) {
	rpcClient, err := ethclient.DialContext(ctx, cfg.RpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial ledger node at %s: %w", cfg.RpcURL, err)
	}
	return NewEthClientWithBackend(cfg, rpcClient), nil
}

func NewEthClientWithBackend(cfg *config.LedgerConfig, backend ChainBackend) *EthClient {
	return &EthClient{
		config:  cfg,
		backend: backend,
		signer:  gethtypes.LatestSignerForChainID(big.NewInt(cfg.ChainID)),
	}
}

func (c *EthClient) ConnectIdentity(secret string) (*Identity, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(secret), "0x"))
	if err != nil {
		// The parse error may echo key material
		return nil, errors.New("wallet secret is not a valid private key")
	}
	return &Identity{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}, nil
}

func (c *EthClient) IsRegistered(ctx context.Context, contract, voter common.Address) (bool, error) {
	return c.callBool(ctx, contract, methodVoters, voter)
}

func (c *EthClient) HasCommitted(ctx context.Context, contract, voter common.Address) (bool, error) {
	return c.callBool(ctx, contract, methodHasVoted, voter)
}

func (c *EthClient) Register(ctx context.Context, contract common.Address, identity *Identity) *TxResult {
	data, err := electionABI.Pack(methodRegisterVoter, identity.Address)
	if err != nil {
		return &TxResult{Err: err}
	}
	return c.transact(ctx, contract, identity, data)
}

func (c *EthClient) CommitVote(
	ctx context.Context, contract common.Address, candidateID *big.Int, identity *Identity,
) *TxResult {
	data, err := electionABI.Pack(methodVote, candidateID)
	if err != nil {
		return &TxResult{Err: err}
	}
	return c.transact(ctx, contract, identity, data)
}

func (c *EthClient) GetReceipt(ctx context.Context, txHash string) (*TxResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	receipt, err := c.backend.TransactionReceipt(reqCtx, common.HexToHash(txHash))
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return receiptToResult(receipt), nil
}

func (c *EthClient) GetElectionInfo(ctx context.Context, contract common.Address) (*ElectionInfo, error) {
	out, err := c.call(ctx, contract, methodGetElectionInfo)
	if err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected %s output length %d", methodGetElectionInfo, len(out))
	}
	title, okTitle := out[0].(string)
	start, okStart := out[1].(*big.Int)
	end, okEnd := out[2].(*big.Int)
	isActive, okActive := out[3].(bool)
	isFinalized, okFinalized := out[4].(bool)
	if !okTitle || !okStart || !okEnd || !okActive || !okFinalized {
		return nil, fmt.Errorf("unexpected %s output types", methodGetElectionInfo)
	}
	return &ElectionInfo{
		Title:       title,
		StartTime:   time.Unix(start.Int64(), 0).UTC(),
		EndTime:     time.Unix(end.Int64(), 0).UTC(),
		IsActive:    isActive,
		IsFinalized: isFinalized,
	}, nil
}

func (c *EthClient) Ping(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()
	_, err := c.backend.HeaderByNumber(reqCtx, nil)
	return err
}

func (c *EthClient) callBool(ctx context.Context, contract common.Address, method string, args ...interface{}) (bool, error) {
	out, err := c.call(ctx, contract, method, args...)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("unexpected %s output length %d", method, len(out))
	}
	value, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("unexpected %s output type %T", method, out[0])
	}
	return value, nil
}

func (c *EthClient) call(ctx context.Context, contract common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := electionABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	raw, err := c.backend.CallContract(reqCtx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	return electionABI.Unpack(method, raw)
}

func (c *EthClient) transact(ctx context.Context, contract common.Address, identity *Identity, data []byte) *TxResult {
	signed, result := c.signTx(ctx, contract, identity, data)
	if result != nil {
		return result
	}

	txHash := signed.Hash().Hex()
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	err := c.backend.SendTransaction(reqCtx, signed)
	cancel()
	if err != nil {
		err = fmt.Errorf("failed to broadcast transaction: %w", err)
		if isNodeRejection(err) {
			return &TxResult{Err: err}
		}
		// The node may hold the tx even though its reply was lost
		log.Ctx(ctx).Warn().Str("txHash", txHash).Err(err).Msg("transaction broadcast outcome unknown")
		return &TxResult{TxHash: txHash, Err: err}
	}
	log.Ctx(ctx).Debug().Str("txHash", txHash).Msg("transaction broadcast, awaiting inclusion")

	waitCtx, cancel := context.WithTimeout(ctx, c.config.InclusionTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.backend, signed)
	if err != nil {
		return &TxResult{TxHash: txHash, Err: fmt.Errorf("transaction %s not included: %w", txHash, err)}
	}
	return receiptToResult(receipt)
}

func (c *EthClient) signTx(
	ctx context.Context, contract common.Address, identity *Identity, data []byte,
) (*gethtypes.Transaction, *TxResult) {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	nonce, err := c.backend.PendingNonceAt(reqCtx, identity.Address)
	if err != nil {
		return nil, &TxResult{Err: fmt.Errorf("failed to fetch nonce: %w", err)}
	}
	gasPrice, err := c.backend.SuggestGasPrice(reqCtx)
	if err != nil {
		return nil, &TxResult{Err: fmt.Errorf("failed to suggest gas price: %w", err)}
	}
	gas, err := c.backend.EstimateGas(reqCtx, ethereum.CallMsg{
		From: identity.Address, To: &contract, GasPrice: gasPrice, Data: data,
	})
	if err != nil {
		// The node simulates the call to estimate gas, so a revert shows up here
		return nil, &TxResult{Reverted: isRevert(err), Err: fmt.Errorf("failed to estimate gas: %w", err)}
	}
	multiplier := c.config.GasLimitMultiplier
	if multiplier < 1 {
		multiplier = 1
	}

	tx := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &contract,
		Gas:      uint64(float64(gas) * multiplier),
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := gethtypes.SignTx(tx, c.signer, identity.key)
	if err != nil {
		return nil, &TxResult{Err: fmt.Errorf("failed to sign transaction: %w", err)}
	}
	return signed, nil
}

func receiptToResult(receipt *gethtypes.Receipt) *TxResult {
	result := &TxResult{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}
	if receipt.Status != gethtypes.ReceiptStatusSuccessful {
		result.Reverted = true
		result.Err = fmt.Errorf("transaction %s reverted in block %d", result.TxHash, result.BlockNumber)
		return result
	}
	result.Success = true
	return result
}

// isNodeRejection reports whether the node answered the broadcast with an
// error, as opposed to the reply never arriving.
func isNodeRejection(err error) bool {
	var rpcErr rpc.Error
	return errors.As(err, &rpcErr)
}

func isRevert(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
