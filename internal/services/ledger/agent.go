package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	ledgerclient "github.com/ballotchain/vote-submission-service/internal/clients/ledger"
	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ballotchain/vote-submission-service/internal/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// ElectionDirectory resolves an election id to its ledger contract.
type ElectionDirectory interface {
	GetElection(ctx context.Context, electionID string) (*backend.ElectionResponse, *types.Error)
}

type CommitResult struct {
	TxHash             string
	BlockNumber        uint64
	RegistrationTxHash string
}

// Committed reports whether the vote transaction was mined.
func (r *CommitResult) Committed() bool {
	return r != nil && r.TxHash != "" && r.BlockNumber > 0
}

type CommitAgent struct {
	elections ElectionDirectory
	ledger    ledgerclient.LedgerClient
}

func NewCommitAgent(elections ElectionDirectory, ledger ledgerclient.LedgerClient) *CommitAgent {
	return &CommitAgent{elections: elections, ledger: ledger}
}

// Commit casts the vote on the ledger. The duplicate-vote check and the
// registration always complete before the vote transaction is sent.
//
// priorTxHash is the vote transaction broadcast by an earlier attempt whose
// inclusion was not observed. When a broadcast succeeds but inclusion cannot be
// observed, the returned result carries the TxHash next to the retryable error.
func (a *CommitAgent) Commit(
	ctx context.Context, req types.SubmissionRequest, priorTxHash string,
) (*CommitResult, *types.SubmissionError) {
	timer := metrics.StartAgentTimer("ledger")
	result, err := a.commit(ctx, req, priorTxHash)
	if err != nil {
		timer(metrics.Error)
		return result, err
	}
	timer(metrics.Success)
	return result, nil
}

func (a *CommitAgent) commit(
	ctx context.Context, req types.SubmissionRequest, priorTxHash string,
) (*CommitResult, *types.SubmissionError) {
	candidateID, ok := utils.ParseCandidateID(req.CandidateID)
	if !ok {
		return nil, types.NewPermanentErrorWithMsg(types.InvalidCandidate, "candidate id must be an unsigned integer")
	}

	contract, subErr := a.resolveContract(ctx, req.ElectionID)
	if subErr != nil {
		return nil, subErr
	}

	if req.WalletSecret == "" {
		return nil, types.NewPermanentErrorWithMsg(types.IdentityUnavailable, "no wallet secret for voter")
	}
	identity, err := a.ledger.ConnectIdentity(req.WalletSecret)
	if err != nil {
		return nil, types.NewPermanentError(types.IdentityUnavailable, err)
	}
	logger := log.Ctx(ctx).With().Str("contract", contract.Hex()).Str("address", identity.String()).Logger()

	info, err := a.ledger.GetElectionInfo(ctx, contract)
	if err != nil {
		return nil, types.NewRetryableError(types.LedgerUnavailable, err)
	}
	if !info.AcceptsVotes() {
		return nil, types.NewPermanentErrorWithMsg(types.ElectionClosed, "election is not accepting votes")
	}

	prior, subErr := a.lookupPriorCommit(ctx, priorTxHash)
	if subErr != nil || prior != nil {
		return prior, subErr
	}

	committed, err := a.ledger.HasCommitted(ctx, contract, identity.Address)
	if err != nil {
		return nil, types.NewRetryableError(types.LedgerUnavailable, err)
	}
	if committed {
		logger.Info().Msg("ledger already holds a vote for this identity")
		return nil, types.NewPermanentErrorWithMsg(types.AlreadyVoted, "a vote is already recorded on the ledger")
	}

	registrationTxHash, subErr := a.ensureRegistered(ctx, contract, identity)
	if subErr != nil {
		return nil, subErr
	}

	tx := a.ledger.CommitVote(ctx, contract, candidateID, identity)
	if tx.Reverted {
		return nil, types.NewPermanentError(types.CommitRejected, tx.Err)
	}
	if !tx.Success {
		if tx.TxHash != "" {
			logger.Warn().Str("txHash", tx.TxHash).Err(tx.Err).Msg("vote broadcast but inclusion not observed")
			return &CommitResult{TxHash: tx.TxHash, RegistrationTxHash: registrationTxHash},
				types.NewRetryableError(types.LedgerCongested, tx.Err)
		}
		return nil, types.NewRetryableError(types.LedgerCongested, tx.Err)
	}

	logger.Info().Str("txHash", tx.TxHash).Uint64("blockNumber", tx.BlockNumber).Msg("vote committed")
	return &CommitResult{
		TxHash:             tx.TxHash,
		BlockNumber:        tx.BlockNumber,
		RegistrationTxHash: registrationTxHash,
	}, nil
}

func (a *CommitAgent) resolveContract(ctx context.Context, electionID string) (common.Address, *types.SubmissionError) {
	election, err := a.elections.GetElection(ctx, electionID)
	if err != nil {
		if err.StatusCode == http.StatusNotFound {
			return common.Address{}, types.NewPermanentError(types.ElectionNotFound, err)
		}
		if err.IsTransient() {
			return common.Address{}, types.NewRetryableError(types.ElectionUnavailable, err)
		}
		return common.Address{}, types.NewPermanentError(types.ElectionUnavailable, err)
	}
	if !utils.IsValidContractAddress(election.ContractAddress) {
		return common.Address{}, types.NewPermanentErrorWithMsg(
			types.ElectionUnavailable, fmt.Sprintf("election %s has no valid contract address", electionID),
		)
	}
	return common.HexToAddress(election.ContractAddress), nil
}

// lookupPriorCommit returns a result when the earlier broadcast was mined.
// A reverted earlier broadcast falls through to the normal path.
func (a *CommitAgent) lookupPriorCommit(ctx context.Context, priorTxHash string) (*CommitResult, *types.SubmissionError) {
	if priorTxHash == "" {
		return nil, nil
	}
	if !utils.IsValidTxHash(priorTxHash) {
		return nil, types.NewPermanentErrorWithMsg(types.CommitRejected, "malformed prior vote transaction hash")
	}
	receipt, err := a.ledger.GetReceipt(ctx, priorTxHash)
	if err != nil {
		return nil, types.NewRetryableError(types.LedgerUnavailable, err)
	}
	if receipt == nil {
		// Still unknown to the node, sending another vote could land twice
		return &CommitResult{TxHash: priorTxHash}, types.NewRetryableError(
			types.LedgerCongested, fmt.Errorf("vote transaction %s is not mined yet", priorTxHash),
		)
	}
	if receipt.Success {
		log.Ctx(ctx).Info().Str("txHash", receipt.TxHash).Msg("earlier vote broadcast was mined")
		return &CommitResult{TxHash: receipt.TxHash, BlockNumber: receipt.BlockNumber}, nil
	}
	log.Ctx(ctx).Warn().Str("txHash", priorTxHash).Msg("earlier vote broadcast reverted")
	return nil, nil
}

func (a *CommitAgent) ensureRegistered(
	ctx context.Context, contract common.Address, identity *ledgerclient.Identity,
) (string, *types.SubmissionError) {
	registered, err := a.ledger.IsRegistered(ctx, contract, identity.Address)
	if err != nil {
		return "", types.NewRetryableError(types.AlreadyRegisteredCheckFailed, err)
	}
	if registered {
		return "", nil
	}

	tx := a.ledger.Register(ctx, contract, identity)
	if tx.Success {
		return tx.TxHash, nil
	}
	if tx.Reverted {
		// An earlier attempt's registration may have landed in the meantime
		registered, checkErr := a.ledger.IsRegistered(ctx, contract, identity.Address)
		if checkErr == nil && registered {
			return "", nil
		}
		return "", types.NewPermanentError(types.RegistrationRejected, tx.Err)
	}
	if tx.Err == nil {
		tx.Err = errors.New("registration was not included")
	}
	return "", types.NewRetryableError(types.RegistrationFailed, tx.Err)
}
