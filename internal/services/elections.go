package services

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ballotchain/vote-submission-service/internal/utils"
)

type ElectionInfoPublic struct {
	ElectionID      string `json:"election_id"`
	Title           string `json:"title"`
	ContractAddress string `json:"contract_address"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	IsActive        bool   `json:"is_active"`
	IsFinalized     bool   `json:"is_finalized"`
	AcceptsVotes    bool   `json:"accepts_votes"`
}

// GetElectionInfo reads the election state from its ledger contract.
func (s *Services) GetElectionInfo(ctx context.Context, electionID string) (*ElectionInfoPublic, *types.Error) {
	election, err := s.Clients.Backend.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !utils.IsValidContractAddress(election.ContractAddress) {
		return nil, types.NewErrorWithMsg(
			http.StatusUnprocessableEntity, types.BadRequest, "election has no ledger contract",
		)
	}

	contract := common.HexToAddress(election.ContractAddress)
	info, ledgerErr := s.Clients.Ledger.GetElectionInfo(ctx, contract)
	if ledgerErr != nil {
		log.Ctx(ctx).Error().Err(ledgerErr).Str("electionId", electionID).Msg("error while reading election from ledger")
		return nil, types.NewError(http.StatusServiceUnavailable, types.ServiceUnavailable, ledgerErr)
	}

	view := &ElectionInfoPublic{
		ElectionID:      electionID,
		Title:           info.Title,
		ContractAddress: contract.Hex(),
		IsActive:        info.IsActive,
		IsFinalized:     info.IsFinalized,
		AcceptsVotes:    info.AcceptsVotes(),
	}
	if view.Title == "" {
		view.Title = election.Title
	}
	if !info.StartTime.IsZero() {
		view.StartTime = info.StartTime.UTC().Format(time.RFC3339)
	}
	if !info.EndTime.IsZero() {
		view.EndTime = info.EndTime.UTC().Format(time.RFC3339)
	}
	return view, nil
}
