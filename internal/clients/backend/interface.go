package backend

import (
	"context"
	"net/http"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

type BackendClientInterface interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
	// GetElection returns the election metadata including its ledger contract address
	GetElection(ctx context.Context, electionID string) (*ElectionResponse, *types.Error)
	// GetUserProfile returns the wallet material of the user owning the bearer token
	GetUserProfile(ctx context.Context, authToken string) (*UserProfileResponse, *types.Error)
	GetVoteHistory(ctx context.Context, electionID, voterID string) (*VoteHistoryResponse, *types.Error)
	// ConfirmVote is expected to be deduplicated by the backend on (electionId, voterId, txHash)
	ConfirmVote(ctx context.Context, req *ConfirmVoteRequest) (*ConfirmVoteResponse, *types.Error)
}
