package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	baseclient "github.com/ballotchain/vote-submission-service/internal/clients/base"
	"github.com/ballotchain/vote-submission-service/internal/clients/resolver"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/types"
)

type ElectionResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ContractAddress string `json:"contractAddress"`
}

type UserProfileResponse struct {
	ID                  string `json:"id"`
	WalletAddress       string `json:"walletAddress"`
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
}

type VoteHistoryResponse struct {
	HasVoted bool   `json:"hasVoted"`
	TxHash   string `json:"txHash,omitempty"`
}

type ConfirmVoteRequest struct {
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
	VoterID     string `json:"voterId"`
	TxHash      string `json:"txHash"`
	Timestamp   string `json:"timestamp"`
}

type ConfirmVoteResponse struct {
	ConfirmationID string `json:"confirmationId"`
}

type BackendClient struct {
	config        *config.BackendConfig
	resolver      resolver.EndpointResolver
	httpClient    *http.Client
	defaultHeader map[string]string
}

func NewBackendClient(cfg *config.BackendConfig, endpointResolver resolver.EndpointResolver) *BackendClient {
	if endpointResolver == nil {
		endpointResolver = resolver.NewFailoverResolver(cfg.Endpoints)
	}
	return &BackendClient{
		config:     cfg,
		resolver:   endpointResolver,
		httpClient: &http.Client{},
		defaultHeader: map[string]string{
			"Accept": "application/json",
		},
	}
}

// Necessary for the BaseClient interface
func (c *BackendClient) GetBaseURL() string {
	return c.resolver.BaseURL()
}

func (c *BackendClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *BackendClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *BackendClient) ReportEndpointFailure(baseURL string) {
	c.resolver.ReportFailure(baseURL)
}

func (c *BackendClient) GetElection(ctx context.Context, electionID string) (*ElectionResponse, *types.Error) {
	opts := &baseclient.BaseClientOptions{
		Path:      fmt.Sprintf("/elections/%s", url.PathEscape(electionID)),
		Headers:   c.defaultHeader,
		Operation: "backend_get_election",
	}
	return baseclient.SendRequest[any, ElectionResponse](ctx, c, http.MethodGet, opts, nil)
}

func (c *BackendClient) GetUserProfile(ctx context.Context, authToken string) (*UserProfileResponse, *types.Error) {
	headers := c.headersWith(map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", authToken),
	})
	opts := &baseclient.BaseClientOptions{
		Path:      "/users/profile",
		Headers:   headers,
		Operation: "backend_get_user_profile",
	}
	return baseclient.SendRequest[any, UserProfileResponse](ctx, c, http.MethodGet, opts, nil)
}

func (c *BackendClient) GetVoteHistory(
	ctx context.Context, electionID, voterID string,
) (*VoteHistoryResponse, *types.Error) {
	query := url.Values{}
	query.Set("electionId", electionID)
	query.Set("voterId", voterID)
	opts := &baseclient.BaseClientOptions{
		Path:      "/votes/history?" + query.Encode(),
		Headers:   c.defaultHeader,
		Operation: "backend_get_vote_history",
	}
	return baseclient.SendRequest[any, VoteHistoryResponse](ctx, c, http.MethodGet, opts, nil)
}

func (c *BackendClient) ConfirmVote(
	ctx context.Context, req *ConfirmVoteRequest,
) (*ConfirmVoteResponse, *types.Error) {
	opts := &baseclient.BaseClientOptions{
		Path:      "/votes/confirm",
		Headers:   c.defaultHeader,
		Operation: "backend_confirm_vote",
	}
	return baseclient.SendRequest[ConfirmVoteRequest, ConfirmVoteResponse](
		ctx, c, http.MethodPost, opts, req,
	)
}

func (c *BackendClient) headersWith(extra map[string]string) map[string]string {
	headers := make(map[string]string, len(c.defaultHeader)+len(extra))
	for k, v := range c.defaultHeader {
		headers[k] = v
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}
