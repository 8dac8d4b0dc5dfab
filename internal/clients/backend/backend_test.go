package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(endpoints ...string) *BackendClient {
	return NewBackendClient(&config.BackendConfig{Endpoints: endpoints, Timeout: 1000}, nil)
}

func TestGetElection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/elections/e-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ElectionResponse{
			ID: "e-1", ContractAddress: "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		})
	}))
	defer server.Close()

	election, err := newTestClient(server.URL).GetElection(context.Background(), "e-1")
	require.Nil(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", election.ContractAddress)
}

func TestGetUserProfileSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(UserProfileResponse{ID: "voter-1", EncryptedPrivateKey: "abc"})
	}))
	defer server.Close()

	profile, err := newTestClient(server.URL).GetUserProfile(context.Background(), "token-1")
	require.Nil(t, err)
	assert.Equal(t, "abc", profile.EncryptedPrivateKey)
}

func TestGetVoteHistoryQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "e-1", r.URL.Query().Get("electionId"))
		assert.Equal(t, "voter-1", r.URL.Query().Get("voterId"))
		_ = json.NewEncoder(w).Encode(VoteHistoryResponse{HasVoted: true})
	}))
	defer server.Close()

	history, err := newTestClient(server.URL).GetVoteHistory(context.Background(), "e-1", "voter-1")
	require.Nil(t, err)
	assert.True(t, history.HasVoted)
}

func TestConfirmVoteFailsOverOnServerError(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmVoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0xabc", req.TxHash)
		_ = json.NewEncoder(w).Encode(ConfirmVoteResponse{ConfirmationID: "conf-1"})
	}))
	defer up.Close()

	client := newTestClient(down.URL, up.URL)
	req := &ConfirmVoteRequest{ElectionID: "e-1", VoterID: "voter-1", TxHash: "0xabc"}

	_, err := client.ConfirmVote(context.Background(), req)
	require.NotNil(t, err)
	assert.True(t, err.IsTransient())
	assert.Equal(t, up.URL, client.GetBaseURL())

	resp, err := client.ConfirmVote(context.Background(), req)
	require.Nil(t, err)
	assert.Equal(t, "conf-1", resp.ConfirmationID)
}

func TestConfirmVoteClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ConfirmVote(context.Background(), &ConfirmVoteRequest{})
	require.NotNil(t, err)
	assert.Equal(t, types.BadRequest, err.ErrorCode)
	assert.False(t, err.IsTransient())
}
