package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ballotchain/vote-submission-service/internal/api"
	"github.com/ballotchain/vote-submission-service/internal/api/handlers"
	"github.com/ballotchain/vote-submission-service/internal/services"
	"github.com/ballotchain/vote-submission-service/internal/testutil"
)

func doRequest(t *testing.T, method, url, token string, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	var out handlers.PublicResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Data
}

func decodeError(t *testing.T, resp *http.Response) api.ErrorResponse {
	var out api.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func verify(t *testing.T, serverURL string) services.VerificationClaimPublic {
	resp := doRequest(t, http.MethodPost, serverURL+"/v1/biometric/verify", "", handlers.VerifyBiometricRequestPayload{
		VoterID:    testutil.VoterID,
		ElectionID: testutil.ElectionID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[services.VerificationClaimPublic](t, resp)
}

func votePayload(claim services.VerificationClaimPublic, now time.Time) handlers.SubmitVoteRequestPayload {
	return handlers.SubmitVoteRequestPayload{
		ElectionID:        testutil.ElectionID,
		CandidateID:       "1",
		VoterID:           testutil.VoterID,
		VerificationClaim: claim,
		Timestamp:         now.UTC().Format(time.RFC3339Nano),
	}
}

func TestHealthCheck(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, nil)

	resp := doRequest(t, http.MethodGet, server.URL+"/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Server is up and running", decode[string](t, resp))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestSubmitAndPollVote(t *testing.T) {
	server, f := testutil.SetupTestServer(t, nil)
	claim := verify(t, server.URL)

	resp := doRequest(t, http.MethodPost, server.URL+"/v1/votes", testutil.AuthToken, votePayload(claim, f.Scheduler.Now()))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decode[services.SubmissionStatusPublic](t, resp)
	assert.Equal(t, "processing", accepted.Status)
	assert.Equal(t, "/v1/votes/"+accepted.SubmissionID, resp.Header.Get("Location"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := f.Services.Coordinator.Wait(ctx, accepted.SubmissionID)
	require.NoError(t, err)

	resp = doRequest(t, http.MethodGet, server.URL+"/v1/votes/"+accepted.SubmissionID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[services.SubmissionStatusPublic](t, resp)
	assert.Equal(t, "confirmed", status.Status)
	assert.Equal(t, "1", status.CandidateID)
	assert.NotEmpty(t, status.ConfirmationID)

	// Claims are single use
	resp = doRequest(t, http.MethodPost, server.URL+"/v1/votes", testutil.AuthToken, votePayload(claim, f.Scheduler.Now()))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CLAIM_REPLAYED", decodeError(t, resp).ErrorCode)
}

func TestSubmitVoteWithoutTokenIsForbidden(t *testing.T) {
	server, f := testutil.SetupTestServer(t, nil)
	claim := verify(t, server.URL)

	resp := doRequest(t, http.MethodPost, server.URL+"/v1/votes", "", votePayload(claim, f.Scheduler.Now()))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).ErrorCode)
}

func TestSubmitVoteRejectsExpiredClaim(t *testing.T) {
	server, f := testutil.SetupTestServer(t, nil)
	claim := verify(t, server.URL)
	f.Scheduler.Advance(6 * time.Minute)

	resp := doRequest(t, http.MethodPost, server.URL+"/v1/votes", testutil.AuthToken, votePayload(claim, f.Scheduler.Now()))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeError(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", errResp.ErrorCode)
	assert.Contains(t, errResp.Message, "expired")
	assert.Empty(t, f.Ledger.CallTrace())
}

func TestSubmitVoteRejectsClaimNotIssuedByGate(t *testing.T) {
	server, f := testutil.SetupTestServer(t, nil)
	claim := verify(t, server.URL)
	claim.ClaimHash = strings.Repeat("b", 64)

	resp := doRequest(t, http.MethodPost, server.URL+"/v1/votes", testutil.AuthToken, votePayload(claim, f.Scheduler.Now()))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "CLAIM_INVALID", decodeError(t, resp).ErrorCode)
	assert.Empty(t, f.Ledger.CallTrace())
}

func TestSubmitVoteRejectsMalformedPayload(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, server.URL+"/v1/votes", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "BAD_REQUEST", decodeError(t, resp).ErrorCode)
}

func TestCancelVote(t *testing.T) {
	server, f := testutil.SetupTestServer(t, nil)
	f.Ledger.CommitFailures = 1
	claim := verify(t, server.URL)

	resp := doRequest(t, http.MethodPost, server.URL+"/v1/votes", testutil.AuthToken, votePayload(claim, f.Scheduler.Now()))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decode[services.SubmissionStatusPublic](t, resp)
	require.Eventually(t, func() bool {
		return len(f.Scheduler.Pending()) == 1
	}, 5*time.Second, 5*time.Millisecond)

	resp = doRequest(t, http.MethodDelete, server.URL+"/v1/votes/"+accepted.SubmissionID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", decode[services.SubmissionStatusPublic](t, resp).Status)

	resp = doRequest(t, http.MethodDelete, server.URL+"/v1/votes/"+accepted.SubmissionID, "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NOT_CANCELLABLE", decodeError(t, resp).ErrorCode)
}

func TestUnknownSubmissionIsNotFound(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, nil)

	resp := doRequest(t, http.MethodGet, server.URL+"/v1/votes/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).ErrorCode)
}

func TestGetElectionInfo(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, nil)

	resp := doRequest(t, http.MethodGet, server.URL+"/v1/elections/"+testutil.ElectionID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[services.ElectionInfoPublic](t, resp)
	assert.True(t, info.AcceptsVotes)
	assert.Equal(t, testutil.Contract, info.ContractAddress)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	server, _ := testutil.SetupTestServer(t, nil)

	body := strings.Repeat("a", 8192)
	resp, err := http.Post(server.URL+"/v1/votes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
