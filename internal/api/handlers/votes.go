package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi"

	"github.com/ballotchain/vote-submission-service/internal/services"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ballotchain/vote-submission-service/internal/utils"
)

type SubmitVoteRequestPayload struct {
	ElectionID        string                           `json:"election_id"`
	CandidateID       string                           `json:"candidate_id"`
	VoterID           string                           `json:"voter_id"`
	VerificationClaim services.VerificationClaimPublic `json:"verification_claim"`
	Timestamp         string                           `json:"timestamp"`
}

// parseSubmitVoteRequestPayload only checks the payload shape. Field
// validation belongs to the submission pipeline so that rejected requests
// still leave a failed record behind.
func parseSubmitVoteRequestPayload(request *http.Request) (*types.SubmissionRequest, *types.Error) {
	payload := &SubmitVoteRequestPayload{}
	err := json.NewDecoder(request.Body).Decode(payload)
	if err != nil {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}

	req := &types.SubmissionRequest{
		ElectionID:  payload.ElectionID,
		CandidateID: payload.CandidateID,
		VoterID:     payload.VoterID,
		VerificationClaim: types.VerificationClaim{
			SubjectID:  payload.VerificationClaim.SubjectID,
			DeviceID:   payload.VerificationClaim.DeviceID,
			ClaimHash:  payload.VerificationClaim.ClaimHash,
			Confidence: payload.VerificationClaim.Confidence,
		},
	}
	if payload.VerificationClaim.CapturedAt != "" {
		capturedAt, err := utils.ParseTimestamp(payload.VerificationClaim.CapturedAt)
		if err != nil {
			return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid verification_claim.captured_at")
		}
		req.VerificationClaim.CapturedAt = capturedAt
	}
	if payload.Timestamp != "" {
		timestamp, err := utils.ParseTimestamp(payload.Timestamp)
		if err != nil {
			return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid timestamp")
		}
		req.Timestamp = timestamp
	}
	return req, nil
}

func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// SubmitVote godoc
// @Summary Submit a vote
// @Description Commits the vote on the ledger and books it with the backend. This is an async operation,
// @Description poll the returned submission for its outcome.
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token of the voter"
// @Param payload body SubmitVoteRequestPayload true "Vote"
// @Success 202 {object} PublicResponse[services.SubmissionStatusPublic] "Submission accepted"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Failure 409 {object} types.Error "Error: Already voted or duplicate submission"
// @Router /v1/votes [post]
func (h *Handler) SubmitVote(request *http.Request) (*Result, *types.Error) {
	req, err := parseSubmitVoteRequestPayload(request)
	if err != nil {
		return nil, err
	}

	status, err := h.services.SubmitVote(request.Context(), bearerToken(request), *req)
	if err != nil {
		return nil, err
	}
	return NewAcceptedResult(status).WithHeader("Location", "/v1/votes/"+status.SubmissionID), nil
}

// GetVoteStatus godoc
// @Summary Get a vote submission
// @Description Queued and running submissions are both reported as processing
// @Produce json
// @Param submission_id path string true "Submission id"
// @Success 200 {object} PublicResponse[services.SubmissionStatusPublic] "Submission status"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/votes/{submission_id} [get]
func (h *Handler) GetVoteStatus(request *http.Request) (*Result, *types.Error) {
	submissionID := chi.URLParam(request, "submission_id")
	if submissionID == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "submission_id is required")
	}

	status, err := h.services.GetVoteStatus(request.Context(), submissionID)
	if err != nil {
		return nil, err
	}
	return NewResult(status), nil
}

// CancelVote godoc
// @Summary Cancel a queued vote submission
// @Description Only a submission waiting for its next attempt can be cancelled
// @Produce json
// @Param submission_id path string true "Submission id"
// @Success 200 {object} PublicResponse[services.SubmissionStatusPublic] "Cancelled submission"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Failure 409 {object} types.Error "Error: Not cancellable"
// @Router /v1/votes/{submission_id} [delete]
func (h *Handler) CancelVote(request *http.Request) (*Result, *types.Error) {
	submissionID := chi.URLParam(request, "submission_id")
	if submissionID == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "submission_id is required")
	}

	status, err := h.services.CancelVote(request.Context(), submissionID)
	if err != nil {
		return nil, err
	}
	return NewResult(status), nil
}
