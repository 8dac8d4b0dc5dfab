package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

type VerifyBiometricRequestPayload struct {
	VoterID    string `json:"voter_id"`
	ElectionID string `json:"election_id"`
}

func parseVerifyBiometricRequestPayload(request *http.Request) (*VerifyBiometricRequestPayload, *types.Error) {
	payload := &VerifyBiometricRequestPayload{}
	err := json.NewDecoder(request.Body).Decode(payload)
	if err != nil {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}
	if payload.VoterID == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "voter_id is required")
	}
	if payload.ElectionID == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "election_id is required")
	}
	return payload, nil
}

// VerifyBiometric godoc
// @Summary Verify the voter biometrically
// @Description Prompts the device sensor once and returns a short lived verification claim
// @Accept json
// @Produce json
// @Param payload body VerifyBiometricRequestPayload true "Voter and election"
// @Success 200 {object} PublicResponse[services.VerificationClaimPublic] "Verification claim"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Failure 403 {object} types.Error "Error: Biometric verification failed"
// @Router /v1/biometric/verify [post]
func (h *Handler) VerifyBiometric(request *http.Request) (*Result, *types.Error) {
	payload, err := parseVerifyBiometricRequestPayload(request)
	if err != nil {
		return nil, err
	}

	claim, err := h.services.VerifyBiometric(request.Context(), payload.VoterID, payload.ElectionID)
	if err != nil {
		return nil, err
	}
	return NewResult(claim), nil
}
