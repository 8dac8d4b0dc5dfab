package services

import (
	"context"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

type VerificationClaimPublic struct {
	SubjectID  string   `json:"subject_id"`
	DeviceID   string   `json:"device_id"`
	CapturedAt string   `json:"captured_at"`
	ClaimHash  string   `json:"claim_hash"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (s *Services) VerifyBiometric(
	ctx context.Context, voterID, electionID string,
) (*VerificationClaimPublic, *types.Error) {
	claim, err := s.Gate.VerifyForVoting(ctx, voterID, electionID)
	if err != nil {
		return nil, err.ToHTTPError()
	}
	return &VerificationClaimPublic{
		SubjectID:  claim.SubjectID,
		DeviceID:   claim.DeviceID,
		CapturedAt: claim.CapturedAt.UTC().Format(time.RFC3339Nano),
		ClaimHash:  claim.ClaimHash,
		Confidence: claim.Confidence,
	}, nil
}
