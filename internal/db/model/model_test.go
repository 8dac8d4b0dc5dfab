package model

import (
	"testing"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionDocumentRoundTripDropsSecrets(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	record := &types.SubmissionRecord{
		SubmissionID: "sub-1",
		Request: types.SubmissionRequest{
			ElectionID:   "e-1",
			CandidateID:  "2",
			VoterID:      "voter-1",
			WalletSecret: "super-secret",
			VerificationClaim: types.VerificationClaim{
				SubjectID: "voter-1", ClaimHash: "abc",
			},
			Timestamp: now,
		},
		Status:      types.Failed,
		TxHash:      "0x01",
		BlockNumber: 7,
		Error:       types.NewPermanentErrorWithMsg(types.RejectedByBackend, "backend said no"),
		Divergent:   true,
		SubmittedAt: now,
		UpdatedAt:   now,
		RetryCount:  3,
	}

	doc := NewSubmissionDocument(record)
	assert.Equal(t, "failed", doc.Status)
	assert.Equal(t, "REJECTED_BY_BACKEND", doc.ErrorCode)

	restored, err := doc.ToRecord()
	require.NoError(t, err)
	assert.Empty(t, restored.Request.WalletSecret)
	assert.Empty(t, restored.Request.VerificationClaim.ClaimHash)
	assert.Equal(t, types.Failed, restored.Status)
	assert.True(t, restored.Divergent)
	require.NotNil(t, restored.Error)
	assert.Equal(t, types.RejectedByBackend, restored.Error.Code)
	assert.Equal(t, "backend said no", restored.Error.Message())
}

func TestDivergenceDocumentToRequest(t *testing.T) {
	now := time.Now().UTC()
	record := &types.SubmissionRecord{
		SubmissionID: "sub-2",
		Request:      types.SubmissionRequest{ElectionID: "e-1", CandidateID: "3", VoterID: "v-1", Timestamp: now},
		TxHash:       "0x02",
		BlockNumber:  9,
	}

	doc := NewDivergenceDocument(record, types.NewRetryableErrorWithMsg(types.BackendUnavailable, "timeout"), now)
	req := doc.ToRequest()

	assert.Equal(t, "sub-2", doc.SubmissionID)
	assert.Equal(t, "BACKEND_UNAVAILABLE", doc.ErrorCode)
	assert.Equal(t, record.Request.Key(), req.Key())
	assert.Equal(t, "3", req.CandidateID)
}
