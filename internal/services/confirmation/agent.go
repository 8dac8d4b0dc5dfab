package confirmation

import (
	"context"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/rs/zerolog/log"
)

// VoteRecorder is the backend endpoint that books a committed vote.
type VoteRecorder interface {
	ConfirmVote(ctx context.Context, req *backend.ConfirmVoteRequest) (*backend.ConfirmVoteResponse, *types.Error)
}

type ConfirmAgent struct {
	recorder VoteRecorder
}

func NewConfirmAgent(recorder VoteRecorder) *ConfirmAgent {
	return &ConfirmAgent{recorder: recorder}
}

// Confirm books the committed vote with the backend. The backend deduplicates
// on (electionId, voterId, txHash), so repeating the call is safe.
func (a *ConfirmAgent) Confirm(
	ctx context.Context, req types.SubmissionRequest, txHash string,
) (string, *types.SubmissionError) {
	if txHash == "" {
		return "", types.NewPermanentErrorWithMsg(types.MissingField, "txHash is required to confirm a vote")
	}
	timer := metrics.StartAgentTimer("backend")

	resp, err := a.recorder.ConfirmVote(ctx, &backend.ConfirmVoteRequest{
		ElectionID:  req.ElectionID,
		CandidateID: req.CandidateID,
		VoterID:     req.VoterID,
		TxHash:      txHash,
		Timestamp:   req.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		timer(metrics.Error)
		if err.IsTransient() {
			log.Ctx(ctx).Warn().Err(err).Int("statusCode", err.StatusCode).Msg("backend confirmation unavailable")
			return "", types.NewRetryableError(types.BackendUnavailable, err)
		}
		log.Ctx(ctx).Error().Err(err).Int("statusCode", err.StatusCode).Msg("backend rejected vote confirmation")
		return "", types.NewPermanentError(types.RejectedByBackend, err)
	}
	if resp.ConfirmationID == "" {
		timer(metrics.Error)
		return "", types.NewPermanentErrorWithMsg(types.RejectedByBackend, "backend returned an empty confirmation id")
	}

	timer(metrics.Success)
	return resp.ConfirmationID, nil
}
