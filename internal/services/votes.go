package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/types"
)

type SubmissionStatusPublic struct {
	SubmissionID   string `json:"submission_id"`
	ElectionID     string `json:"election_id"`
	CandidateID    string `json:"candidate_id"`
	VoterID        string `json:"voter_id"`
	Status         string `json:"status"`
	TxHash         string `json:"tx_hash,omitempty"`
	BlockNumber    uint64 `json:"block_number,omitempty"`
	ConfirmationID string `json:"confirmation_id,omitempty"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	Divergent      bool   `json:"divergent,omitempty"`
	RetryCount     int    `json:"retry_count"`
	SubmittedAt    string `json:"submitted_at"`
	ConfirmedAt    string `json:"confirmed_at,omitempty"`
}

// fromSubmissionRecord builds the user facing view. Queued and running
// submissions both read as processing, and the reason of an intermediate
// failure is only shown once the submission is terminal.
func fromSubmissionRecord(r *types.SubmissionRecord) *SubmissionStatusPublic {
	view := &SubmissionStatusPublic{
		SubmissionID:   r.SubmissionID,
		ElectionID:     r.Request.ElectionID,
		CandidateID:    r.Request.CandidateID,
		VoterID:        r.Request.VoterID,
		Status:         r.Status.ToString(),
		TxHash:         r.TxHash,
		BlockNumber:    r.BlockNumber,
		ConfirmationID: r.ConfirmationID,
		Divergent:      r.Divergent,
		RetryCount:     r.RetryCount,
		SubmittedAt:    r.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if !r.Status.IsTerminal() {
		view.Status = types.Processing.ToString()
		return view
	}
	if r.ConfirmedAt != nil {
		view.ConfirmedAt = r.ConfirmedAt.UTC().Format(time.RFC3339)
	}
	if r.Error != nil {
		view.ErrorCode = r.Error.Code.String()
		view.ErrorMessage = r.Error.Message()
	}
	return view
}

// SubmitVote resolves the voter's wallet from the bearer token and hands the
// request to the coordinator.
func (s *Services) SubmitVote(
	ctx context.Context, authToken string, req types.SubmissionRequest,
) (*SubmissionStatusPublic, *types.Error) {
	// Without a voter id the coordinator reports the missing field itself
	if req.VoterID != "" {
		secret, err := s.Wallet.ResolveSecret(ctx, authToken, req.VoterID)
		if err != nil {
			return nil, err
		}
		req.WalletSecret = secret
	}

	record, subErr := s.Coordinator.Submit(ctx, req)
	if subErr != nil {
		return nil, subErr.ToHTTPError()
	}
	return fromSubmissionRecord(record), nil
}

// GetVoteStatus reads the coordinator first and falls back to the durable
// history once the status cache no longer holds the submission.
func (s *Services) GetVoteStatus(ctx context.Context, submissionID string) (*SubmissionStatusPublic, *types.Error) {
	record, subErr := s.Coordinator.Status(submissionID)
	if subErr == nil {
		return fromSubmissionRecord(record), nil
	}
	if subErr.Code != types.SubmissionNotFound || s.DbClient == nil {
		return nil, subErr.ToHTTPError()
	}

	doc, err := s.DbClient.FindSubmission(ctx, submissionID)
	if err != nil {
		if db.IsNotFoundError(err) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "submission not found")
		}
		log.Ctx(ctx).Error().Err(err).Str("submissionId", submissionID).Msg("error while fetching submission")
		return nil, types.NewInternalServiceError(err)
	}
	stored, err := doc.ToRecord()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("submissionId", submissionID).Msg("stored submission is malformed")
		return nil, types.NewInternalServiceError(err)
	}
	return fromSubmissionRecord(stored), nil
}

func (s *Services) CancelVote(ctx context.Context, submissionID string) (*SubmissionStatusPublic, *types.Error) {
	record, err := s.Coordinator.Cancel(ctx, submissionID)
	if err != nil {
		return nil, err.ToHTTPError()
	}
	return fromSubmissionRecord(record), nil
}
