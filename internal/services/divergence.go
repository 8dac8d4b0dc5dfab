package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/ballotchain/vote-submission-service/internal/db"
)

// ReplayDivergences retries the backend confirmation of every stored
// divergence. A booked divergence marks its submission confirmed and is
// removed. Returns the number of divergences resolved.
func (s *Services) ReplayDivergences(ctx context.Context) (int, error) {
	if s.DbClient == nil {
		return 0, errors.New("divergence replay needs a database")
	}
	divergences, err := s.DbClient.FindDivergences(ctx)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, d := range divergences {
		logger := log.Ctx(ctx).With().Str("submissionId", d.SubmissionID).Str("txHash", d.TxHash).Logger()

		confirmationID, subErr := s.ConfirmAgent.Confirm(ctx, d.ToRequest(), d.TxHash)
		if subErr != nil {
			logger.Warn().Err(subErr).Msg("divergence still not booked by the backend")
			continue
		}

		err := s.DbClient.MarkSubmissionConfirmed(ctx, d.SubmissionID, confirmationID, s.now())
		if err != nil && !db.IsNotFoundError(err) {
			logger.Error().Err(err).Msg("failed to mark submission confirmed")
			continue
		}
		if err := s.DbClient.DeleteDivergence(ctx, d.SubmissionID); err != nil {
			logger.Error().Err(err).Msg("failed to delete resolved divergence")
			continue
		}
		resolved++
		logger.Info().Str("confirmationId", confirmationID).Msg("divergence resolved")

		s.publishResolved(ctx, d.SubmissionID)
	}
	return resolved, nil
}

func (s *Services) publishResolved(ctx context.Context, submissionID string) {
	if s.Publisher == nil {
		return
	}
	doc, err := s.DbClient.FindSubmission(ctx, submissionID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("submissionId", submissionID).Msg("resolved submission not found in store")
		return
	}
	record, err := doc.ToRecord()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("submissionId", submissionID).Msg("resolved submission is malformed")
		return
	}
	if err := s.Publisher.PublishSubmissionEvent(ctx, record); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("submissionId", submissionID).Msg("failed to publish resolved submission")
	}
}
