package db

import (
	"context"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"github.com/ballotchain/vote-submission-service/internal/types"
)

type DBClient interface {
	Ping(ctx context.Context) error
	// SaveSubmission upserts the record. A second confirmed record for the same
	// election and voter is rejected with a DuplicateKeyError.
	SaveSubmission(ctx context.Context, record *types.SubmissionRecord) error
	FindSubmission(ctx context.Context, submissionID string) (*model.SubmissionDocument, error)
	FindConfirmedSubmission(ctx context.Context, electionID, voterID string) (*model.SubmissionDocument, error)
	MarkSubmissionConfirmed(ctx context.Context, submissionID, confirmationID string, confirmedAt time.Time) error
	SaveDivergence(ctx context.Context, divergence *model.DivergenceDocument) error
	FindDivergences(ctx context.Context) ([]model.DivergenceDocument, error)
	DeleteDivergence(ctx context.Context, submissionID string) error
}
