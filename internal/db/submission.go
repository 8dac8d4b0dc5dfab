package db

import (
	"context"
	"errors"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) SaveSubmission(ctx context.Context, record *types.SubmissionRecord) error {
	client := db.collection(model.SubmissionCollection)
	document := model.NewSubmissionDocument(record)

	filter := bson.M{"_id": document.SubmissionID}
	_, err := client.ReplaceOne(ctx, filter, document, options.Replace().SetUpsert(true))
	if err != nil {
		return toDuplicateKeyError(
			err, record.Request.Key().String(), "A confirmed vote already exists for this voter",
		)
	}
	return nil
}

// FindSubmission returns a NotFoundError if no submission has the given id
func (db *Database) FindSubmission(ctx context.Context, submissionID string) (*model.SubmissionDocument, error) {
	client := db.collection(model.SubmissionCollection)
	filter := bson.M{"_id": submissionID}

	var submission model.SubmissionDocument
	err := client.FindOne(ctx, filter).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     submissionID,
				Message: "Submission not found",
			}
		}
		return nil, err
	}
	return &submission, nil
}

func (db *Database) FindConfirmedSubmission(
	ctx context.Context, electionID, voterID string,
) (*model.SubmissionDocument, error) {
	client := db.collection(model.SubmissionCollection)
	filter := bson.M{
		"election_id": electionID,
		"voter_id":    voterID,
		"status":      types.Confirmed.ToString(),
	}

	var submission model.SubmissionDocument
	err := client.FindOne(ctx, filter).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     electionID + "/" + voterID,
				Message: "No confirmed submission for voter",
			}
		}
		return nil, err
	}
	return &submission, nil
}

// MarkSubmissionConfirmed settles a divergent submission once the backend has
// recorded it. It returns a NotFoundError if the submission does not exist.
func (db *Database) MarkSubmissionConfirmed(
	ctx context.Context, submissionID, confirmationID string, confirmedAt time.Time,
) error {
	client := db.collection(model.SubmissionCollection)
	filter := bson.M{"_id": submissionID}
	update := bson.M{
		"$set": bson.M{
			"status":          types.Confirmed.ToString(),
			"confirmation_id": confirmationID,
			"confirmed_at":    confirmedAt,
			"updated_at":      confirmedAt,
			"divergent":       false,
		},
		"$unset": bson.M{"error_code": "", "error_message": ""},
	}

	result, err := client.UpdateOne(ctx, filter, update)
	if err != nil {
		return toDuplicateKeyError(err, submissionID, "A confirmed vote already exists for this voter")
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     submissionID,
			Message: "Submission not found",
		}
	}
	return nil
}
