package db

import (
	"context"

	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) SaveDivergence(ctx context.Context, divergence *model.DivergenceDocument) error {
	client := db.collection(model.DivergenceCollection)
	filter := bson.M{"_id": divergence.SubmissionID}

	_, err := client.ReplaceOne(ctx, filter, divergence, options.Replace().SetUpsert(true))
	return err
}

// FindDivergences returns the stored divergences, oldest first
func (db *Database) FindDivergences(ctx context.Context) ([]model.DivergenceDocument, error) {
	client := db.collection(model.DivergenceCollection)
	filter := bson.M{}
	options := options.Find().SetSort(bson.M{"detected_at": 1})

	cursor, err := client.Find(ctx, filter, options)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var divergences []model.DivergenceDocument
	if err = cursor.All(ctx, &divergences); err != nil {
		return nil, err
	}

	return divergences, nil
}

func (db *Database) DeleteDivergence(ctx context.Context, submissionID string) error {
	client := db.collection(model.DivergenceCollection)
	filter := bson.M{"_id": submissionID}
	_, err := client.DeleteOne(ctx, filter)
	return err
}
