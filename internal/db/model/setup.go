package model

import (
	"context"
	"fmt"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type index struct {
	Indexes bson.D
	Unique  bool
	// Only documents matching the filter are indexed
	PartialFilter bson.M
}

var collections = map[string][]index{
	SubmissionCollection: {
		// At most one confirmed vote per voter and election
		{
			Indexes:       bson.D{{Key: "election_id", Value: 1}, {Key: "voter_id", Value: 1}},
			Unique:        true,
			PartialFilter: bson.M{"status": "confirmed"},
		},
		{Indexes: bson.D{{Key: "updated_at", Value: -1}}, Unique: false},
	},
	DivergenceCollection: {{Indexes: bson.D{{Key: "detected_at", Value: 1}}, Unique: false}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	if cfg.Db.ConnectTimeout > 0 {
		clientOps.SetConnectTimeout(cfg.Db.ConnectTimeout)
	}
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.Db.DbName)

	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	names, err := database.ListCollectionNames(ctx, bson.M{"name": collectionName})
	if err == nil && len(names) > 0 {
		log.Debug().Msg(fmt.Sprintf("Collection already exists: %s", collectionName))
		return
	}

	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Indexes) == 0 {
		return
	}

	indexOptions := options.Index().SetUnique(idx.Unique)
	if len(idx.PartialFilter) > 0 {
		indexOptions.SetPartialFilterExpression(idx.PartialFilter)
	}

	model := mongo.IndexModel{
		Keys:    idx.Indexes,
		Options: indexOptions,
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, model); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
