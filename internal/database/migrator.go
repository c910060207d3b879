package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ToursCollection = "tours"
	UsersCollection = "users"
)

// indexes lists the indexes each collection must have. Unique indexes are
// what turn duplicate writes into code 11000 server errors.
var indexes = map[string][]mongo.IndexModel{
	ToursCollection: {
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_1").SetUnique(true),
		},
	},
}

// Migrate ensures every declared index exists.
//
// CreateMany is idempotent for identical definitions, so this runs on every
// startup.
func Migrate(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) error {
	for collection, models := range indexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", collection, err)
		}
		logger.Info().Str("collection", collection).Strs("indexes", names).Msg("database indexes up to date")
	}
	return nil
}
