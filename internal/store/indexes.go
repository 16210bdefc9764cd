package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the MongoDB indexes. Called on startup from main
// after Mongo has connected.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"principals": {
			{
				Keys:    bson.D{{Key: "uid", Value: 1}},
				Options: options.Index().SetName("idx_uid").SetUnique(true),
			},
			{
				// Sparse: only principals with a live pairing code appear,
				// which keeps the redemption scan cheap.
				Keys:    bson.D{{Key: "associationCode", Value: 1}},
				Options: options.Index().SetName("idx_association_code").SetSparse(true),
			},
		},
		"alerts": {
			{
				Keys: bson.D{
					{Key: "monitorUid", Value: 1},
					{Key: "timestamp", Value: -1},
				},
				Options: options.Index().SetName("idx_monitor_timestamp"),
			},
		},
		"monitor_rules": {
			{
				Keys: bson.D{
					{Key: "protectedUid", Value: 1},
					{Key: "monitorUid", Value: 1},
				},
				Options: options.Index().SetName("idx_protected_monitor").SetUnique(true),
			},
		},
		"time_windows": {
			{
				Keys:    bson.D{{Key: "protectedUid", Value: 1}},
				Options: options.Index().SetName("idx_protected"),
			},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
