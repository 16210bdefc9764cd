package store

import (
	"context"

	"github.com/AnshRaj112/wardline-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRuleStore keeps one bundle document per (protectedUid, monitorUid)
// in the monitor_rules collection.
type MongoRuleStore struct {
	col *mongo.Collection
}

func NewMongoRuleStore(db *mongo.Database) *MongoRuleStore {
	return &MongoRuleStore{col: db.Collection("monitor_rules")}
}

func (s *MongoRuleStore) ReplaceBundle(ctx context.Context, b models.MonitorRulesBundle) error {
	filter := bson.M{"protectedUid": b.ProtectedUID, "monitorUid": b.MonitorUID}
	_, err := s.col.ReplaceOne(ctx, filter, b, options.Replace().SetUpsert(true))
	return err
}

// ListBundles decodes through raw documents so that partially-shaped
// records stored by older clients still come back usable.
func (s *MongoRuleStore) ListBundles(ctx context.Context, protectedUID string) ([]models.MonitorRulesBundle, error) {
	cursor, err := s.col.Find(ctx, bson.M{"protectedUid": protectedUID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bundles []models.MonitorRulesBundle
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		bundles = append(bundles, models.BundleFromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return bundles, nil
}

func (s *MongoRuleStore) SetAuthorizedTypes(ctx context.Context, protectedUID, monitorUID string, types []models.RuleType) error {
	filter := bson.M{"protectedUid": protectedUID, "monitorUid": monitorUID}
	update := bson.M{
		"$set":         bson.M{"authorizedTypes": types},
		"$setOnInsert": bson.M{"requested": []models.MonitoringRule{}},
	}
	_, err := s.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
