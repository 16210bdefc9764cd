package store

import (
	"context"

	"github.com/AnshRaj112/wardline-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAlertStore keeps one document per (alert, recipient monitor) in the
// alerts collection, partitioned by monitorUid.
type MongoAlertStore struct {
	col *mongo.Collection
}

func NewMongoAlertStore(db *mongo.Database) *MongoAlertStore {
	return &MongoAlertStore{col: db.Collection("alerts")}
}

func (s *MongoAlertStore) Insert(ctx context.Context, a models.Alert) error {
	_, err := s.col.InsertOne(ctx, a)
	return err
}

// ListForMonitor returns a monitor's received alert copies, newest first.
func (s *MongoAlertStore) ListForMonitor(ctx context.Context, monitorUID string, limit, skip int) ([]models.Alert, int64, error) {
	filter := bson.M{"monitorUid": monitorUID}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}
