package store

import (
	"context"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTimeWindowStore keeps one document per window in the time_windows
// collection, scoped by the owning protected user.
type MongoTimeWindowStore struct {
	col *mongo.Collection
}

func NewMongoTimeWindowStore(db *mongo.Database) *MongoTimeWindowStore {
	return &MongoTimeWindowStore{col: db.Collection("time_windows")}
}

func (s *MongoTimeWindowStore) Add(ctx context.Context, w models.TimeWindow) error {
	_, err := s.col.InsertOne(ctx, w)
	return err
}

func (s *MongoTimeWindowStore) List(ctx context.Context, protectedUID string) ([]models.TimeWindow, error) {
	cursor, err := s.col.Find(ctx, bson.M{"protectedUid": protectedUID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var windows []models.TimeWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, err
	}
	return windows, nil
}

func (s *MongoTimeWindowStore) Remove(ctx context.Context, protectedUID, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"protectedUid": protectedUID, "id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errs.NotFoundf("time window %s not found", id)
	}
	return nil
}
