package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/wardline-backend/internal/errs"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPrincipalStore stores principal documents in the principals collection.
type MongoPrincipalStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongoPrincipalStore(client *mongo.Client, db *mongo.Database) *MongoPrincipalStore {
	return &MongoPrincipalStore{
		client: client,
		col:    db.Collection("principals"),
	}
}

func (s *MongoPrincipalStore) Create(ctx context.Context, p *models.Principal) error {
	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *MongoPrincipalStore) Get(ctx context.Context, uid string) (*models.Principal, error) {
	var p models.Principal
	err := s.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundf("principal %s not found", uid)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoPrincipalStore) FindByAssociationCode(ctx context.Context, code string) (*models.Principal, error) {
	var p models.Principal
	err := s.col.FindOne(ctx, bson.M{"associationCode": code}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundf("no principal owns this code")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoPrincipalStore) CodeInUse(ctx context.Context, code string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"associationCode": code})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *MongoPrincipalStore) SetAssociationCode(ctx context.Context, uid, code string, createdAt time.Time) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{
		"associationCode":          code,
		"associationCodeCreatedAt": createdAt,
	}})
}

func (s *MongoPrincipalStore) ClearAssociationCode(ctx context.Context, uid string) error {
	return s.updateOne(ctx, uid, bson.M{"$unset": bson.M{
		"associationCode":          "",
		"associationCodeCreatedAt": "",
	}})
}

func (s *MongoPrincipalStore) SetCancelCode(ctx context.Context, uid, code string) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{"alertCancelCode": code}})
}

func (s *MongoPrincipalStore) SetInactivityDuration(ctx context.Context, uid string, minutes int) error {
	return s.updateOne(ctx, uid, bson.M{"$set": bson.M{"inactivityDurationMin": minutes}})
}

func (s *MongoPrincipalStore) AddMonitor(ctx context.Context, protectedUID, monitorUID string) error {
	return s.updateOne(ctx, protectedUID, bson.M{"$addToSet": bson.M{"monitors": monitorUID}})
}

func (s *MongoPrincipalStore) AddProtectedUser(ctx context.Context, monitorUID, protectedUID string) error {
	return s.updateOne(ctx, monitorUID, bson.M{"$addToSet": bson.M{"protectedUsers": protectedUID}})
}

func (s *MongoPrincipalStore) RemoveMonitor(ctx context.Context, protectedUID, monitorUID string) error {
	return s.updateOne(ctx, protectedUID, bson.M{"$pull": bson.M{"monitors": monitorUID}})
}

func (s *MongoPrincipalStore) RemoveProtectedUser(ctx context.Context, monitorUID, protectedUID string) error {
	return s.updateOne(ctx, monitorUID, bson.M{"$pull": bson.M{"protectedUsers": protectedUID}})
}

func (s *MongoPrincipalStore) EnsureRole(ctx context.Context, uid string, role models.Role) error {
	return s.updateOne(ctx, uid, bson.M{"$addToSet": bson.M{"roles": role}})
}

// Transact runs fn inside a MongoDB multi-document transaction. The driver
// retries on transient errors and write conflicts; fn must tolerate being
// run more than once.
func (s *MongoPrincipalStore) Transact(ctx context.Context, fn func(ctx context.Context, tx PrincipalTx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx, s)
	})
	return err
}

func (s *MongoPrincipalStore) updateOne(ctx context.Context, uid string, update bson.M) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"uid": uid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.NotFoundf("principal %s not found", uid)
	}
	return nil
}
