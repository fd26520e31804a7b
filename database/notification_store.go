package database

import (
	"context"
	"time"

	"github.com/princinho/elearnbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type NotificationStore struct {
	col *mongo.Collection
}

func NewNotificationStore(col *mongo.Collection) *NotificationStore {
	return &NotificationStore{col: col}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	now := time.Now().UTC()
	n.ID = bson.NewObjectID()
	if n.Status == "" {
		n.Status = models.NotificationUnread
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, n)
	return err
}

func (s *NotificationStore) List(ctx context.Context) ([]models.Notification, error) {
	return findNewestFirst[models.Notification](ctx, s.col, bson.M{})
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.col.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":    models.NotificationRead,
			"updatedAt": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReadBefore removes read notifications created before cutoff.
func (s *NotificationStore) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"status":    models.NotificationRead,
		"createdAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
