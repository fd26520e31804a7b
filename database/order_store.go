package database

import (
	"context"
	"time"

	"github.com/princinho/elearnbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type OrderStore struct {
	col *mongo.Collection
}

func NewOrderStore(col *mongo.Collection) *OrderStore {
	return &OrderStore{col: col}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	now := time.Now().UTC()
	order.ID = bson.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, order)
	return err
}

func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	return findNewestFirst[models.Order](ctx, s.col, bson.M{})
}

func (s *OrderStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
