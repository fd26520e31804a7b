package database

import (
	"context"
	"time"

	"github.com/princinho/elearnbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type LayoutStore struct {
	col *mongo.Collection
}

func NewLayoutStore(col *mongo.Collection) *LayoutStore {
	return &LayoutStore{col: col}
}

func (s *LayoutStore) FindByType(ctx context.Context, t models.LayoutType) (models.Layout, error) {
	return findOne[models.Layout](ctx, s.col, bson.M{"type": t})
}

func (s *LayoutStore) Create(ctx context.Context, layout *models.Layout) error {
	now := time.Now().UTC()
	layout.ID = bson.NewObjectID()
	layout.CreatedAt = now
	layout.UpdatedAt = now
	if _, err := s.col.InsertOne(ctx, layout); err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *LayoutStore) Save(ctx context.Context, layout *models.Layout) error {
	layout.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": layout.ID}, layout)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
