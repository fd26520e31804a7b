package database

import (
	"context"
	"time"

	"github.com/princinho/elearnbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type CourseStore struct {
	col *mongo.Collection
}

func NewCourseStore(col *mongo.Collection) *CourseStore {
	return &CourseStore{col: col}
}

func (s *CourseStore) FindByID(ctx context.Context, id string) (models.Course, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Course{}, err
	}
	return findOne[models.Course](ctx, s.col, bson.M{"_id": oid})
}

func (s *CourseStore) List(ctx context.Context) ([]models.Course, error) {
	return findNewestFirst[models.Course](ctx, s.col, bson.M{})
}

func (s *CourseStore) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	course.ID = bson.NewObjectID()
	course.CreatedAt = now
	course.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, course)
	return err
}

func (s *CourseStore) IncrementPurchased(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.col.UpdateByID(ctx, oid, bson.M{
		"$inc": bson.M{"purchased": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CourseStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
