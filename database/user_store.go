package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/elearnbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(col *mongo.Collection) *UserStore {
	return &UserStore{col: col}
}

func (s *UserStore) FindByID(ctx context.Context, id string) (models.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.User{}, err
	}
	return findOne[models.User](ctx, s.col, bson.M{"_id": oid})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return findOne[models.User](ctx, s.col, bson.M{"email": normalizeEmail(email)})
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"email": normalizeEmail(email)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.Email = normalizeEmail(user.Email)
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Courses == nil {
		user.Courses = []models.CourseRef{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	return findNewestFirst[models.User](ctx, s.col, bson.M{})
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

// EnsureAdmin inserts the admin account only if no user holds its email.
func (s *UserStore) EnsureAdmin(ctx context.Context, admin models.User) (bool, error) {
	now := time.Now().UTC()
	filter := bson.M{"email": normalizeEmail(admin.Email)}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":       admin.Name,
			"email":      normalizeEmail(admin.Email),
			"password":   admin.PasswordHash,
			"role":       models.RoleAdmin,
			"isVerified": true,
			"courses":    []models.CourseRef{},
			"createdAt":  now,
			"updatedAt":  now,
		},
	}

	res, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("seed admin upsert failed: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
