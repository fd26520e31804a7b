// Package testutil provides in-memory stand-ins for the stores and external
// providers so services and handlers can be tested without Mongo, SMTP,
// Stripe or a bucket.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// NewRedis starts a miniredis server closed at the end of the test.
func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type UserStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]models.User
	Err   error
}

func NewUserStore(users ...models.User) *UserStore {
	s := &UserStore{users: map[bson.ObjectID]models.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.User{}, s.Err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.User{}, database.ErrNotFound
	}
	u, ok := s.users[oid]
	if !ok {
		return models.User{}, database.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.User{}, s.Err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, database.ErrNotFound
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return database.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Courses == nil {
		user.Courses = []models.CourseRef{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.users[user.ID]; !ok {
		return database.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, s.Err
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	if _, ok := s.users[oid]; !ok {
		return database.ErrNotFound
	}
	delete(s.users, oid)
	return nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), s.Err
}

func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type CourseStore struct {
	mu      sync.Mutex
	courses map[bson.ObjectID]models.Course
}

func NewCourseStore(courses ...models.Course) *CourseStore {
	s := &CourseStore{courses: map[bson.ObjectID]models.Course{}}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s
}

func (s *CourseStore) FindByID(_ context.Context, id string) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Course{}, database.ErrNotFound
	}
	c, ok := s.courses[oid]
	if !ok {
		return models.Course{}, database.ErrNotFound
	}
	return c, nil
}

func (s *CourseStore) List(_ context.Context) ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *CourseStore) Create(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course.ID = bson.NewObjectID()
	course.CreatedAt = time.Now().UTC()
	course.UpdatedAt = course.CreatedAt
	s.courses[course.ID] = *course
	return nil
}

func (s *CourseStore) IncrementPurchased(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return database.ErrNotFound
	}
	c, ok := s.courses[oid]
	if !ok {
		return database.ErrNotFound
	}
	c.Purchased++
	s.courses[oid] = c
	return nil
}

func (s *CourseStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.courses)), nil
}

type OrderStore struct {
	mu     sync.Mutex
	Orders []models.Order
}

func (s *OrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = bson.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	s.Orders = append(s.Orders, *order)
	return nil
}

func (s *OrderStore) List(_ context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.Orders))
	for i, o := range s.Orders {
		out[len(out)-1-i] = o
	}
	return out, nil
}

func (s *OrderStore) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Orders)), nil
}

type NotificationStore struct {
	mu            sync.Mutex
	Notifications []models.Notification
	Cutoffs       []time.Time
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = bson.NewObjectID()
	if n.Status == "" {
		n.Status = models.NotificationUnread
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	n.UpdatedAt = n.CreatedAt
	s.Notifications = append(s.Notifications, *n)
	return nil
}

func (s *NotificationStore) List(_ context.Context) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Notification(nil), s.Notifications...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *NotificationStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.Notifications {
		if n.ID.Hex() == id {
			s.Notifications[i].Status = models.NotificationRead
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *NotificationStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cutoffs = append(s.Cutoffs, cutoff)
	kept := s.Notifications[:0]
	var deleted int64
	for _, n := range s.Notifications {
		if n.Status == models.NotificationRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.Notifications = kept
	return deleted, nil
}

type LayoutStore struct {
	mu      sync.Mutex
	layouts map[models.LayoutType]models.Layout
}

func NewLayoutStore() *LayoutStore {
	return &LayoutStore{layouts: map[models.LayoutType]models.Layout{}}
}

func (s *LayoutStore) FindByType(_ context.Context, t models.LayoutType) (models.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layouts[t]
	if !ok {
		return models.Layout{}, database.ErrNotFound
	}
	return l, nil
}

func (s *LayoutStore) Create(_ context.Context, layout *models.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[layout.Type]; ok {
		return database.ErrDuplicate
	}
	layout.ID = bson.NewObjectID()
	layout.CreatedAt = time.Now().UTC()
	layout.UpdatedAt = layout.CreatedAt
	s.layouts[layout.Type] = *layout
	return nil
}

func (s *LayoutStore) Save(_ context.Context, layout *models.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[layout.Type]; !ok {
		return database.ErrNotFound
	}
	layout.UpdatedAt = time.Now().UTC()
	s.layouts[layout.Type] = *layout
	return nil
}

// Mailer records every message it is asked to send.
type Mailer struct {
	mu   sync.Mutex
	Sent []mail.Message
	Err  error
}

func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, err := mail.Render(msg.Template, msg.Data); err != nil {
		return err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *Mailer) Last() mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return mail.Message{}
	}
	return m.Sent[len(m.Sent)-1]
}

// ActivationCode returns the code from the last activation mail.
func (m *Mailer) ActivationCode() string {
	data, _ := m.Last().Data.(mail.ActivationData)
	return data.ActivationCode
}

type Images struct {
	mu       sync.Mutex
	Uploaded []models.Image
	Deleted  []string
	Err      error
}

func (s *Images) UploadImage(_ context.Context, folder, encoded string) (models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Image{}, s.Err
	}
	if _, err := utils.DecodeImage(encoded); err != nil {
		return models.Image{}, err
	}
	id := folder + "/" + bson.NewObjectID().Hex() + ".png"
	img := models.Image{PublicID: id, URL: "https://files.example.com/media/" + id}
	s.Uploaded = append(s.Uploaded, img)
	return img, nil
}

func (s *Images) DeleteImage(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, publicID)
	return nil
}

type Payments struct {
	Statuses map[string]string
	Err      error
	Amounts  []int64
}

func (p *Payments) PublishableKey() string { return "pk_test_123" }

func (p *Payments) IntentStatus(_ context.Context, intentID string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	status, ok := p.Statuses[intentID]
	if !ok {
		return "", errors.New("no such payment_intent")
	}
	return status, nil
}

func (p *Payments) CreateIntent(_ context.Context, amount int64) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.Amounts = append(p.Amounts, amount)
	return "pi_test_secret", nil
}
