// Package services holds the business operations behind the HTTP handlers.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/models"
)

type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id string) (models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	IncrementPurchased(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type LayoutStore interface {
	FindByType(ctx context.Context, t models.LayoutType) (models.Layout, error)
	Create(ctx context.Context, layout *models.Layout) error
	Save(ctx context.Context, layout *models.Layout) error
}

// Sessions is implemented by *auth.SessionManager.
type Sessions interface {
	Establish(ctx context.Context, user models.User) (auth.TokenPair, error)
	Sync(ctx context.Context, user models.User) error
	Revoke(ctx context.Context, userID string) error
}

type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

type ImageStore interface {
	UploadImage(ctx context.Context, folder, encoded string) (models.Image, error)
	DeleteImage(ctx context.Context, publicID string) error
}

type PaymentGateway interface {
	PublishableKey() string
	IntentStatus(ctx context.Context, intentID string) (string, error)
	CreateIntent(ctx context.Context, amount int64) (string, error)
}

// SocialVerifier is implemented by *auth.GoogleVerifier.
type SocialVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (auth.SocialProfile, error)
}

// storeErr maps a store failure onto the API error kinds. notFound is the
// message used when the document does not exist.
func storeErr(err error, notFound string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, database.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, notFound, err)
	default:
		return apperr.Upstream("Database unavailable", err)
	}
}
