package services

import (
	"context"
	"time"

	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/models"
)

// readRetention is how long read notifications are kept.
const readRetention = 30 * 24 * time.Hour

type NotificationService struct {
	notifications NotificationStore
	log           logging.Logger
	now           func() time.Time
}

func NewNotificationService(notifications NotificationStore, log logging.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, log: log, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	list, err := s.notifications.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Notification not found")
	}
	return list, nil
}

// MarkRead flags one notification as read and returns the refreshed list.
func (s *NotificationService) MarkRead(ctx context.Context, id string) ([]models.Notification, error) {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return nil, storeErr(err, "Notification not found")
	}
	return s.List(ctx)
}

// Prune deletes read notifications older than the retention window.
func (s *NotificationService) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-readRetention)
	n, err := s.notifications.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return 0, storeErr(err, "Notification not found")
	}
	return n, nil
}

// RunPruner prunes every day at local midnight until ctx is done.
func (s *NotificationService) RunPruner(ctx context.Context) {
	for {
		wait := nextMidnight(s.now()).Sub(s.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		n, err := s.Prune(ctx)
		if err != nil {
			s.log.Error(ctx, "notification pruning failed", "err", err)
			continue
		}
		s.log.Info(ctx, "read notifications pruned", "deleted", n)
	}
}

func nextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
