package services

import "context"

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// AnalyticsService reports plain document totals.
type AnalyticsService struct {
	users   Counter
	courses Counter
	orders  Counter
}

func NewAnalyticsService(users, courses, orders Counter) *AnalyticsService {
	return &AnalyticsService{users: users, courses: courses, orders: orders}
}

func (s *AnalyticsService) Users(ctx context.Context) (int64, error)   { return count(ctx, s.users) }
func (s *AnalyticsService) Courses(ctx context.Context) (int64, error) { return count(ctx, s.courses) }
func (s *AnalyticsService) Orders(ctx context.Context) (int64, error)  { return count(ctx, s.orders) }

func count(ctx context.Context, c Counter) (int64, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return 0, storeErr(err, "Not found")
	}
	return n, nil
}
