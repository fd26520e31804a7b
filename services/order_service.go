package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/payment"
)

type OrderService struct {
	users         UserStore
	courses       CourseStore
	orders        OrderStore
	notifications NotificationStore
	sessions      Sessions
	payments      PaymentGateway
	mailer        Mailer
	log           logging.Logger
}

func NewOrderService(
	users UserStore,
	courses CourseStore,
	orders OrderStore,
	notifications NotificationStore,
	sessions Sessions,
	payments PaymentGateway,
	mailer Mailer,
	log logging.Logger,
) *OrderService {
	return &OrderService{
		users:         users,
		courses:       courses,
		orders:        orders,
		notifications: notifications,
		sessions:      sessions,
		payments:      payments,
		mailer:        mailer,
		log:           log,
	}
}

// CreateOrder grants userID access to a course after checking the payment.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in dto.CreateOrderDTO) (models.Order, error) {
	courseID := strings.TrimSpace(in.CourseID)
	if courseID == "" {
		return models.Order{}, apperr.New(apperr.Invalid, "Course id is required")
	}

	var info *models.PaymentInfo
	if in.PaymentInfo != nil && in.PaymentInfo.ID != "" {
		status, err := s.payments.IntentStatus(ctx, in.PaymentInfo.ID)
		if err != nil {
			return models.Order{}, apperr.Upstream("Could not verify payment", err)
		}
		if status != payment.StatusSucceeded {
			return models.Order{}, apperr.New(apperr.Invalid, "Payment not authorized")
		}
		info = &models.PaymentInfo{ID: in.PaymentInfo.ID, Status: status}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.Order{}, storeErr(err, "User not found")
	}
	if user.HasCourse(courseID) {
		return models.Order{}, apperr.New(apperr.Conflict, "You have already purchased this course")
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return models.Order{}, storeErr(err, "Course not found")
	}

	order := models.Order{CourseID: courseID, UserID: userID, PaymentInfo: info}

	err = s.mailer.Send(ctx, mail.Message{
		To:       user.Email,
		Subject:  "Order Confirmation",
		Template: mail.OrderConfirmationTemplate,
		Data: mail.OrderConfirmationData{
			Name:       user.Name,
			OrderID:    course.ID.Hex()[:6],
			CourseName: course.Name,
			Price:      course.Price,
			Date:       time.Now().Format("Jan 2, 2006"),
		},
	})
	if err != nil {
		return models.Order{}, apperr.Upstream("Could not send order confirmation", err)
	}

	user.Courses = append(user.Courses, models.CourseRef{CourseID: courseID})
	if err := s.users.Save(ctx, &user); err != nil {
		return models.Order{}, storeErr(err, "User not found")
	}
	if err := s.sessions.Sync(ctx, user); err != nil {
		return models.Order{}, err
	}

	err = s.notifications.Create(ctx, &models.Notification{
		Title:   "New Order",
		Message: fmt.Sprintf("You have a new order from %s", course.Name),
		UserID:  userID,
	})
	if err != nil {
		return models.Order{}, storeErr(err, "Notification not found")
	}

	if err := s.courses.IncrementPurchased(ctx, courseID); err != nil {
		return models.Order{}, storeErr(err, "Course not found")
	}

	if err := s.orders.Create(ctx, &order); err != nil {
		return models.Order{}, storeErr(err, "Order not found")
	}

	s.log.Info(ctx, "order created", "order_id", order.ID.Hex(), "user_id", userID, "course_id", courseID)
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, storeErr(err, "Order not found")
	}
	return orders, nil
}

func (s *OrderService) PublishableKey() string {
	return s.payments.PublishableKey()
}

// NewPayment opens a payment intent and returns its client secret.
func (s *OrderService) NewPayment(ctx context.Context, in dto.NewPaymentDTO) (string, error) {
	if in.Amount <= 0 {
		return "", apperr.New(apperr.Invalid, "Amount must be positive")
	}
	secret, err := s.payments.CreateIntent(ctx, in.Amount)
	if err != nil {
		return "", apperr.Upstream("Could not create payment", err)
	}
	return secret, nil
}
