package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardvault-api/internal/domain"
	"github.com/cardvault-api/internal/pkg/id"
	"github.com/cardvault-api/internal/pkg/sanitize"
)

// DynamoDB attribute name used in partial update maps.
const fieldStatusID = "status_id"

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID, statusID string) (*domain.Order, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	Update(ctx context.Context, orderID string, updates map[string]interface{}) error
}

type statusStore interface {
	Get(ctx context.Context, statusID string) (*domain.Status, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	orderRepo  orderStore
	statusRepo statusStore
	notifRepo  notificationStore
}

func NewService(orderRepo orderStore, statusRepo statusStore, notifRepo notificationStore) Service {
	return &service{orderRepo: orderRepo, statusRepo: statusRepo, notifRepo: notifRepo}
}

// Create stores a grading order after re-computing the total server-side.
// A client-sent total that disagrees with the line items is rejected, never
// silently corrected.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	var sum int64
	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			CardName:  sanitize.Clean(it.CardName),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
		if items[i].CardName == "" {
			return nil, fmt.Errorf("card name required: %w", domain.ErrBadRequest)
		}
		sum += it.Quantity * it.UnitPrice
	}
	if sum != req.Total {
		return nil, fmt.Errorf("total %d does not match line items (%d): %w", req.Total, sum, domain.ErrBadRequest)
	}

	now := time.Now().UTC()
	o := &domain.Order{
		OrderID: id.New(),
		UserID:  userID,
		Items:   items,
		Total:   req.Total,
		CustomerInfo: domain.CustomerInfo{
			FirstName:  sanitize.Clean(req.CustomerInfo.FirstName),
			LastName:   sanitize.Clean(req.CustomerInfo.LastName),
			Address:    sanitize.Clean(req.CustomerInfo.Address),
			City:       sanitize.Clean(req.CustomerInfo.City),
			PostalCode: sanitize.Clean(req.CustomerInfo.PostalCode),
			Country:    sanitize.Clean(req.CustomerInfo.Country),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orderRepo.Put(ctx, o); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, o.OrderID, "Your grading order was received.")
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, orderID, requesterID string, isAdmin bool) (*domain.Order, error) {
	o, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != requesterID && !isAdmin {
		return nil, fmt.Errorf("not your order: %w", domain.ErrForbidden)
	}
	return o, nil
}

// SetStatus advances an order through the grading pipeline and tells the
// customer about it.
func (s *service) SetStatus(ctx context.Context, orderID, statusID string) (*domain.Order, error) {
	st, err := s.statusRepo.Get(ctx, statusID)
	if err != nil {
		return nil, err
	}
	o, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, orderID, map[string]interface{}{fieldStatusID: st.StatusID}); err != nil {
		return nil, err
	}
	o.StatusID = st.StatusID
	s.notify(ctx, o.UserID, o.OrderID, fmt.Sprintf("Order update: %s.", st.Description))
	return o, nil
}

// notify is best-effort: a failed notification write never fails the order
// mutation that triggered it.
func (s *service) notify(ctx context.Context, userID, orderID, message string) {
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		OrderID:        &orderID,
		Message:        message,
		Read:           0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notifRepo.Put(ctx, n); err != nil {
		slog.Warn("failed to write order notification", "order_id", orderID, "err", err)
	}
}
