package order

import (
	"context"
	"errors"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/metrics"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, userID uint, input *CreateInput) (*Order, error)
	Get(ctx context.Context, userID uint, isAdmin bool, orderID uint) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)
	Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint, requested OrderStatus) (*Order, error)
	Update(ctx context.Context, userID uint, isAdmin bool, orderID uint, input *UpdateInput) (*Order, error)
	SetStatus(ctx context.Context, orderID uint, status OrderStatus) (*Order, error)
	Delete(ctx context.Context, userID uint, isAdmin bool, orderID uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create validates the cart shape before any transaction opens; everything
// that needs the database happens inside the repository's transaction.
func (s *service) Create(ctx context.Context, userID uint, input *CreateInput) (*Order, error) {
	if len(input.Items) == 0 {
		metrics.OrdersRejected.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			metrics.OrdersRejected.WithLabelValues("invalid_quantity").Inc()
			return nil, ErrInvalidQuantity
		}
	}

	o, err := s.repo.Create(ctx, userID, input)
	if err != nil {
		var notFound *ProductNotFoundError
		var shortage *InsufficientStockError
		switch {
		case errors.As(err, &notFound):
			metrics.OrdersRejected.WithLabelValues("product_not_found").Inc()
		case errors.As(err, &shortage):
			metrics.OrdersRejected.WithLabelValues("insufficient_stock").Inc()
		}
		return nil, err
	}

	metrics.OrdersCreated.Inc()
	return o, nil
}

func (s *service) Get(ctx context.Context, userID uint, isAdmin bool, orderID uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		return nil, ErrNotOwner
	}
	return o, nil
}

func (s *service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Cancel flips an order to cancelled and returns its stock. The endpoint only
// accepts "cancelled" as the requested status; admins changing status forward
// go through SetStatus, which never touches stock.
func (s *service) Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint, requested OrderStatus) (*Order, error) {
	if requested != StatusCancelled {
		return nil, ErrCancelOnly
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		return nil, ErrNotOwner
	}

	if o.Status.Terminal() {
		return nil, &StatusConflictError{Status: o.Status}
	}

	if err := s.repo.CancelWithRestock(ctx, o); err != nil {
		return nil, err
	}
	o.Status = StatusCancelled

	metrics.OrdersCancelled.Inc()
	logger.FromCtx(ctx).Info("order cancelled",
		zap.Uint("order_id", o.ID),
		zap.Uint("user_id", userID),
		zap.Bool("admin", isAdmin),
	)
	return o, nil
}

// Update edits shipping address and payment method in place. It never touches
// details, stock or the total. Only admins may change status through it.
func (s *service) Update(ctx context.Context, userID uint, isAdmin bool, orderID uint, input *UpdateInput) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && o.UserID != userID {
		return nil, ErrNotOwner
	}
	if !isAdmin && o.Status != StatusPending {
		return nil, ErrNotEditable
	}

	if input.Status != nil {
		if !isAdmin {
			input.Status = nil
		} else if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	return s.repo.Update(ctx, orderID, input)
}

// SetStatus is the admin-only direct status write. It deliberately has no
// stock side effect: only cancellation and deletion restore stock.
func (s *service) SetStatus(ctx context.Context, orderID uint, status OrderStatus) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, orderID)
}

func (s *service) Delete(ctx context.Context, userID uint, isAdmin bool, orderID uint) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !isAdmin && o.UserID != userID {
		return ErrNotOwner
	}
	if !isAdmin && o.Status != StatusPending {
		return ErrNotDeletable
	}

	return s.repo.DeleteWithRestock(ctx, o)
}
