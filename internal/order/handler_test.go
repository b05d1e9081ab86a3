package order

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/transport"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID uint, input *CreateInput) (*Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, userID uint, isAdmin bool, orderID uint) (*Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockService) ListAll(ctx context.Context) ([]*Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockService) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockService) Cancel(ctx context.Context, userID uint, isAdmin bool, orderID uint, requested OrderStatus) (*Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderID, requested)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, userID uint, isAdmin bool, orderID uint, input *UpdateInput) (*Order, error) {
	args := m.Called(ctx, userID, isAdmin, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockService) SetStatus(ctx context.Context, orderID uint, status OrderStatus) (*Order, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, userID uint, isAdmin bool, orderID uint) error {
	args := m.Called(ctx, userID, isAdmin, orderID)
	return args.Error(0)
}

func newTestRouter(h *Handler, userID uint, role string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := transport.SetUserContext(req.Context(), userID, "test@example.com", role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/orders", h.Create)
	r.Get("/orders", h.ListAll)
	r.Get("/orders/{id}", h.Get)
	r.Get("/user/orders", h.ListMine)
	r.Put("/user/orders/{id}/cancel", h.Cancel)
	r.Put("/user/orders/{id}", h.Update)
	r.Put("/orders/{id}/status", h.SetStatus)
	r.Delete("/user/orders/{id}", h.Delete)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		created := &Order{ID: 10, UserID: 7, TotalAmount: 20000, Status: StatusPending}
		svc.On("Create", mock.Anything, uint(7), mock.AnythingOfType("*order.CreateInput")).
			Return(created, nil)

		rec := doJSON(t, router, http.MethodPost, "/orders", map[string]any{
			"items": []map[string]any{{"productId": 1, "quantity": 2}},
		})

		assert.Equal(t, http.StatusCreated, rec.Code)

		var body struct {
			Message string `json:"message"`
			Order   *Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Order created successfully", body.Message)
		assert.Equal(t, uint(10), body.Order.ID)
		assert.Equal(t, 20000.0, body.Order.TotalAmount)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		shortage := &InsufficientStockError{Items: []InsufficientStockItem{
			{ID: 1, Name: "Croissant", Available: 5, Requested: 10},
		}}
		svc.On("Create", mock.Anything, uint(7), mock.Anything).Return(nil, shortage)

		rec := doJSON(t, router, http.MethodPost, "/orders", map[string]any{
			"items": []map[string]any{{"productId": 1, "quantity": 10}},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Message  string                  `json:"message"`
			Products []InsufficientStockItem `json:"insufficientStockProducts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Some products have insufficient stock", body.Message)
		require.Len(t, body.Products, 1)
		assert.Equal(t, "Croissant", body.Products[0].Name)
		assert.Equal(t, 5, body.Products[0].Available)
		assert.Equal(t, 10, body.Products[0].Requested)
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Create", mock.Anything, uint(7), mock.Anything).
			Return(nil, &ProductNotFoundError{ProductID: 99})

		rec := doJSON(t, router, http.MethodPost, "/orders", map[string]any{
			"items": []map[string]any{{"productId": 99, "quantity": 1}},
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Product with ID 99 not found")
	})

	t.Run("EmptyCart", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Create", mock.Anything, uint(7), mock.Anything).Return(nil, ErrEmptyCart)

		rec := doJSON(t, router, http.MethodPost, "/orders", map[string]any{"items": []any{}})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Order must contain at least one item")
	})
}

func TestHandler_Get(t *testing.T) {
	t.Run("Forbidden", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 8, transport.RoleCustomer)

		svc.On("Get", mock.Anything, uint(8), false, uint(10)).Return(nil, ErrNotOwner)

		rec := doJSON(t, router, http.MethodGet, "/orders/10", nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not authorized to view this order")
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Get", mock.Anything, uint(7), false, uint(99)).Return(nil, ErrOrderNotFound)

		rec := doJSON(t, router, http.MethodGet, "/orders/99", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Order not found")
	})

	t.Run("AdminSeesAny", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 99, transport.RoleAdmin)

		stored := &Order{ID: 10, UserID: 7}
		svc.On("Get", mock.Anything, uint(99), true, uint(10)).Return(stored, nil)

		rec := doJSON(t, router, http.MethodGet, "/orders/10", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandler_Cancel(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		cancelled := &Order{ID: 10, UserID: 7, Status: StatusCancelled}
		svc.On("Cancel", mock.Anything, uint(7), false, uint(10), StatusCancelled).
			Return(cancelled, nil)

		rec := doJSON(t, router, http.MethodPut, "/user/orders/10/cancel", map[string]any{
			"status": "cancelled",
		})

		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Message string `json:"message"`
			Order   *Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Order status updated successfully", body.Message)
		assert.Equal(t, StatusCancelled, body.Order.Status)
	})

	t.Run("NonCancelStatusForbidden", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Cancel", mock.Anything, uint(7), false, uint(10), StatusCompleted).
			Return(nil, ErrCancelOnly)

		rec := doJSON(t, router, http.MethodPut, "/user/orders/10/cancel", map[string]any{
			"status": "completed",
		})

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Users can only cancel orders")
	})

	t.Run("AlreadyTerminal", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Cancel", mock.Anything, uint(7), false, uint(10), StatusCancelled).
			Return(nil, &StatusConflictError{Status: StatusCompleted})

		rec := doJSON(t, router, http.MethodPut, "/user/orders/10/cancel", map[string]any{
			"status": "cancelled",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Cannot cancel an order that is already completed")
	})
}

func TestHandler_Update(t *testing.T) {
	t.Run("NonPendingRejected", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Update", mock.Anything, uint(7), false, uint(10), mock.Anything).
			Return(nil, ErrNotEditable)

		rec := doJSON(t, router, http.MethodPut, "/user/orders/10", map[string]any{
			"shipping_address": "Jl. Baru 2",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Only pending orders can be edited")
	})

	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		updated := &Order{ID: 10, UserID: 7, Status: StatusPending, ShippingAddress: strPtr("Jl. Baru 2")}
		svc.On("Update", mock.Anything, uint(7), false, uint(10),
			mock.MatchedBy(func(in *UpdateInput) bool {
				return in.ShippingAddress != nil && *in.ShippingAddress == "Jl. Baru 2"
			})).Return(updated, nil)

		rec := doJSON(t, router, http.MethodPut, "/user/orders/10", map[string]any{
			"shipping_address": "Jl. Baru 2",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Order updated successfully")
	})
}

func TestHandler_SetStatus(t *testing.T) {
	svc := new(MockService)
	router := newTestRouter(NewHandler(svc), 99, transport.RoleAdmin)

	updated := &Order{ID: 10, Status: StatusProcessing}
	svc.On("SetStatus", mock.Anything, uint(10), StatusProcessing).Return(updated, nil)

	rec := doJSON(t, router, http.MethodPut, "/orders/10/status", map[string]any{
		"status": "processing",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Order status updated successfully")
}

func TestHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Delete", mock.Anything, uint(7), false, uint(10)).Return(nil)

		rec := doJSON(t, router, http.MethodDelete, "/user/orders/10", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Order deleted successfully")
	})

	t.Run("NonPendingRejected", func(t *testing.T) {
		svc := new(MockService)
		router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

		svc.On("Delete", mock.Anything, uint(7), false, uint(10)).Return(ErrNotDeletable)

		rec := doJSON(t, router, http.MethodDelete, "/user/orders/10", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Only pending orders can be deleted")
	})
}

func TestHandler_ListMine(t *testing.T) {
	svc := new(MockService)
	router := newTestRouter(NewHandler(svc), 7, transport.RoleCustomer)

	svc.On("ListByUser", mock.Anything, uint(7)).Return(nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/user/orders", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
