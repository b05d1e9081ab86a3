package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/logger"
	"github.com/febrianchrisna/Sweet-Bakery-Project/internal/transport"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func parseID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := transport.GetUserIDFromContext(r.Context())

	var input CreateInput
	if err := transport.Decode(r, &input); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.Create(r.Context(), userID, &input)
	if err != nil {
		var notFound *ProductNotFoundError
		var shortage *InsufficientStockError
		switch {
		case errors.Is(err, ErrEmptyCart):
			transport.Error(w, http.StatusBadRequest, "Order must contain at least one item")
		case errors.Is(err, ErrInvalidQuantity):
			transport.Error(w, http.StatusBadRequest, "Quantity must be greater than zero")
		case errors.As(err, &notFound):
			transport.Error(w, http.StatusNotFound, notFound.Error())
		case errors.As(err, &shortage):
			transport.JSON(w, http.StatusBadRequest, map[string]interface{}{
				"message":                   "Some products have insufficient stock",
				"insufficientStockProducts": shortage.Items,
			})
		default:
			logger.FromCtx(r.Context()).Error("create order failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   o,
	})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("list orders failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	if orders == nil {
		orders = []*Order{}
	}
	transport.JSON(w, http.StatusOK, orders)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, _ := transport.GetUserIDFromContext(r.Context())

	orders, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		logger.FromCtx(r.Context()).Error("list user orders failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	if orders == nil {
		orders = []*Order{}
	}
	transport.JSON(w, http.StatusOK, orders)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	userID, _ := transport.GetUserIDFromContext(r.Context())
	o, err := h.svc.Get(r.Context(), userID, transport.IsAdmin(r.Context()), orderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrNotOwner):
			transport.Error(w, http.StatusForbidden, "Not authorized to view this order")
		default:
			logger.FromCtx(r.Context()).Error("get order failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusOK, o)
}

type cancelRequest struct {
	Status OrderStatus `json:"status"`
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req cancelRequest
	if err := transport.Decode(r, &req); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := transport.GetUserIDFromContext(r.Context())
	o, err := h.svc.Cancel(r.Context(), userID, transport.IsAdmin(r.Context()), orderID, req.Status)
	if err != nil {
		var conflict *StatusConflictError
		switch {
		case errors.Is(err, ErrCancelOnly):
			transport.Error(w, http.StatusForbidden,
				"Users can only cancel orders. Other status changes require admin privileges.")
		case errors.Is(err, ErrOrderNotFound):
			transport.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrNotOwner):
			transport.Error(w, http.StatusForbidden, "Not authorized to modify this order")
		case errors.As(err, &conflict):
			transport.Error(w, http.StatusBadRequest, conflict.Error())
		default:
			logger.FromCtx(r.Context()).Error("cancel order failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   o,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var input UpdateInput
	if err := transport.Decode(r, &input); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := transport.GetUserIDFromContext(r.Context())
	o, err := h.svc.Update(r.Context(), userID, transport.IsAdmin(r.Context()), orderID, &input)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrNotOwner):
			transport.Error(w, http.StatusForbidden, "Not authorized to modify this order")
		case errors.Is(err, ErrNotEditable):
			transport.Error(w, http.StatusBadRequest, "Only pending orders can be edited")
		case errors.Is(err, ErrInvalidStatus):
			transport.Error(w, http.StatusBadRequest, "Invalid order status")
		default:
			logger.FromCtx(r.Context()).Error("update order failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order updated successfully",
		"order":   o,
	})
}

type setStatusRequest struct {
	Status OrderStatus `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req setStatusRequest
	if err := transport.Decode(r, &req); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.SetStatus(r.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrInvalidStatus):
			transport.Error(w, http.StatusBadRequest, "Invalid order status")
		default:
			logger.FromCtx(r.Context()).Error("set order status failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   o,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	userID, _ := transport.GetUserIDFromContext(r.Context())
	err = h.svc.Delete(r.Context(), userID, transport.IsAdmin(r.Context()), orderID)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			transport.Error(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, ErrNotOwner):
			transport.Error(w, http.StatusForbidden, "Not authorized to delete this order")
		case errors.Is(err, ErrNotDeletable):
			transport.Error(w, http.StatusBadRequest,
				"Only pending orders can be deleted. Please cancel the order instead.")
		default:
			logger.FromCtx(r.Context()).Error("delete order failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.Message(w, http.StatusOK, "Order deleted successfully")
}
