package product

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &Filter{}

	if category := q.Get("category"); category != "" {
		filter.Category = &category
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}
	if search := q.Get("search"); search != "" {
		filter.Search = &search
	}

	products, err := h.svc.List(r.Context(), filter)
	if err != nil {
		logger.FromCtx(r.Context()).Error("list products failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	if products == nil {
		products = []*Product{}
	}
	transport.JSON(w, http.StatusOK, products)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			transport.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.FromCtx(r.Context()).Error("get product failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	transport.JSON(w, http.StatusOK, p)
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("list categories failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	if categories == nil {
		categories = []string{}
	}
	transport.JSON(w, http.StatusOK, categories)
}

type createRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Image       *string `json:"image"`
	Category    string  `json:"category"`
	Featured    bool    `json:"featured"`
	Stock       int     `json:"stock"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := transport.Decode(r, &req); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := &Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Featured:    req.Featured,
		Stock:       req.Stock,
	}
	if err := h.svc.Create(r.Context(), p); err != nil {
		if errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrInvalidStock) {
			transport.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.FromCtx(r.Context()).Error("create product failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	transport.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var input UpdateInput
	if err := transport.Decode(r, &input); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			transport.Error(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidStock):
			transport.Error(w, http.StatusBadRequest, err.Error())
		default:
			logger.FromCtx(r.Context()).Error("update product failed", zap.Error(err))
			transport.ServerError(w)
		}
		return
	}

	transport.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			transport.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		logger.FromCtx(r.Context()).Error("delete product failed", zap.Error(err))
		transport.ServerError(w)
		return
	}

	transport.Message(w, http.StatusOK, "Product deleted successfully")
}
