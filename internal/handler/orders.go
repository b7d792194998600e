package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/muze-cafe/api/internal/database"
	"github.com/muze-cafe/api/internal/service"
	"github.com/muze-cafe/api/internal/validate"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	ListActiveOrders(ctx context.Context) ([]*service.OrderDetail, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next database.OrderStatus) (*service.OrderDetail, error)
	TodayStats(ctx context.Context) (*service.Stats, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterPublicRoutes registers the customer-facing read route.
// Creation is registered separately so it can carry its own rate limit.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
}

// RegisterStaffRoutes registers the routes behind staff authentication.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/active", h.ListActive)
	r.Get("/stats", h.Stats)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderResponse struct {
	ID           uuid.UUID `json:"id"`
	PickupNumber int32     `json:"pickup_number"`
	Message      string    `json:"message"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Message string            `json:"message"`
	Order   service.OrderView `json:"order"`
}

type statsResponse struct {
	Date       string `json:"date"`
	OrderCount int32  `json:"order_count"`
	Revenue    string `json:"revenue"`
}

type validationErrorResponse struct {
	Error  string                `json:"error"`
	Errors []validate.FieldError `json:"errors"`
}

// --- Handlers ---

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if writeDecodeError(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Error:  "invalid order data",
			Errors: []validate.FieldError{{Path: "body", Message: "must be valid JSON"}},
		})
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")

	result, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		var verr *validate.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, validationErrorResponse{Error: "invalid order data", Errors: verr.Fields})
			return
		}
		logrus.WithError(err).Error("create order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, createOrderResponse{
		ID:           result.Order.ID,
		PickupNumber: result.Order.PickupNumber,
		Message:      "Order created successfully",
	})
}

// ListActive handles GET /api/orders/active.
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListActiveOrders(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list active orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]service.OrderView, len(orders))
	for i, o := range orders {
		resp[i] = o.View()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	// Malformed ids are indistinguishable from unknown ones.
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	order, err := h.svc.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		logrus.WithError(err).WithField("order_id", orderID).Error("get order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, order.View())
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if writeDecodeError(w, err) {
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	updated, err := h.svc.UpdateStatus(r.Context(), orderID, database.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		case errors.Is(err, service.ErrOrderNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrStatusConflict):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			logrus.WithError(err).WithField("order_id", orderID).Error("update order status")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, updateStatusResponse{
		Message: "Order status updated",
		Order:   updated.View(),
	})
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.TodayStats(r.Context())
	if err != nil {
		logrus.WithError(err).Error("order stats")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Date:       stats.Date,
		OrderCount: stats.OrderCount,
		Revenue:    stats.Revenue.StringFixed(2),
	})
}
