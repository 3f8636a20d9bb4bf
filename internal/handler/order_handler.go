package handler

import (
	"net/http"

	"glamgo/internal/model"
	"glamgo/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /api/orders. The caller's cart becomes the order.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), id, &req)
	if err != nil {
		if de, ok := model.AsDomainError(err); ok && de.Kind == model.KindInsufficientStock {
			writeJSON(w, http.StatusConflict, insufficientStockResponse{
				ErrorResponse: model.ErrorResponse{Error: de.Code, Message: de.Message},
				ProductID:     de.ProductID,
				ProductName:   de.ProductName,
			})
			return
		}
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// insufficientStockResponse names the product so the client can point at the line.
type insufficientStockResponse struct {
	model.ErrorResponse
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// List handles GET /api/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /api/orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	orderID, err := pathUUID(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id.UserID, orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /api/orders/{id}/status. Role checks happen in the router.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathUUID(r, "id", model.ErrOrderNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), orderID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
