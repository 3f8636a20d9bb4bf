package handler

import (
	"net/http"

	"glamgo/internal/model"
	"glamgo/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the caller's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.GetCart(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.AddItem(r.Context(), id.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PATCH /api/cart/items/{id}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	itemID, err := pathUUID(r, "id", model.ErrCartItemNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), id.UserID, itemID, req.Quantity)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// RemoveItem handles DELETE /api/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	itemID, err := pathUUID(r, "id", model.ErrCartItemNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), id.UserID, itemID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Clear(r.Context(), id.UserID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Count handles GET /api/cart/count.
func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	count, err := h.service.ItemCount(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
