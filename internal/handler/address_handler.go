package handler

import (
	"net/http"

	"glamgo/internal/model"
	"glamgo/internal/service"

	"github.com/rs/zerolog"
)

// AddressHandler handles the caller's delivery addresses.
type AddressHandler struct {
	service service.AddressService
	logger  zerolog.Logger
}

// NewAddressHandler creates a new address handler.
func NewAddressHandler(service service.AddressService, logger zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		service: service,
		logger:  logger.With().Str("handler", "address").Logger(),
	}
}

// List handles GET /api/addresses.
func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	addresses, err := h.service.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, addresses)
}

// Get handles GET /api/addresses/{id}.
func (h *AddressHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	addressID, err := pathUUID(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Get(r.Context(), id.UserID, addressID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, address)
}

// GetDefault handles GET /api/addresses/default.
func (h *AddressHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.GetDefault(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, address)
}

// Create handles POST /api/addresses.
func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var form model.AddressForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Add(r.Context(), id.UserID, &form)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, address)
}

// Update handles PATCH /api/addresses/{id}.
func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	addressID, err := pathUUID(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var update model.AddressUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeError(w, err, h.logger)
		return
	}

	address, err := h.service.Update(r.Context(), id.UserID, addressID, &update)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, address)
}

// Delete handles DELETE /api/addresses/{id}.
func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	addressID, err := pathUUID(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id.UserID, addressID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDefault handles POST /api/addresses/{id}/default.
func (h *AddressHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	addressID, err := pathUUID(r, "id", model.ErrAddressNotFound)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.service.SetDefault(r.Context(), id.UserID, addressID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
