package handler

import (
	"errors"
	"io"
	"net/http"

	"glamgo/internal/model"
	"glamgo/internal/service"

	"github.com/rs/zerolog"
)

// photoField is the multipart field carrying a profile photo.
const photoField = "photo"

// multipartOverhead allows for boundaries and part headers around the photo.
const multipartOverhead = 64 << 10

var errPhotoMissing = model.NewValidationError("A photo file is required in the \"photo\" field")

// AuthHandler handles sign-up, sign-in and the caller's profile.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Google handles POST /api/auth/google.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req model.GoogleSignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	resp, err := h.service.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.Me(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/me.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id.UserID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UploadPhoto handles POST /api/me/photo with a multipart "photo" file.
func (h *AuthHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxProfilePhotoBytes+multipartOverhead)
	file, header, err := r.FormFile(photoField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, model.NewValidationError("Profile photo must be 5 MB or smaller"), h.logger)
			return
		}
		writeError(w, errPhotoMissing, h.logger)
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the service to reject it.
	body, err := io.ReadAll(io.LimitReader(file, service.MaxProfilePhotoBytes+1))
	if err != nil {
		writeError(w, errPhotoMissing, h.logger)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}

	user, err := h.service.UploadProfilePhoto(r.Context(), id.UserID, contentType, body)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
