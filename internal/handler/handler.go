package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"glamgo/internal/middleware"
	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errInvalidJSON = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Invalid request body")

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful can reach the client.
		return
	}
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindInsufficientStock, model.KindConflict:
		return http.StatusConflict
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnauthorised:
		return http.StatusUnauthorized
	case model.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status and code of a domain error. Any other
// error is logged and reported as a generic failure.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Something went wrong. Please try again.",
		})
		return
	}

	status := statusFor(de.Kind)
	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", de.Code).Int("status", status).Msg(de.Message)

	writeJSON(w, status, model.ErrorResponse{Error: de.Code, Message: de.Message})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// identity returns the caller placed in the context by middleware.Auth.
func identity(r *http.Request) (model.Identity, error) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return model.Identity{}, model.ErrUnauthorised
	}
	return id, nil
}

// pathUUID parses a UUID path parameter, reporting notFound when it is malformed.
func pathUUID(r *http.Request, name string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("Invalid " + name + " parameter")
	}
	return n, nil
}
