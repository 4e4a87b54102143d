package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"restore/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error to its HTTP status. Errors that are
// not domain errors become a generic 500.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var derr *model.DomainError
	if !errors.As(err, &derr) {
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}
	writeError(w, statusFor(derr.Code), derr.Code, derr.Message, logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeBasketNotFound:
		return http.StatusNotFound
	case model.ErrCodeBasketConflict:
		return http.StatusConflict
	case model.ErrCodePaymentSyncFailed:
		return http.StatusBadGateway
	case model.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// pathID parses the {id} path value as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses a required integer query parameter.
func queryInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, false
	}
	return v, true
}
