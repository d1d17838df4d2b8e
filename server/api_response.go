package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	apperrors "github.com/tangerineshop/shop-server/internal/errors"
	"github.com/tangerineshop/shop-server/session"
	"github.com/tangerineshop/shop-server/token"
)

// apiResponse is the envelope every JSON endpoint answers with. Data and
// Error are mutually exclusive.
type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

// apiError carries a stable machine-readable code alongside the message, so
// frontend behaviour never depends on error message wording.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(apiResponse{
		Error: &apiError{Code: code, Message: err.Error()},
	})
	if encodeErr != nil {
		log.Error().Err(encodeErr).Msg("failed to encode error response")
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, token.ErrExpiredCredential):
		return http.StatusUnauthorized, "TOKEN_EXPIRED"
	case errors.Is(err, token.ErrMalformedCredential):
		return http.StatusUnauthorized, "TOKEN_INVALID"
	case errors.Is(err, session.ErrMissingIdentity):
		return http.StatusUnauthorized, "TOKEN_INVALID"
	case errors.Is(err, session.ErrNoActiveSession):
		return http.StatusUnauthorized, "NO_ACTIVE_SESSION"
	case errors.Is(err, session.ErrSessionExpired):
		return http.StatusUnauthorized, "SESSION_EXPIRED"
	case errors.Is(err, session.ErrIdentityNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return http.StatusConflict, "USER_ALREADY_EXISTS"
	case errors.Is(err, apperrors.ErrUserNotDeletable):
		return http.StatusForbidden, "USER_NOT_DELETABLE"
	case errors.Is(err, apperrors.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		return http.StatusNotFound, "CATEGORY_NOT_FOUND"
	case errors.Is(err, apperrors.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND"
	case errors.Is(err, apperrors.ErrInvalidQuantity):
		return http.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, apperrors.ErrInvalidMileage):
		return http.StatusBadRequest, "INVALID_MILEAGE"
	case errors.Is(err, apperrors.ErrOrderCancelFailed):
		return http.StatusConflict, "ORDER_CANCEL_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Error: &apiError{Code: "BAD_REQUEST", Message: message},
	})
}
