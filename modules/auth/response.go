package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/credkit/pkg/validator"
)

var errMalformedBody = errors.New("malformed request body")

// jsonResponse is the envelope every endpoint writes.
type jsonResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonResponse{Data: data})
}

// writeError maps domain errors to HTTP statuses and stable error codes.
// Anything unmapped is reported as an opaque internal error so storage and
// driver details never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := &errorDetail{Code: "internal_error", Message: "internal server error"}

	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
		status = http.StatusUnprocessableEntity
		detail.Code = "validation_error"
		detail.Message = "validation failed"
		detail.Details = make(map[string][]string, len(verrs.Fields()))
		for _, field := range verrs.Fields() {
			detail.Details[field] = verrs.Get(field)
		}
	} else {
		switch {
		case errors.Is(err, errMalformedBody):
			status = http.StatusBadRequest
			detail.Code = "bad_request"
			detail.Message = errMalformedBody.Error()
		case errors.Is(err, ErrEmailAlreadyExists):
			status = http.StatusConflict
			detail.Code = "email_already_exists"
			detail.Message = err.Error()
		case errors.Is(err, ErrInvalidCredentials):
			status = http.StatusUnauthorized
			detail.Code = "invalid_credentials"
			detail.Message = err.Error()
		case errors.Is(err, ErrEmailNotVerified):
			status = http.StatusForbidden
			detail.Code = "email_not_verified"
			detail.Message = err.Error()
		case errors.Is(err, ErrTokenExpired):
			status = http.StatusBadRequest
			detail.Code = "token_expired"
			detail.Message = err.Error()
		case errors.Is(err, ErrTokenInvalid):
			status = http.StatusBadRequest
			detail.Code = "invalid_token"
			detail.Message = err.Error()
		case errors.Is(err, ErrAlreadyVerified):
			status = http.StatusBadRequest
			detail.Code = "already_verified"
			detail.Message = err.Error()
		case errors.Is(err, ErrAccountNotFound):
			status = http.StatusNotFound
			detail.Code = "account_not_found"
			detail.Message = err.Error()
		case errors.Is(err, ErrNotificationFailed):
			status = http.StatusInternalServerError
			detail.Code = "notification_failed"
			detail.Message = err.Error()
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonResponse{Error: detail})
}
