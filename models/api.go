package models

import (
	"errors"
	"net/http"
)

// APIResponse is a generic structure for all API responses
type APIResponse struct {
	Status  string      `json:"status"`            // "success" or "error"
	Code    int         `json:"code"`              // HTTP status code (200, 400, 500, etc.)
	Message string      `json:"message,omitempty"` // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Any response data (can be map, struct, list, etc.)
	Error   *APIError   `json:"error,omitempty"`   // Detailed error info (nil if success)
}

// APIError holds detailed error information
type APIError struct {
	Type    string `json:"type,omitempty"`    // e.g., "ValidationError", "DatabaseError"
	Details string `json:"details,omitempty"` // More context about the error
	Field   string `json:"field,omitempty"`   // For validation errors (which field failed)
}

// StatusCode maps an error to the HTTP status the API answers with
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse builds the error envelope for err
func ErrorResponse(message string, err error) APIResponse {
	code := StatusCode(err)
	apiErr := &APIError{
		Type:    ErrorType(err),
		Details: err.Error(),
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		apiErr.Field = ve.Field
	}
	return APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Error:   apiErr,
	}
}
