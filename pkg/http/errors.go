package http

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Success    bool   `json:"success"`              // Always false
	Error      string `json:"error"`                // Human-readable message
	Code       string `json:"code,omitempty"`       // Machine-readable error code
	Field      string `json:"field,omitempty"`      // Offending input field, if any
	RetryAfter int    `json:"retryAfter,omitempty"` // Seconds until a retry may succeed
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteErrorResponse(w, statusCode, ErrorResponse{Code: errorCode, Error: message})
}

// WriteFieldError writes a 400 response that names the invalid input field
func WriteFieldError(w http.ResponseWriter, field, message string) {
	WriteErrorResponse(w, http.StatusBadRequest, ErrorResponse{Code: "validation_error", Error: message, Field: field})
}

// WriteErrorResponse writes a fully populated error body
func WriteErrorResponse(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	resp.Success = false
	if resp.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not exposed to the client
	_ = json.NewEncoder(w).Encode(resp)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string, retryAfter int) {
	WriteErrorResponse(w, http.StatusTooManyRequests, ErrorResponse{
		Code:       "rate_limit_exceeded",
		Error:      message,
		RetryAfter: retryAfter,
	})
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}
