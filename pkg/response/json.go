package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Error codes shared by every endpoint
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeAlreadySettled = "ALREADY_SETTLED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_ERROR"
)

// TotalCountHeader carries the unpaged size of list responses
const TotalCountHeader = "X-Total-Count"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents an error response
type APIError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	BookingIDs []string `json:"booking_ids,omitempty"`
}

// JSON sends data as the response body with the given status code
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// JSONWithTotal sends one page of a list and the total item count
func JSONWithTotal(w http.ResponseWriter, status int, data any, total int) {
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	JSON(w, status, data)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	ErrorWithBookings(w, status, code, message, nil)
}

// ErrorWithBookings sends an error response naming the offending bookings
func ErrorWithBookings(w http.ResponseWriter, status int, code, message string, bookingIDs []string) {
	JSON(w, status, ErrorResponse{
		Error: &APIError{
			Code:       code,
			Message:    message,
			BookingIDs: bookingIDs,
		},
	})
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, CodeInvalidRequest, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, CodeNotFound, message)
}

func Unavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, CodeUnavailable, message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, CodeInternal, message)
}
