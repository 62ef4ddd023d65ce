package settlement

import (
	"errors"
	"strings"
)

// Failure kinds of a settle call. Match with errors.Is.
var (
	// ErrInvalidRequest: empty selection, unknown bookings, bookings of
	// another place, or a place without a vendor. Not retryable unchanged.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadySettled: at least one selected booking is already settled.
	// The caller should refresh the outstanding list.
	ErrAlreadySettled = errors.New("already settled")

	// ErrUnavailable: the store failed or timed out. Nothing was written and
	// the same request may be retried.
	ErrUnavailable = errors.New("settlement temporarily unavailable")
)

// ErrSettlementNotFound is returned by lookups of unknown settlement ids
var ErrSettlementNotFound = errors.New("settlement not found")

// Error is a failed settle call
type Error struct {
	Kind       error
	Message    string
	BookingIDs []string

	cause error
}

func (e *Error) Error() string {
	msg := e.Kind.Error() + ": " + e.Message
	if len(e.BookingIDs) > 0 {
		msg += " [" + strings.Join(e.BookingIDs, ", ") + "]"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

func invalidRequest(message string, bookingIDs []string) *Error {
	return &Error{Kind: ErrInvalidRequest, Message: message, BookingIDs: bookingIDs}
}

func alreadySettled(message string, bookingIDs []string) *Error {
	return &Error{Kind: ErrAlreadySettled, Message: message, BookingIDs: bookingIDs}
}

func unavailable(cause error) *Error {
	return &Error{
		Kind:    ErrUnavailable,
		Message: "the settlement could not be completed, retry later",
		cause:   cause,
	}
}

// classify returns err as an *Error. Anything that is not already a domain
// failure is an infrastructure fault.
func classify(err error) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	return unavailable(err)
}
