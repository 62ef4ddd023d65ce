package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus filters bookings by settlement state
type BookingStatus string

const (
	BookingStatusAll         BookingStatus = "all"
	BookingStatusOutstanding BookingStatus = "outstanding"
	BookingStatusSettled     BookingStatus = "settled"
)

// Valid reports whether s is a known status filter
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusAll, BookingStatusOutstanding, BookingStatusSettled:
		return true
	}
	return false
}

// Booking is one reservation against one place
type Booking struct {
	ID            string          `json:"id"`
	PlaceID       string          `json:"place_id"`
	PayableAmount decimal.Decimal `json:"payable_amount"`
	SettlementID  *string         `json:"settlement_id"` // nil while outstanding
	CreatedAt     time.Time       `json:"created_at"`

	// Populated via JOIN
	PlaceName string `json:"place_name,omitempty"`
}

// Outstanding reports whether the booking is still owed to the vendor
func (b *Booking) Outstanding() bool {
	return b.SettlementID == nil
}

// BookingFilter narrows a booking listing. An empty PlaceID matches every place.
type BookingFilter struct {
	PlaceID string
	Status  BookingStatus
}

// Matches reports whether b passes the filter
func (f BookingFilter) Matches(b *Booking) bool {
	if f.PlaceID != "" && b.PlaceID != f.PlaceID {
		return false
	}
	switch f.Status {
	case BookingStatusOutstanding:
		return b.Outstanding()
	case BookingStatusSettled:
		return !b.Outstanding()
	}
	return true
}
