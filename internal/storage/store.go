// Package storage defines the contracts the payout engine needs from its
// backing store. Implementations live in the postgres and sqlite subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
)

var (
	// ErrUnavailable marks infrastructure faults: timeouts, lock timeouts,
	// deadlocks, lost connections. Callers may retry unchanged.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrVendorNotFound is returned by IncrementPaid when the place has no vendor
	ErrVendorNotFound = errors.New("vendor not found")
)

// BookingStore is the read side of the booking table
type BookingStore interface {
	// ListBookings returns bookings matching the filter, oldest first.
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error)

	// PayoutTotals aggregates bookings per place. An empty placeID covers
	// every place that has at least one booking.
	PayoutTotals(ctx context.Context, placeID string) ([]*models.PlaceTotals, error)
}

// VendorDirectory reads vendor profiles. Returns nil, nil when the place has no vendor.
type VendorDirectory interface {
	GetVendor(ctx context.Context, placeID string) (*models.Vendor, error)
}

// SettlementStore reads committed settlements
type SettlementStore interface {
	// GetSettlement returns nil, nil when the settlement does not exist.
	GetSettlement(ctx context.Context, id string) (*models.Settlement, error)

	// ListSettlements returns a page of the place's settlements, newest first,
	// and the total count.
	ListSettlements(ctx context.Context, placeID string, limit, offset int) ([]*models.Settlement, int, error)

	// SettlementTotals returns the sum and count of the place's settlements.
	SettlementTotals(ctx context.Context, placeID string) (decimal.Decimal, int, error)

	// ReconciliationTotals reads the settled booking amount, the settlement
	// records and the vendor's paid_so_far from one consistent snapshot.
	// Consistent is left for the caller to set.
	ReconciliationTotals(ctx context.Context, placeID string) (*models.Reconciliation, error)
}

// NotificationStore reads and updates vendor notifications
type NotificationStore interface {
	GetNotification(ctx context.Context, id int64) (*models.Notification, error)
	ListNotifications(ctx context.Context, placeID string, limit, offset int, unreadOnly bool) ([]*models.Notification, int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context, placeID string) error
	UnreadNotificationCount(ctx context.Context, placeID string) (int, error)
}

// Tx is the write side of a settlement. All methods run inside one
// transaction opened by Store.WithTx.
type Tx interface {
	// LockBookings locks and returns the bookings with the given ids, in id
	// order. Ids that do not exist are simply absent from the result.
	LockBookings(ctx context.Context, ids []string) ([]*models.Booking, error)

	// InsertSettlement persists the settlement row. BookingIDs are not stored
	// here; they follow from MarkSettled.
	InsertSettlement(ctx context.Context, settlement *models.Settlement) error

	// MarkSettled sets settlement_id on every listed booking that is still
	// outstanding and returns the number of rows changed.
	MarkSettled(ctx context.Context, ids []string, settlementID string) (int64, error)

	// IncrementPaid adds amount to the vendor's paid_so_far counter.
	// Returns ErrVendorNotFound when the place has no vendor.
	IncrementPaid(ctx context.Context, placeID string, amount decimal.Decimal) error

	// InsertNotification persists a notification and sets its ID.
	InsertNotification(ctx context.Context, notification *models.Notification) error
}

// Store is the full storage contract
type Store interface {
	BookingStore
	VendorDirectory
	SettlementStore
	NotificationStore

	// WithTx runs fn in a single transaction. The transaction commits only
	// if fn returns nil; otherwise it is rolled back and fn's error returned.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any resources held by the store.
	Close() error
}

// Seeder creates the records the engine treats as external. Used by tests and
// the seed command.
type Seeder interface {
	CreatePlace(ctx context.Context, place *models.Place) error
	CreateVendor(ctx context.Context, vendor *models.Vendor) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
}
