package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spotnere/admin-api/internal/models"
)

const bookingColumns = `b.id, b.place_id, b.amount_payable_to_vendor, b.settlement_id, b.created_at, COALESCE(p.name, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var settlementID sql.NullString
	var createdAt int64
	if err := row.Scan(
		&booking.ID,
		&booking.PlaceID,
		&booking.PayableAmount,
		&settlementID,
		&createdAt,
		&booking.PlaceName,
	); err != nil {
		return nil, err
	}
	booking.SettlementID = stringPtr(settlementID)
	booking.CreatedAt = fromMillis(createdAt)
	return booking, nil
}

// ListBookings retrieves bookings matching the filter, oldest first.
func (s *SQLiteStore) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	var (
		where []string
		args  []any
	)
	if filter.PlaceID != "" {
		where = append(where, "b.place_id = ?")
		args = append(args, filter.PlaceID)
	}
	switch filter.Status {
	case models.BookingStatusOutstanding:
		where = append(where, "b.settlement_id IS NULL")
	case models.BookingStatusSettled:
		where = append(where, "b.settlement_id IS NOT NULL")
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings b LEFT JOIN places p ON p.id = b.place_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY b.created_at, b.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list bookings: %w", err))
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate bookings: %w", err))
	}

	return bookings, nil
}

// PayoutTotals aggregates bookings per place. SQLite has no exact decimal
// SUM, so the tally happens in Go over the raw rows.
func (s *SQLiteStore) PayoutTotals(ctx context.Context, placeID string) ([]*models.PlaceTotals, error) {
	bookings, err := s.ListBookings(ctx, models.BookingFilter{PlaceID: placeID, Status: models.BookingStatusAll})
	if err != nil {
		return nil, err
	}
	totals := models.TallyBookings(bookings)

	for _, t := range totals {
		vendor, err := s.GetVendor(ctx, t.PlaceID)
		if err != nil {
			return nil, err
		}
		if vendor != nil {
			t.VendorID = vendor.ID
			t.VendorName = vendor.DisplayName()
		}
	}

	return totals, nil
}

// CreatePlace inserts a place.
func (s *SQLiteStore) CreatePlace(ctx context.Context, place *models.Place) error {
	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO places (id, name) VALUES (?, ?)", place.ID, place.Name)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// CreateBooking inserts a booking. Settled bookings may be seeded only if
// their settlement already exists.
func (s *SQLiteStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	if booking.PayableAmount.IsNegative() {
		return fmt.Errorf("payable amount must not be negative: %s", booking.PayableAmount)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (id, place_id, amount_payable_to_vendor, settlement_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		booking.ID, booking.PlaceID, booking.PayableAmount.String(), nullString(booking.SettlementID), toMillis(booking.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}
