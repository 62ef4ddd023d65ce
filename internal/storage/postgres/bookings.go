package postgres

import (
	"context"
	"database/sql"
	"fmt"
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
	if err := row.Scan(
		&booking.ID,
		&booking.PlaceID,
		&booking.PayableAmount,
		&settlementID,
		&booking.CreatedAt,
		&booking.PlaceName,
	); err != nil {
		return nil, err
	}
	if settlementID.Valid {
		booking.SettlementID = &settlementID.String
	}
	return booking, nil
}

func scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
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

// ListBookings retrieves bookings matching the filter, oldest first.
func (s *PostgresStore) ListBookings(ctx context.Context, filter models.BookingFilter) ([]*models.Booking, error) {
	status := filter.Status
	if status == "" {
		status = models.BookingStatusAll
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 LEFT JOIN places p ON p.id = b.place_id
		 WHERE ($1::text = '' OR b.place_id = $1)
		   AND ($2::text = 'all'
		        OR ($2 = 'outstanding' AND b.settlement_id IS NULL)
		        OR ($2 = 'settled' AND b.settlement_id IS NOT NULL))
		 ORDER BY b.created_at, b.id`,
		filter.PlaceID, string(status),
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list bookings: %w", err))
	}
	return scanBookings(rows)
}

// PayoutTotals aggregates bookings per place in one query. NUMERIC sums are
// exact, so the database does the arithmetic.
func (s *PostgresStore) PayoutTotals(ctx context.Context, placeID string) ([]*models.PlaceTotals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.place_id,
		        COALESCE(p.name, ''),
		        COALESCE(v.id, ''),
		        COALESCE(NULLIF(v.vendor_full_name, ''), NULLIF(v.business_name, ''), ''),
		        COUNT(*),
		        COALESCE(SUM(b.amount_payable_to_vendor), 0),
		        COALESCE(SUM(b.amount_payable_to_vendor) FILTER (WHERE b.settlement_id IS NOT NULL), 0)
		 FROM bookings b
		 LEFT JOIN places p ON p.id = b.place_id
		 LEFT JOIN vendors v ON v.place_id = b.place_id
		 WHERE ($1::text = '' OR b.place_id = $1)
		 GROUP BY b.place_id, p.name, v.id, v.vendor_full_name, v.business_name
		 ORDER BY b.place_id`,
		placeID,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to aggregate payouts: %w", err))
	}
	defer rows.Close()

	totals := []*models.PlaceTotals{}
	for rows.Next() {
		t := &models.PlaceTotals{}
		if err := rows.Scan(
			&t.PlaceID,
			&t.PlaceName,
			&t.VendorID,
			&t.VendorName,
			&t.NumBookings,
			&t.TotalAmount,
			&t.AmountPaid,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payout totals: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate payout totals: %w", err))
	}
	return totals, nil
}

// CreatePlace inserts a place.
func (s *PostgresStore) CreatePlace(ctx context.Context, place *models.Place) error {
	if place.ID == "" {
		place.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, "INSERT INTO places (id, name) VALUES ($1, $2)", place.ID, place.Name)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}
	return nil
}

// CreateBooking inserts a booking.
func (s *PostgresStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
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
		 VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.PlaceID, booking.PayableAmount, booking.SettlementID, booking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}
