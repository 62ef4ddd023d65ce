package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

var _ storage.Tx = (*sqliteTx)(nil)

type sqliteTx struct {
	tx *sql.Tx
}

// LockBookings reads the requested bookings. The immediate transaction already
// holds the database write lock, so no row locking is needed.
func (t *sqliteTx) LockBookings(ctx context.Context, ids []string) ([]*models.Booking, error) {
	if len(ids) == 0 {
		return []*models.Booking{}, nil
	}
	marks, args := placeholders(ids)
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings b LEFT JOIN places p ON p.id = b.place_id
		 WHERE b.id IN (`+marks+`) ORDER BY b.id`,
		args...,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to lock bookings: %w", err))
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

// InsertSettlement persists a settlement row.
func (t *sqliteTx) InsertSettlement(ctx context.Context, settlement *models.Settlement) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO settlements (id, place_id, amount, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.PlaceID, settlement.Amount.String(), settlement.Status,
		settlement.CreatedBy, toMillis(settlement.CreatedAt),
	)
	if err != nil {
		return classify(fmt.Errorf("failed to insert settlement: %w", err))
	}
	return nil
}

// MarkSettled attaches outstanding bookings to a settlement.
func (t *sqliteTx) MarkSettled(ctx context.Context, ids []string, settlementID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	marks, args := placeholders(ids)
	args = append([]any{settlementID}, args...)
	result, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET settlement_id = ? WHERE id IN (`+marks+`) AND settlement_id IS NULL`,
		args...,
	)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to mark bookings settled: %w", err))
	}
	return result.RowsAffected()
}

// IncrementPaid adds amount to the vendor's paid_so_far. The counter is TEXT,
// so the read-add-write happens in Go under the transaction's write lock.
func (t *sqliteTx) IncrementPaid(ctx context.Context, placeID string, amount decimal.Decimal) error {
	var paid decimal.Decimal
	err := t.tx.QueryRowContext(ctx, "SELECT paid_so_far FROM vendors WHERE place_id = ?", placeID).Scan(&paid)
	if err == sql.ErrNoRows {
		return storage.ErrVendorNotFound
	}
	if err != nil {
		return classify(fmt.Errorf("failed to read vendor balance: %w", err))
	}

	_, err = t.tx.ExecContext(ctx,
		"UPDATE vendors SET paid_so_far = ?, updated_at = ? WHERE place_id = ?",
		paid.Add(amount).String(), toMillis(time.Now()), placeID,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to increment vendor balance: %w", err))
	}
	return nil
}

// InsertNotification persists a notification and sets its ID.
func (t *sqliteTx) InsertNotification(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO notifications (place_id, message, is_read, related_entity_type, related_entity_id, created_at)
		 VALUES (?, ?, 0, ?, ?, ?)`,
		notification.PlaceID, notification.Message,
		nullString(notification.RelatedEntityType), nullString(notification.RelatedEntityID),
		toMillis(notification.CreatedAt),
	)
	if err != nil {
		return classify(fmt.Errorf("failed to insert notification: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	notification.ID = id
	return nil
}
