package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

var _ storage.Tx = (*postgresTx)(nil)

type postgresTx struct {
	tx *sql.Tx
}

// LockBookings takes row locks on the requested bookings in id order, so two
// settlements over overlapping sets queue instead of deadlocking. A waiter
// re-reads the row after the holder commits and sees its settlement_id.
func (t *postgresTx) LockBookings(ctx context.Context, ids []string) ([]*models.Booking, error) {
	if len(ids) == 0 {
		return []*models.Booking{}, nil
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 LEFT JOIN places p ON p.id = b.place_id
		 WHERE b.id = ANY($1)
		 ORDER BY b.id
		 FOR UPDATE OF b`,
		pq.Array(ids),
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to lock bookings: %w", err))
	}
	return scanBookings(rows)
}

// InsertSettlement persists a settlement row.
func (t *postgresTx) InsertSettlement(ctx context.Context, settlement *models.Settlement) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO settlements (id, place_id, amount, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		settlement.ID, settlement.PlaceID, settlement.Amount, settlement.Status,
		settlement.CreatedBy, settlement.CreatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to insert settlement: %w", err))
	}
	return nil
}

// MarkSettled attaches outstanding bookings to a settlement.
func (t *postgresTx) MarkSettled(ctx context.Context, ids []string, settlementID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET settlement_id = $1 WHERE id = ANY($2) AND settlement_id IS NULL`,
		settlementID, pq.Array(ids),
	)
	if err != nil {
		return 0, classify(fmt.Errorf("failed to mark bookings settled: %w", err))
	}
	return result.RowsAffected()
}

// IncrementPaid adds amount to the vendor's paid_so_far in place.
func (t *postgresTx) IncrementPaid(ctx context.Context, placeID string, amount decimal.Decimal) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE vendors SET paid_so_far = paid_so_far + $2, updated_at = NOW() WHERE place_id = $1`,
		placeID, amount,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to increment vendor balance: %w", err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrVendorNotFound
	}
	return nil
}

// InsertNotification persists a notification and sets its ID.
func (t *postgresTx) InsertNotification(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO notifications (place_id, message, is_read, related_entity_type, related_entity_id, created_at)
		 VALUES ($1, $2, FALSE, $3, $4, $5)
		 RETURNING id`,
		notification.PlaceID, notification.Message,
		notification.RelatedEntityType, notification.RelatedEntityID, notification.CreatedAt,
	).Scan(&notification.ID)
	if err != nil {
		return classify(fmt.Errorf("failed to insert notification: %w", err))
	}
	return nil
}
