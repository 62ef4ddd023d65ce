package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
)

// GetSettlement retrieves a settlement by ID with its booking ids.
func (s *SQLiteStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var createdAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, place_id, amount, status, created_by, created_at FROM settlements WHERE id = ?`,
		id,
	).Scan(&settlement.ID, &settlement.PlaceID, &settlement.Amount, &settlement.Status, &settlement.CreatedBy, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get settlement: %w", err))
	}
	settlement.CreatedAt = fromMillis(createdAt)

	if err := s.attachBookingIDs(ctx, []*models.Settlement{settlement}); err != nil {
		return nil, err
	}
	return settlement, nil
}

// ListSettlements retrieves a page of a place's settlements, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, placeID string, limit, offset int) ([]*models.Settlement, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settlements WHERE place_id = ?", placeID,
	).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count settlements: %w", err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, place_id, amount, status, created_by, created_at
		 FROM settlements WHERE place_id = ?
		 ORDER BY created_at DESC, id
		 LIMIT ? OFFSET ?`,
		placeID, limit, offset,
	)
	if err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list settlements: %w", err))
	}

	settlements := []*models.Settlement{}
	for rows.Next() {
		settlement := &models.Settlement{}
		var createdAt int64
		if err := rows.Scan(&settlement.ID, &settlement.PlaceID, &settlement.Amount, &settlement.Status, &settlement.CreatedBy, &createdAt); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.CreatedAt = fromMillis(createdAt)
		settlements = append(settlements, settlement)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to iterate settlements: %w", err))
	}

	if err := s.attachBookingIDs(ctx, settlements); err != nil {
		return nil, 0, err
	}
	return settlements, total, nil
}

// SettlementTotals sums the amounts of a place's settlements.
func (s *SQLiteStore) SettlementTotals(ctx context.Context, placeID string) (decimal.Decimal, int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT amount FROM settlements WHERE place_id = ?", placeID)
	if err != nil {
		return decimal.Zero, 0, classify(fmt.Errorf("failed to sum settlements: %w", err))
	}
	defer rows.Close()

	sum := decimal.Zero
	count := 0
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, 0, fmt.Errorf("failed to scan settlement amount: %w", err)
		}
		sum = sum.Add(amount)
		count++
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, 0, classify(fmt.Errorf("failed to iterate settlement amounts: %w", err))
	}
	return sum, count, nil
}

// attachBookingIDs fills BookingIDs from bookings.settlement_id.
func (s *SQLiteStore) attachBookingIDs(ctx context.Context, settlements []*models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}
	byID := make(map[string]*models.Settlement, len(settlements))
	ids := make([]string, len(settlements))
	for i, st := range settlements {
		st.BookingIDs = []string{}
		byID[st.ID] = st
		ids[i] = st.ID
	}

	marks, args := placeholders(ids)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, settlement_id FROM bookings WHERE settlement_id IN ("+marks+") ORDER BY id",
		args...,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to get settled bookings: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID, settlementID string
		if err := rows.Scan(&bookingID, &settlementID); err != nil {
			return fmt.Errorf("failed to scan settled booking: %w", err)
		}
		if st, ok := byID[settlementID]; ok {
			st.BookingIDs = append(st.BookingIDs, bookingID)
		}
	}
	if err := rows.Err(); err != nil {
		return classify(fmt.Errorf("failed to iterate settled bookings: %w", err))
	}
	return nil
}

// ReconciliationTotals reads the three paid amounts of a place inside one
// transaction, so no settlement can commit between the reads.
func (s *SQLiteStore) ReconciliationTotals(ctx context.Context, placeID string) (*models.Reconciliation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	rec := &models.Reconciliation{PlaceID: placeID}
	rec.AmountPaid, _, err = sumAmounts(ctx, tx,
		"SELECT amount_payable_to_vendor FROM bookings WHERE place_id = ? AND settlement_id IS NOT NULL", placeID)
	if err != nil {
		return nil, err
	}
	rec.SettlementsTotal, rec.SettlementCount, err = sumAmounts(ctx, tx,
		"SELECT amount FROM settlements WHERE place_id = ?", placeID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, "SELECT paid_so_far FROM vendors WHERE place_id = ?", placeID).Scan(&rec.PaidSoFar)
	if err != nil && err != sql.ErrNoRows {
		return nil, classify(fmt.Errorf("failed to read paid_so_far: %w", err))
	}
	return rec, nil
}

// sumAmounts adds up the single decimal column returned by query.
func sumAmounts(ctx context.Context, tx *sql.Tx, query string, args ...any) (decimal.Decimal, int, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, 0, classify(fmt.Errorf("failed to sum amounts: %w", err))
	}
	defer rows.Close()

	sum := decimal.Zero
	count := 0
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, 0, fmt.Errorf("failed to scan amount: %w", err)
		}
		sum = sum.Add(amount)
		count++
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, 0, classify(fmt.Errorf("failed to iterate amounts: %w", err))
	}
	return sum, count, nil
}
