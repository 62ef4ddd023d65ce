package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
)

// settlementColumns selects a settlement together with the ids of the
// bookings that reference it.
const settlementColumns = `s.id, s.place_id, s.amount, s.status, s.created_by, s.created_at,
	ARRAY(SELECT b.id FROM bookings b WHERE b.settlement_id = s.id ORDER BY b.id)`

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var bookingIDs []string
	if err := row.Scan(
		&settlement.ID,
		&settlement.PlaceID,
		&settlement.Amount,
		&settlement.Status,
		&settlement.CreatedBy,
		&settlement.CreatedAt,
		pq.Array(&bookingIDs),
	); err != nil {
		return nil, err
	}
	if bookingIDs == nil {
		bookingIDs = []string{}
	}
	settlement.BookingIDs = bookingIDs
	return settlement, nil
}

// GetSettlement retrieves a settlement by ID with its booking ids.
func (s *PostgresStore) GetSettlement(ctx context.Context, id string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements s WHERE s.id = $1`, id)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get settlement: %w", err))
	}
	return settlement, nil
}

// ListSettlements retrieves a page of a place's settlements, newest first.
func (s *PostgresStore) ListSettlements(ctx context.Context, placeID string, limit, offset int) ([]*models.Settlement, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM settlements WHERE place_id = $1", placeID,
	).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count settlements: %w", err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+settlementColumns+`
		 FROM settlements s WHERE s.place_id = $1
		 ORDER BY s.created_at DESC, s.id
		 LIMIT $2 OFFSET $3`,
		placeID, limit, offset,
	)
	if err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list settlements: %w", err))
	}
	defer rows.Close()

	settlements := []*models.Settlement{}
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to iterate settlements: %w", err))
	}
	return settlements, total, nil
}

// SettlementTotals sums the amounts of a place's settlements.
func (s *PostgresStore) SettlementTotals(ctx context.Context, placeID string) (decimal.Decimal, int, error) {
	var (
		sum   decimal.Decimal
		count int
	)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM settlements WHERE place_id = $1", placeID,
	).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, classify(fmt.Errorf("failed to sum settlements: %w", err))
	}
	return sum, count, nil
}

// ReconciliationTotals reads the three paid amounts of a place in a single
// statement, so all of them come from one snapshot.
func (s *PostgresStore) ReconciliationTotals(ctx context.Context, placeID string) (*models.Reconciliation, error) {
	rec := &models.Reconciliation{PlaceID: placeID}
	if err := s.db.QueryRowContext(ctx,
		`SELECT
		    (SELECT COALESCE(SUM(amount_payable_to_vendor), 0) FROM bookings
		      WHERE place_id = $1 AND settlement_id IS NOT NULL),
		    (SELECT COALESCE(SUM(amount), 0) FROM settlements WHERE place_id = $1),
		    (SELECT COUNT(*) FROM settlements WHERE place_id = $1),
		    COALESCE((SELECT paid_so_far FROM vendors WHERE place_id = $1), 0)`,
		placeID,
	).Scan(&rec.AmountPaid, &rec.SettlementsTotal, &rec.SettlementCount, &rec.PaidSoFar); err != nil {
		return nil, classify(fmt.Errorf("failed to read reconciliation totals: %w", err))
	}
	return rec, nil
}
