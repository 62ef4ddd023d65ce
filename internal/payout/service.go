// Package payout derives per-place payout summaries from bookings.
package payout

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

// ErrInvalidStatus is returned for an unknown booking status filter
var ErrInvalidStatus = errors.New("status must be one of outstanding, settled, all")

// Service computes payout views. Nothing is cached; every call reads the
// store, so a committed settlement is visible to the next read.
type Service struct {
	store storage.Store
}

// NewService creates a new payout service
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// ListPayoutSummaries returns one summary per place with at least one
// booking, ordered by place id.
func (s *Service) ListPayoutSummaries(ctx context.Context) ([]*models.PayoutSummary, error) {
	totals, err := s.store.PayoutTotals(ctx, "")
	if err != nil {
		return nil, err
	}

	summaries := make([]*models.PayoutSummary, len(totals))
	for i, t := range totals {
		summaries[i] = summarize(t)
	}
	return summaries, nil
}

// GetPayoutSummary returns the summary of one place. A place without
// bookings gets a zero summary.
func (s *Service) GetPayoutSummary(ctx context.Context, placeID string) (*models.PayoutSummary, error) {
	totals, err := s.store.PayoutTotals(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		return summarize(totals[0]), nil
	}

	empty := &models.PlaceTotals{PlaceID: placeID}
	vendor, err := s.store.GetVendor(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if vendor != nil {
		empty.VendorID = vendor.ID
		empty.VendorName = vendor.DisplayName()
	}
	return empty.Summary(), nil
}

func summarize(t *models.PlaceTotals) *models.PayoutSummary {
	summary := t.Summary()
	if !summary.Conserved() {
		slog.Error("Payout summary is not conserved",
			"place_id", summary.PlaceID,
			"total_amount", summary.TotalAmount.String(),
			"amount_paid", summary.AmountPaid.String(),
			"balance", summary.Balance.String(),
		)
	}
	return summary
}

// ListOutstandingBookings returns the place's unsettled bookings, oldest
// first. An unknown place yields an empty list.
func (s *Service) ListOutstandingBookings(ctx context.Context, placeID string) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx, models.BookingFilter{PlaceID: placeID, Status: models.BookingStatusOutstanding})
}

// ListBookings returns bookings filtered by place and status. An empty status
// means outstanding when a place is given and all otherwise.
func (s *Service) ListBookings(ctx context.Context, placeID, status string) ([]*models.Booking, error) {
	filter := models.BookingFilter{
		PlaceID: strings.TrimSpace(placeID),
		Status:  models.BookingStatus(strings.ToLower(strings.TrimSpace(status))),
	}
	if filter.Status == "" {
		filter.Status = models.BookingStatusAll
		if filter.PlaceID != "" {
			filter.Status = models.BookingStatusOutstanding
		}
	}
	if !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.store.ListBookings(ctx, filter)
}

// Reconcile compares the settled bookings, the settlement records and the
// vendor's paid_so_far counter of a place. All three agree unless a payment
// was recorded outside the settlement flow.
func (s *Service) Reconcile(ctx context.Context, placeID string) (*models.Reconciliation, error) {
	rec, err := s.store.ReconciliationTotals(ctx, placeID)
	if err != nil {
		return nil, err
	}
	rec.Check()

	if !rec.Consistent {
		slog.Warn("Payout records disagree",
			"place_id", placeID,
			"amount_paid", rec.AmountPaid.String(),
			"settlements_total", rec.SettlementsTotal.String(),
			"paid_so_far", rec.PaidSoFar.String(),
		)
	}
	return rec, nil
}
