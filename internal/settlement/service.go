package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spotnere/admin-api/internal/events"
	"github.com/spotnere/admin-api/internal/metrics"
	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBatch = 500
)

// maxPage keeps (page-1)*perPage well inside int range.
const maxPage = 100000

// Options bounds settle calls
type Options struct {
	Timeout  time.Duration // whole settle call, including lock waits
	MaxBatch int           // distinct booking ids per call
}

// Service commits settlements: it marks bookings settled, records the
// settlement and moves the vendor's paid counter in one transaction.
type Service struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
}

// NewService creates a new settlement service. publisher and m may be nil.
func NewService(store storage.Store, publisher events.Publisher, m *metrics.Metrics, opts Options) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
		now:       time.Now,
	}
}

// Settle pays out the given outstanding bookings of a place. Either every
// booking is settled under one new settlement, or nothing changes and an
// *Error explains why.
func (s *Service) Settle(ctx context.Context, placeID string, bookingIDs []string, operatorID string) (*models.Settlement, error) {
	start := time.Now()
	settlement, err := s.settle(ctx, placeID, bookingIDs, operatorID)
	s.metrics.ObserveSettle(outcome(err), time.Since(start))

	if err != nil {
		attrs := []any{"place_id", placeID, "operator_id", operatorID, "error", err}
		if errors.Is(err, ErrUnavailable) {
			slog.Error("Settlement failed", attrs...)
		} else {
			slog.Warn("Settlement rejected", attrs...)
		}
		return nil, err
	}

	s.metrics.RecordSettlement(settlement.Amount, len(settlement.BookingIDs))
	s.publish(ctx, settlement)

	slog.Info("Settlement committed",
		"settlement_id", settlement.ID,
		"place_id", settlement.PlaceID,
		"amount", settlement.Amount.String(),
		"bookings", len(settlement.BookingIDs),
		"operator_id", operatorID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return settlement, nil
}

func (s *Service) settle(ctx context.Context, placeID string, bookingIDs []string, operatorID string) (*models.Settlement, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, invalidRequest("place id is required", nil)
	}
	ids, err := normalizeIDs(bookingIDs, s.opts.MaxBatch)
	if err != nil {
		return nil, err
	}
	if operatorID == "" {
		operatorID = "system"
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	var settlement *models.Settlement
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		bookings, err := tx.LockBookings(ctx, ids)
		if err != nil {
			return err
		}
		if err := checkSelection(placeID, ids, bookings); err != nil {
			return err
		}

		settlement = &models.Settlement{
			ID:         uuid.NewString(),
			PlaceID:    placeID,
			BookingIDs: ids,
			Amount:     models.SumPayable(bookings),
			Status:     models.SettlementStatusCommitted,
			CreatedBy:  operatorID,
			CreatedAt:  s.now().UTC(),
		}
		if err := tx.InsertSettlement(ctx, settlement); err != nil {
			return err
		}

		// Second guard behind the row locks: only outstanding rows change.
		n, err := tx.MarkSettled(ctx, ids, settlement.ID)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return lostRace(ctx, tx, ids, settlement.ID)
		}

		if err := tx.IncrementPaid(ctx, placeID, settlement.Amount); err != nil {
			if errors.Is(err, storage.ErrVendorNotFound) {
				return invalidRequest("no vendor registered for place", nil)
			}
			return err
		}

		return tx.InsertNotification(ctx, settlementNotification(settlement))
	})
	if err != nil {
		return nil, classify(err)
	}

	return settlement, nil
}

// normalizeIDs trims, dedupes and sorts the selection. Sorted ids give every
// transaction the same lock order.
func normalizeIDs(bookingIDs []string, maxBatch int) ([]string, error) {
	ids := make([]string, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, invalidRequest("booking ids must not be blank", nil)
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if len(ids) == 0 {
		return nil, invalidRequest("no bookings selected", nil)
	}
	if len(ids) > maxBatch {
		return nil, invalidRequest(fmt.Sprintf("at most %d bookings can be settled at once", maxBatch), nil)
	}
	return ids, nil
}

// checkSelection verifies that every requested booking exists, belongs to the
// place and is outstanding. bookings are the locked rows that were found.
func checkSelection(placeID string, ids []string, bookings []*models.Booking) error {
	found := make(map[string]*models.Booking, len(bookings))
	for _, b := range bookings {
		found[b.ID] = b
	}

	var unknown, settled []string
	for _, id := range ids {
		b, ok := found[id]
		switch {
		case !ok, b.PlaceID != placeID:
			unknown = append(unknown, id)
		case !b.Outstanding():
			settled = append(settled, id)
		}
	}

	if len(unknown) > 0 {
		return invalidRequest("bookings do not exist for this place", unknown)
	}
	if len(settled) > 0 {
		return alreadySettled("bookings are already settled", settled)
	}
	return nil
}

// lostRace reports the bookings that another settlement took between the lock
// and the update.
func lostRace(ctx context.Context, tx storage.Tx, ids []string, settlementID string) error {
	bookings, err := tx.LockBookings(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[string]*models.Booking, len(bookings))
	for _, b := range bookings {
		found[b.ID] = b
	}

	var taken []string
	for _, id := range ids {
		b, ok := found[id]
		if !ok || (b.SettlementID != nil && *b.SettlementID != settlementID) {
			taken = append(taken, id)
		}
	}
	return alreadySettled("bookings were settled by a concurrent request", taken)
}

func settlementNotification(st *models.Settlement) *models.Notification {
	entityType := string(models.NotificationEntitySettlement)
	entityID := st.ID
	return &models.Notification{
		PlaceID:           st.PlaceID,
		Message:           fmt.Sprintf("Payout of ₹%s settled for %d booking(s)", st.Amount.StringFixed(2), len(st.BookingIDs)),
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
		CreatedAt:         st.CreatedAt,
	}
}

// publish announces a committed settlement. The settlement is already
// durable, so a broker failure is only logged.
func (s *Service) publish(ctx context.Context, st *models.Settlement) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err := s.publisher.PublishJSON(ctx, events.RoutingKeySettled, events.SettlementCommitted{
		SettlementID: st.ID,
		PlaceID:      st.PlaceID,
		Amount:       st.Amount,
		BookingIDs:   st.BookingIDs,
		CreatedBy:    st.CreatedBy,
		CreatedAt:    st.CreatedAt,
	})
	if err != nil {
		slog.Warn("Failed to publish settlement event", "settlement_id", st.ID, "error", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCommitted
	case errors.Is(err, ErrInvalidRequest):
		return metrics.OutcomeInvalidRequest
	case errors.Is(err, ErrAlreadySettled):
		return metrics.OutcomeAlreadySettled
	default:
		return metrics.OutcomeUnavailable
	}
}

// GetByID retrieves a settlement
func (s *Service) GetByID(ctx context.Context, id string) (*models.Settlement, error) {
	settlement, err := s.store.GetSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByPlace retrieves a page of a place's settlements, newest first
func (s *Service) ListByPlace(ctx context.Context, placeID string, page, perPage int) ([]*models.Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListSettlements(ctx, placeID, perPage, offset)
}
