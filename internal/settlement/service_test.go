package settlement

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/events"
	"github.com/spotnere/admin-api/internal/metrics"
	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/internal/storage/storagetest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []events.SettlementCommitted
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	if ev, ok := v.(events.SettlementCommitted); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// faultyStore fails one step of the settlement transaction
type faultyStore struct {
	storage.Store
	failOn  string
	placeID string
	err     error
}

func (s *faultyStore) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	if s.failOn == "begin" {
		return s.err
	}
	return s.Store.WithTx(ctx, func(tx storage.Tx) error {
		return fn(&faultyTx{Tx: tx, failOn: s.failOn, placeID: s.placeID, err: s.err})
	})
}

type faultyTx struct {
	storage.Tx
	failOn  string
	placeID string
	err     error
}

// MarkSettled with failOn "race" lets another settlement take the first
// booking just before the update, as a concurrent writer would.
func (t *faultyTx) MarkSettled(ctx context.Context, ids []string, settlementID string) (int64, error) {
	if t.failOn == "race" {
		other := &models.Settlement{
			ID:        "other-settlement",
			PlaceID:   t.placeID,
			Amount:    decimal.Zero,
			Status:    models.SettlementStatusCommitted,
			CreatedBy: "other",
			CreatedAt: time.Now().UTC(),
		}
		if err := t.Tx.InsertSettlement(ctx, other); err != nil {
			return 0, err
		}
		if _, err := t.Tx.MarkSettled(ctx, ids[:1], other.ID); err != nil {
			return 0, err
		}
	}
	return t.Tx.MarkSettled(ctx, ids, settlementID)
}

func (t *faultyTx) IncrementPaid(ctx context.Context, placeID string, amount decimal.Decimal) error {
	if t.failOn == "increment" {
		return t.err
	}
	return t.Tx.IncrementPaid(ctx, placeID, amount)
}

func (t *faultyTx) InsertNotification(ctx context.Context, n *models.Notification) error {
	if t.failOn == "notification" {
		return t.err
	}
	return t.Tx.InsertNotification(ctx, n)
}

func newTestService(t *testing.T, store storage.Store) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewService(store, pub, metrics.New(prometheus.NewRegistry()), Options{Timeout: 5 * time.Second, MaxBatch: 10})
	return svc, pub
}

func outstandingIDs(t *testing.T, store storage.Store, placeID string) []string {
	t.Helper()
	bookings, err := store.ListBookings(context.Background(), models.BookingFilter{PlaceID: placeID, Status: models.BookingStatusOutstanding})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}

func paidSoFar(t *testing.T, store storage.Store, placeID string) string {
	t.Helper()
	v, err := store.GetVendor(context.Background(), placeID)
	if err != nil || v == nil {
		t.Fatalf("GetVendor failed: %v", err)
	}
	return v.PaidSoFar.StringFixed(2)
}

func assertKind(t *testing.T, err, kind error) *Error {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	return serr
}

func TestService_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("commits selected bookings", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, pub := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")

		st, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(1, 0), "ops")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if !st.Amount.Equal(storagetest.Dec("300")) {
			t.Errorf("expected amount 300, got %s", st.Amount)
		}
		if st.CreatedBy != "ops" || st.Status != models.SettlementStatusCommitted {
			t.Errorf("unexpected settlement %+v", st)
		}
		if len(st.BookingIDs) != 2 {
			t.Errorf("expected 2 settled bookings, got %v", st.BookingIDs)
		}

		if got := outstandingIDs(t, store, f.Place.ID); len(got) != 1 || got[0] != f.Bookings[2].ID {
			t.Errorf("expected only booking 3 outstanding, got %v", got)
		}
		if got := paidSoFar(t, store, f.Place.ID); got != "300.00" {
			t.Errorf("expected paid_so_far 300.00, got %s", got)
		}

		stored, err := svc.GetByID(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if !stored.Amount.Equal(st.Amount) || len(stored.BookingIDs) != 2 {
			t.Errorf("stored settlement mismatch: %+v", stored)
		}

		count, err := store.UnreadNotificationCount(ctx, f.Place.ID)
		if err != nil {
			t.Fatalf("UnreadNotificationCount failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 vendor notification, got %d", count)
		}

		if len(pub.events) != 1 || pub.keys[0] != events.RoutingKeySettled || pub.events[0].SettlementID != st.ID {
			t.Errorf("expected one settled event, got keys=%v events=%+v", pub.keys, pub.events)
		}
	})

	t.Run("rejects already settled bookings", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, pub := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")

		if _, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0, 1), "ops"); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}

		_, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0, 2), "ops")
		serr := assertKind(t, err, ErrAlreadySettled)
		if len(serr.BookingIDs) != 1 || serr.BookingIDs[0] != f.Bookings[0].ID {
			t.Errorf("expected booking 1 to be named, got %v", serr.BookingIDs)
		}

		if got := paidSoFar(t, store, f.Place.ID); got != "300.00" {
			t.Errorf("expected paid_so_far unchanged at 300.00, got %s", got)
		}
		if got := outstandingIDs(t, store, f.Place.ID); len(got) != 1 {
			t.Errorf("expected booking 3 still outstanding, got %v", got)
		}
		if len(pub.events) != 1 {
			t.Errorf("expected no event for the rejected call, got %d", len(pub.events))
		}
	})

	t.Run("rejects unknown bookings without side effects", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")

		_, err := svc.Settle(ctx, f.Place.ID, []string{f.Bookings[2].ID, "booking_99"}, "ops")
		serr := assertKind(t, err, ErrInvalidRequest)
		if len(serr.BookingIDs) != 1 || serr.BookingIDs[0] != "booking_99" {
			t.Errorf("expected booking_99 to be named, got %v", serr.BookingIDs)
		}
		if got := outstandingIDs(t, store, f.Place.ID); len(got) != 3 {
			t.Errorf("expected all bookings outstanding, got %v", got)
		}
	})

	t.Run("rejects bookings of another place", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		a := storagetest.SeedPlace(t, store, "Arena", "100")
		b := storagetest.SeedPlace(t, store, "Court", "50")

		_, err := svc.Settle(ctx, a.Place.ID, []string{a.Bookings[0].ID, b.Bookings[0].ID}, "ops")
		serr := assertKind(t, err, ErrInvalidRequest)
		if len(serr.BookingIDs) != 1 || serr.BookingIDs[0] != b.Bookings[0].ID {
			t.Errorf("expected foreign booking to be named, got %v", serr.BookingIDs)
		}
		if got := outstandingIDs(t, store, b.Place.ID); len(got) != 1 {
			t.Errorf("foreign booking must stay outstanding, got %v", got)
		}
	})

	t.Run("invalid selections", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100")

		tooMany := make([]string, 11)
		for i := range tooMany {
			tooMany[i] = fmt.Sprintf("b%02d", i)
		}

		tests := []struct {
			name    string
			placeID string
			ids     []string
		}{
			{"empty selection", f.Place.ID, []string{}},
			{"nil selection", f.Place.ID, nil},
			{"blank id", f.Place.ID, []string{f.Bookings[0].ID, "  "}},
			{"blank place", " ", []string{f.Bookings[0].ID}},
			{"batch too large", f.Place.ID, tooMany},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Settle(ctx, tt.placeID, tt.ids, "ops")
				assertKind(t, err, ErrInvalidRequest)
			})
		}
	})

	t.Run("duplicate ids are settled once", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100", "200")

		id := f.Bookings[0].ID
		st, err := svc.Settle(ctx, f.Place.ID, []string{id, id, " " + id}, "ops")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if len(st.BookingIDs) != 1 || !st.Amount.Equal(storagetest.Dec("100")) {
			t.Errorf("expected one booking of 100, got %+v", st)
		}
	})

	t.Run("place without vendor", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlaceWithoutVendor(t, store, "Orphan", "100")

		_, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0), "ops")
		assertKind(t, err, ErrInvalidRequest)
		if got := outstandingIDs(t, store, f.Place.ID); len(got) != 1 {
			t.Errorf("booking must stay outstanding, got %v", got)
		}
	})

	t.Run("zero amount bookings", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "0", "0.00")

		st, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0, 1), "ops")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if !st.Amount.IsZero() {
			t.Errorf("expected zero amount, got %s", st.Amount)
		}
	})

	t.Run("event failure does not undo the settlement", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, pub := newTestService(t, store)
		pub.err = errors.New("broker down")
		f := storagetest.SeedPlace(t, store, "Arena", "100")

		if _, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0), "ops"); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if got := outstandingIDs(t, store, f.Place.ID); len(got) != 0 {
			t.Errorf("expected booking settled, got outstanding %v", got)
		}
	})

	t.Run("default operator", func(t *testing.T) {
		store := storagetest.NewSQLite(t)
		svc, _ := newTestService(t, store)
		f := storagetest.SeedPlace(t, store, "Arena", "100")

		st, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0), "")
		if err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if st.CreatedBy != "system" {
			t.Errorf("expected system operator, got %q", st.CreatedBy)
		}
	})
}

func TestService_Settle_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	boom := fmt.Errorf("%w: connection reset", storage.ErrUnavailable)

	for _, step := range []string{"begin", "increment", "notification"} {
		t.Run("failure at "+step, func(t *testing.T) {
			backend := storagetest.NewSQLite(t)
			f := storagetest.SeedPlace(t, backend, "Arena", "100", "200")
			svc, pub := newTestService(t, &faultyStore{Store: backend, failOn: step, err: boom})

			_, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0, 1), "ops")
			assertKind(t, err, ErrUnavailable)
			if !errors.Is(err, storage.ErrUnavailable) {
				t.Errorf("expected the store fault to stay in the chain, got %v", err)
			}

			if got := outstandingIDs(t, backend, f.Place.ID); len(got) != 2 {
				t.Errorf("expected both bookings outstanding, got %v", got)
			}
			if got := paidSoFar(t, backend, f.Place.ID); got != "0.00" {
				t.Errorf("expected paid_so_far 0.00, got %s", got)
			}
			_, total, err := backend.ListSettlements(ctx, f.Place.ID, 10, 0)
			if err != nil {
				t.Fatalf("ListSettlements failed: %v", err)
			}
			if total != 0 {
				t.Errorf("expected no settlement rows, got %d", total)
			}
			if len(pub.events) != 0 {
				t.Errorf("expected no events, got %d", len(pub.events))
			}
		})
	}
}

func TestService_Settle_LostRaceNamesTakenBookings(t *testing.T) {
	store := storagetest.NewSQLite(t)
	f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")
	svc, _ := newTestService(t, &faultyStore{Store: store, failOn: "race", placeID: f.Place.ID})

	ids := f.BookingIDs(0, 1, 2)
	slices.Sort(ids)
	_, err := svc.Settle(context.Background(), f.Place.ID, ids, "ops")
	serr := assertKind(t, err, ErrAlreadySettled)
	if len(serr.BookingIDs) != 1 || serr.BookingIDs[0] != ids[0] {
		t.Errorf("expected only %s to be reported, got %v", ids[0], serr.BookingIDs)
	}
	if got := outstandingIDs(t, store, f.Place.ID); len(got) != 3 {
		t.Errorf("expected all bookings outstanding after rollback, got %v", got)
	}
}

func TestService_Settle_CancelledContext(t *testing.T) {
	store := storagetest.NewSQLite(t)
	svc, _ := newTestService(t, store)
	f := storagetest.SeedPlace(t, store, "Arena", "100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0), "ops")
	assertKind(t, err, ErrUnavailable)
	if got := outstandingIDs(t, store, f.Place.ID); len(got) != 1 {
		t.Errorf("expected booking outstanding, got %v", got)
	}
}

// newTestServices builds one service per store handle on a shared database
// file, so concurrent settles only meet in SQLite's locking.
func newTestServices(t *testing.T, n int) ([]*Service, storagetest.Backend) {
	t.Helper()
	handles := storagetest.NewSQLiteHandles(t, n)
	svcs := make([]*Service, n)
	for i, h := range handles {
		svcs[i], _ = newTestService(t, h)
	}
	return svcs, handles[0]
}

func TestService_Settle_Concurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("overlapping selections settle once", func(t *testing.T) {
		svcs, store := newTestServices(t, 2)
		f := storagetest.SeedPlace(t, store, "Arena", "100", "200", "300")

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			rejected  int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids := f.BookingIDs(0, 1)
				if i%2 == 1 {
					ids = f.BookingIDs(1, 2)
				}
				_, err := svcs[i%len(svcs)].Settle(ctx, f.Place.ID, ids, "ops")

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, ErrAlreadySettled):
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if succeeded != 1 || rejected != workers-1 {
			t.Errorf("expected exactly one winner, got %d succeeded, %d rejected", succeeded, rejected)
		}

		bookings, err := store.ListBookings(ctx, models.BookingFilter{PlaceID: f.Place.ID, Status: models.BookingStatusSettled})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		paid := models.SumPayable(bookings)
		if got := paidSoFar(t, store, f.Place.ID); got != paid.StringFixed(2) {
			t.Errorf("paid_so_far %s does not match settled bookings %s", got, paid.StringFixed(2))
		}
	})

	t.Run("disjoint selections all commit", func(t *testing.T) {
		svcs, store := newTestServices(t, 2)
		f := storagetest.SeedPlace(t, store, "Arena", "10", "20", "30", "40", "50", "60")

		var wg sync.WaitGroup
		errs := make([]error, len(f.Bookings))
		for i := range f.Bookings {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svcs[i%len(svcs)].Settle(ctx, f.Place.ID, f.BookingIDs(i), "ops")
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("settle %d failed: %v", i, err)
			}
		}
		if got := paidSoFar(t, store, f.Place.ID); got != "210.00" {
			t.Errorf("expected paid_so_far 210.00, got %s", got)
		}
		_, total, err := store.ListSettlements(ctx, f.Place.ID, 10, 0)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if total != len(f.Bookings) {
			t.Errorf("expected %d settlements, got %d", len(f.Bookings), total)
		}
	})
}

func TestService_GetByID_NotFound(t *testing.T) {
	store := storagetest.NewSQLite(t)
	svc, _ := newTestService(t, store)

	if _, err := svc.GetByID(context.Background(), "missing"); !errors.Is(err, ErrSettlementNotFound) {
		t.Errorf("expected ErrSettlementNotFound, got %v", err)
	}
}

func TestService_ListByPlace_HugePage(t *testing.T) {
	ctx := context.Background()
	store := storagetest.NewSQLite(t)
	svc, _ := newTestService(t, store)
	f := storagetest.SeedPlace(t, store, "Arena", "100")
	if _, err := svc.Settle(ctx, f.Place.ID, f.BookingIDs(0), "ops"); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	list, total, err := svc.ListByPlace(ctx, f.Place.ID, math.MaxInt, 20)
	if err != nil {
		t.Fatalf("ListByPlace failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
	if len(list) != 0 {
		t.Errorf("expected an empty page past the end, got %d settlements", len(list))
	}
}

func TestNormalizeIDs(t *testing.T) {
	ids, err := normalizeIDs([]string{"c", "a", " b ", "a"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, ids)
	}
}

func TestError_Message(t *testing.T) {
	err := alreadySettled("bookings are already settled", []string{"b1", "b2"})
	if got := err.Error(); got != "already settled: bookings are already settled [b1, b2]" {
		t.Errorf("unexpected message %q", got)
	}
	if !errors.Is(err, ErrAlreadySettled) || errors.Is(err, ErrInvalidRequest) {
		t.Error("errors.Is must match only the kind")
	}
}
