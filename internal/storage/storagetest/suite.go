package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

var (
	errRollback  = errors.New("rollback requested")
	errContended = errors.New("bookings already settled")
)

// RunStoreSuite exercises the storage contract against a backend.
func RunStoreSuite(t *testing.T, open Opener) {
	ctx := context.Background()
	newStore := func(t *testing.T) Backend {
		return open(t, 1)[0]
	}

	t.Run("ListBookings filters by place and status", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100", "200", "300")
		SeedPlace(t, store, "Court", "50")

		settle(t, store, a, a.BookingIDs(1))

		all, err := store.ListBookings(ctx, models.BookingFilter{Status: models.BookingStatusAll})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 bookings, got %d", len(all))
		}

		outstanding, err := store.ListBookings(ctx, models.BookingFilter{PlaceID: a.Place.ID, Status: models.BookingStatusOutstanding})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(outstanding) != 2 {
			t.Fatalf("expected 2 outstanding bookings, got %d", len(outstanding))
		}
		if outstanding[0].ID != a.Bookings[0].ID || outstanding[1].ID != a.Bookings[2].ID {
			t.Errorf("expected oldest-first outstanding bookings, got %s, %s", outstanding[0].ID, outstanding[1].ID)
		}
		if outstanding[0].PlaceName != "Arena" {
			t.Errorf("expected place name to be joined, got %q", outstanding[0].PlaceName)
		}
		if !outstanding[0].PayableAmount.Equal(Dec("100")) {
			t.Errorf("expected payable amount 100, got %s", outstanding[0].PayableAmount)
		}

		settled, err := store.ListBookings(ctx, models.BookingFilter{PlaceID: a.Place.ID, Status: models.BookingStatusSettled})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(settled) != 1 || settled[0].SettlementID == nil {
			t.Errorf("expected 1 settled booking with a settlement id, got %+v", settled)
		}

		none, err := store.ListBookings(ctx, models.BookingFilter{PlaceID: "no-such-place", Status: models.BookingStatusAll})
		if err != nil {
			t.Fatalf("ListBookings failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("expected no bookings for unknown place, got %d", len(none))
		}
	})

	t.Run("PayoutTotals sums exact decimals", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "0.10", "0.20", "0.30")
		SeedPlaceWithoutVendor(t, store, "Court", "19.99")

		settle(t, store, a, a.BookingIDs(0, 1))

		totals, err := store.PayoutTotals(ctx, "")
		if err != nil {
			t.Fatalf("PayoutTotals failed: %v", err)
		}
		if len(totals) != 2 {
			t.Fatalf("expected 2 places, got %d", len(totals))
		}

		byPlace := map[string]*models.PlaceTotals{}
		for _, pt := range totals {
			byPlace[pt.PlaceID] = pt
		}
		arena := byPlace[a.Place.ID]
		if arena == nil {
			t.Fatal("missing totals for Arena")
		}
		if arena.NumBookings != 3 || !arena.TotalAmount.Equal(Dec("0.60")) || !arena.AmountPaid.Equal(Dec("0.30")) {
			t.Errorf("unexpected Arena totals: %+v", arena)
		}
		if arena.PlaceName != "Arena" || arena.VendorID != a.Vendor.ID || arena.VendorName != "Arena Owner" {
			t.Errorf("unexpected Arena display fields: %+v", arena)
		}

		one, err := store.PayoutTotals(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("PayoutTotals failed: %v", err)
		}
		if len(one) != 1 || one[0].PlaceID != a.Place.ID {
			t.Errorf("expected only Arena totals, got %+v", one)
		}
	})

	t.Run("WithTx commits all writes together", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100", "200")
		st := settle(t, store, a, a.BookingIDs(0, 1))

		got, err := store.GetSettlement(ctx, st.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got == nil {
			t.Fatal("expected settlement to be persisted")
		}
		if !got.Amount.Equal(Dec("300")) || got.PlaceID != a.Place.ID || got.CreatedBy != "tester" {
			t.Errorf("unexpected settlement: %+v", got)
		}
		if len(got.BookingIDs) != 2 {
			t.Errorf("expected 2 booking ids, got %v", got.BookingIDs)
		}

		vendor, err := store.GetVendor(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("GetVendor failed: %v", err)
		}
		if !vendor.PaidSoFar.Equal(Dec("300")) {
			t.Errorf("expected paid_so_far 300, got %s", vendor.PaidSoFar)
		}

		sum, count, err := store.SettlementTotals(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("SettlementTotals failed: %v", err)
		}
		if count != 1 || !sum.Equal(Dec("300")) {
			t.Errorf("expected 1 settlement of 300, got %d of %s", count, sum)
		}

		unread, err := store.UnreadNotificationCount(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("UnreadNotificationCount failed: %v", err)
		}
		if unread != 1 {
			t.Errorf("expected 1 unread notification, got %d", unread)
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100")
		settlementID := uuid.New().String()

		err := store.WithTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertSettlement(ctx, newSettlement(settlementID, a.Place.ID)); err != nil {
				return err
			}
			if _, err := tx.MarkSettled(ctx, a.BookingIDs(0), settlementID); err != nil {
				return err
			}
			if err := tx.IncrementPaid(ctx, a.Place.ID, Dec("100")); err != nil {
				return err
			}
			return errRollback
		})
		if !errors.Is(err, errRollback) {
			t.Fatalf("expected rollback error, got %v", err)
		}

		got, err := store.GetSettlement(ctx, settlementID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got != nil {
			t.Error("expected settlement to be rolled back")
		}
		outstanding, _ := store.ListBookings(ctx, models.BookingFilter{PlaceID: a.Place.ID, Status: models.BookingStatusOutstanding})
		if len(outstanding) != 1 {
			t.Errorf("expected booking to stay outstanding, got %d outstanding", len(outstanding))
		}
		vendor, _ := store.GetVendor(ctx, a.Place.ID)
		if !vendor.PaidSoFar.IsZero() {
			t.Errorf("expected paid_so_far to stay 0, got %s", vendor.PaidSoFar)
		}
	})

	t.Run("MarkSettled skips settled rows", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100", "200")
		settle(t, store, a, a.BookingIDs(0))

		secondID := uuid.New().String()
		var changed int64
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			if err := tx.InsertSettlement(ctx, newSettlement(secondID, a.Place.ID)); err != nil {
				return err
			}
			var err error
			changed, err = tx.MarkSettled(ctx, a.BookingIDs(0, 1), secondID)
			return err
		})
		if err != nil {
			t.Fatalf("WithTx failed: %v", err)
		}
		if changed != 1 {
			t.Errorf("expected only the outstanding booking to change, changed %d", changed)
		}
	})

	t.Run("LockBookings omits missing ids", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100")

		var found []*models.Booking
		err := store.WithTx(ctx, func(tx storage.Tx) error {
			var err error
			found, err = tx.LockBookings(ctx, []string{a.Bookings[0].ID, "booking_99"})
			return err
		})
		if err != nil {
			t.Fatalf("WithTx failed: %v", err)
		}
		if len(found) != 1 || found[0].ID != a.Bookings[0].ID {
			t.Errorf("expected only the existing booking, got %+v", found)
		}
	})

	t.Run("ReconciliationTotals reads all three records", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "100", "250.50", "75")
		settle(t, store, a, a.BookingIDs(0))
		settle(t, store, a, a.BookingIDs(1))

		rec, err := store.ReconciliationTotals(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("ReconciliationTotals failed: %v", err)
		}
		if rec.PlaceID != a.Place.ID || rec.SettlementCount != 2 {
			t.Errorf("unexpected reconciliation: %+v", rec)
		}
		for name, got := range map[string]decimal.Decimal{
			"amount_paid":       rec.AmountPaid,
			"settlements_total": rec.SettlementsTotal,
			"paid_so_far":       rec.PaidSoFar,
		} {
			if !got.Equal(Dec("350.50")) {
				t.Errorf("expected %s 350.50, got %s", name, got)
			}
		}

		empty, err := store.ReconciliationTotals(ctx, "no-such-place")
		if err != nil {
			t.Fatalf("ReconciliationTotals failed: %v", err)
		}
		if !empty.AmountPaid.IsZero() || !empty.SettlementsTotal.IsZero() || !empty.PaidSoFar.IsZero() || empty.SettlementCount != 0 {
			t.Errorf("expected zeros for unknown place, got %+v", empty)
		}
	})

	t.Run("IncrementPaid without vendor", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlaceWithoutVendor(t, store, "Arena", "100")

		err := store.WithTx(ctx, func(tx storage.Tx) error {
			return tx.IncrementPaid(ctx, a.Place.ID, Dec("100"))
		})
		if !errors.Is(err, storage.ErrVendorNotFound) {
			t.Errorf("expected ErrVendorNotFound, got %v", err)
		}
	})

	t.Run("ListSettlements pages newest first", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "1", "2", "3")
		first := settle(t, store, a, a.BookingIDs(0))
		time.Sleep(5 * time.Millisecond)
		second := settle(t, store, a, a.BookingIDs(1, 2))

		page, total, err := store.ListSettlements(ctx, a.Place.ID, 1, 0)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if total != 2 {
			t.Errorf("expected total 2, got %d", total)
		}
		if len(page) != 1 || page[0].ID != second.ID {
			t.Fatalf("expected newest settlement first, got %+v", page)
		}
		if len(page[0].BookingIDs) != 2 {
			t.Errorf("expected 2 booking ids on newest settlement, got %v", page[0].BookingIDs)
		}

		page, _, err = store.ListSettlements(ctx, a.Place.ID, 1, 1)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(page) != 1 || page[0].ID != first.ID {
			t.Errorf("expected oldest settlement on second page, got %+v", page)
		}
	})

	t.Run("Notifications read state", func(t *testing.T) {
		store := newStore(t)
		a := SeedPlace(t, store, "Arena", "1", "2")
		settle(t, store, a, a.BookingIDs(0))
		settle(t, store, a, a.BookingIDs(1))

		list, total, err := store.ListNotifications(ctx, a.Place.ID, 10, 0, true)
		if err != nil {
			t.Fatalf("ListNotifications failed: %v", err)
		}
		if total != 2 || len(list) != 2 {
			t.Fatalf("expected 2 unread notifications, got %d/%d", len(list), total)
		}

		if err := store.MarkNotificationRead(ctx, list[0].ID); err != nil {
			t.Fatalf("MarkNotificationRead failed: %v", err)
		}
		got, err := store.GetNotification(ctx, list[0].ID)
		if err != nil {
			t.Fatalf("GetNotification failed: %v", err)
		}
		if got == nil || !got.IsRead {
			t.Errorf("expected notification to be read, got %+v", got)
		}

		if err := store.MarkAllNotificationsRead(ctx, a.Place.ID); err != nil {
			t.Fatalf("MarkAllNotificationsRead failed: %v", err)
		}
		unread, _ := store.UnreadNotificationCount(ctx, a.Place.ID)
		if unread != 0 {
			t.Errorf("expected 0 unread notifications, got %d", unread)
		}

		missing, err := store.GetNotification(ctx, 999999)
		if err != nil || missing != nil {
			t.Errorf("expected nil, nil for missing notification, got %+v, %v", missing, err)
		}
	})

	t.Run("GetVendor returns nil for unknown place", func(t *testing.T) {
		store := newStore(t)
		vendor, err := store.GetVendor(ctx, "no-such-place")
		if err != nil || vendor != nil {
			t.Errorf("expected nil, nil, got %+v, %v", vendor, err)
		}
	})

	t.Run("overlapping concurrent settles commit once", func(t *testing.T) {
		handles := open(t, 2)
		a := SeedPlace(t, handles[0], "Arena", "100", "200", "300")

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
				ids := a.BookingIDs(0, 1)
				if i%2 == 1 {
					ids = a.BookingIDs(1, 2)
				}
				err := trySettle(ctx, handles[i%len(handles)], a, ids)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					succeeded++
				case errors.Is(err, errContended):
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
		assertPaidMatchesSettled(t, handles[0], a, 1)
	})

	t.Run("disjoint concurrent settles all commit", func(t *testing.T) {
		handles := open(t, 2)
		a := SeedPlace(t, handles[0], "Arena", "10", "20", "30", "40", "50", "60")

		var wg sync.WaitGroup
		errs := make([]error, len(a.Bookings))
		for i := range a.Bookings {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = trySettle(ctx, handles[i%len(handles)], a, a.BookingIDs(i))
			}(i)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				t.Errorf("settle %d failed: %v", i, err)
			}
		}
		assertPaidMatchesSettled(t, handles[0], a, len(a.Bookings))

		vendor, err := handles[0].GetVendor(ctx, a.Place.ID)
		if err != nil {
			t.Fatalf("GetVendor failed: %v", err)
		}
		if !vendor.PaidSoFar.Equal(Dec("210")) {
			t.Errorf("expected paid_so_far 210, got %s", vendor.PaidSoFar)
		}
	})
}

func newSettlement(id, placeID string) *models.Settlement {
	return &models.Settlement{
		ID:        id,
		PlaceID:   placeID,
		Amount:    Dec("0"),
		Status:    models.SettlementStatusCommitted,
		CreatedBy: "tester",
		CreatedAt: time.Now().UTC(),
	}
}

// trySettle runs the settlement transaction the way the settlement service
// does: lock, check every row is outstanding, write, and verify the update
// count. Returns errContended when another settlement got there first.
func trySettle(ctx context.Context, store Backend, f *Fixture, ids []string) error {
	return store.WithTx(ctx, func(tx storage.Tx) error {
		bookings, err := tx.LockBookings(ctx, ids)
		if err != nil {
			return err
		}
		if len(bookings) != len(ids) {
			return errors.New("missing bookings")
		}
		st := newSettlement(uuid.New().String(), f.Place.ID)
		for _, b := range bookings {
			if !b.Outstanding() {
				return errContended
			}
			st.Amount = st.Amount.Add(b.PayableAmount)
		}

		if err := tx.InsertSettlement(ctx, st); err != nil {
			return err
		}
		n, err := tx.MarkSettled(ctx, ids, st.ID)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			return errContended
		}
		return tx.IncrementPaid(ctx, f.Place.ID, st.Amount)
	})
}

// assertPaidMatchesSettled checks that the vendor counter, the settlement
// records and the settled bookings all agree.
func assertPaidMatchesSettled(t *testing.T, store Backend, f *Fixture, wantSettlements int) {
	t.Helper()
	ctx := context.Background()

	settled, err := store.ListBookings(ctx, models.BookingFilter{PlaceID: f.Place.ID, Status: models.BookingStatusSettled})
	if err != nil {
		t.Fatalf("ListBookings failed: %v", err)
	}
	paid := models.SumPayable(settled)

	sum, count, err := store.SettlementTotals(ctx, f.Place.ID)
	if err != nil {
		t.Fatalf("SettlementTotals failed: %v", err)
	}
	if count != wantSettlements {
		t.Errorf("expected %d settlements, got %d", wantSettlements, count)
	}
	if !sum.Equal(paid) {
		t.Errorf("settlement total %s does not match settled bookings %s", sum, paid)
	}

	vendor, err := store.GetVendor(ctx, f.Place.ID)
	if err != nil {
		t.Fatalf("GetVendor failed: %v", err)
	}
	if !vendor.PaidSoFar.Equal(paid) {
		t.Errorf("paid_so_far %s does not match settled bookings %s", vendor.PaidSoFar, paid)
	}
}

// settle commits a settlement through the raw Tx contract, the way the
// settlement service does, without its validation.
func settle(t *testing.T, store Backend, f *Fixture, ids []string) *models.Settlement {
	t.Helper()
	ctx := context.Background()

	byID := map[string]*models.Booking{}
	for _, b := range f.Bookings {
		byID[b.ID] = b
	}
	st := newSettlement(uuid.New().String(), f.Place.ID)
	for _, id := range ids {
		st.Amount = st.Amount.Add(byID[id].PayableAmount)
	}

	err := store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertSettlement(ctx, st); err != nil {
			return err
		}
		if _, err := tx.MarkSettled(ctx, ids, st.ID); err != nil {
			return err
		}
		if err := tx.IncrementPaid(ctx, f.Place.ID, st.Amount); err != nil {
			return err
		}
		entity := string(models.NotificationEntitySettlement)
		return tx.InsertNotification(ctx, &models.Notification{
			PlaceID:           f.Place.ID,
			Message:           "payout settled",
			RelatedEntityType: &entity,
			RelatedEntityID:   &st.ID,
		})
	})
	if err != nil {
		t.Fatalf("failed to settle: %v", err)
	}
	return st
}
