package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

func TestBookingSettlementIsImmutable(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "payouts.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	place := &models.Place{Name: "Arena"}
	if err := store.CreatePlace(ctx, place); err != nil {
		t.Fatalf("CreatePlace failed: %v", err)
	}
	booking := &models.Booking{PlaceID: place.ID, PayableAmount: decimal.NewFromInt(100)}
	if err := store.CreateBooking(ctx, booking); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	settlement := &models.Settlement{
		ID:        "s1",
		PlaceID:   place.ID,
		Amount:    decimal.NewFromInt(100),
		Status:    models.SettlementStatusCommitted,
		CreatedBy: "tester",
		CreatedAt: time.Now(),
	}
	err = store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.InsertSettlement(ctx, settlement); err != nil {
			return err
		}
		_, err := tx.MarkSettled(ctx, []string{booking.ID}, settlement.ID)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	t.Run("cannot be cleared", func(t *testing.T) {
		_, err := store.db.ExecContext(ctx, "UPDATE bookings SET settlement_id = NULL WHERE id = ?", booking.ID)
		if err == nil {
			t.Error("expected clearing a settled booking to fail")
		}
	})

	t.Run("cannot be reassigned", func(t *testing.T) {
		_, err := store.db.ExecContext(ctx, "UPDATE bookings SET settlement_id = 's1' WHERE id = ?", booking.ID)
		if err == nil {
			t.Error("expected reassigning a settled booking to fail")
		}
	})
}

func TestPlaceholders(t *testing.T) {
	marks, args := placeholders([]string{"a", "b", "c"})
	if marks != "?, ?, ?" {
		t.Errorf("unexpected placeholders %q", marks)
	}
	if len(args) != 3 || args[2] != "c" {
		t.Errorf("unexpected args %v", args)
	}
}
