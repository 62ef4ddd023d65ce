// Package storagetest provides fixtures and a conformance suite shared by the
// storage backends and the service tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/internal/storage/sqlite"
)

// Backend is a store that can also be seeded
type Backend interface {
	storage.Store
	storage.Seeder
}

// Opener returns n handles onto one empty store. Writes through one handle
// are visible through the others.
type Opener func(t *testing.T, n int) []Backend

// NewSQLite opens a fresh SQLite store in a temp dir, closed on cleanup.
func NewSQLite(t *testing.T) Backend {
	t.Helper()
	return NewSQLiteHandles(t, 1)[0]
}

// NewSQLiteHandles opens n stores on the same fresh database file. Each store
// has its own connection, so concurrent transactions across handles are kept
// apart by SQLite's file locks alone.
func NewSQLiteHandles(t *testing.T, n int) []Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payouts.db")

	handles := make([]Backend, n)
	for i := range handles {
		store, err := sqlite.New(path)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		handles[i] = store
	}
	return handles
}

// Fixture is one seeded place with its vendor and bookings
type Fixture struct {
	Place    *models.Place
	Vendor   *models.Vendor
	Bookings []*models.Booking
}

// BookingIDs returns the ids of the fixture bookings at the given indexes.
func (f *Fixture) BookingIDs(idx ...int) []string {
	ids := make([]string, len(idx))
	for i, n := range idx {
		ids[i] = f.Bookings[n].ID
	}
	return ids
}

// SeedPlace creates a place, its vendor and one booking per amount.
func SeedPlace(t *testing.T, seeder storage.Seeder, name string, amounts ...string) *Fixture {
	t.Helper()
	f := SeedPlaceWithoutVendor(t, seeder, name, amounts...)

	f.Vendor = &models.Vendor{
		PlaceID:           f.Place.ID,
		BusinessName:      name + " LLP",
		FullName:          name + " Owner",
		Email:             "owner@example.com",
		AccountHolderName: name + " Owner",
		AccountNumber:     "000123456789",
		IFSCCode:          "HDFC0000123",
	}
	if err := seeder.CreateVendor(context.Background(), f.Vendor); err != nil {
		t.Fatalf("failed to seed vendor: %v", err)
	}
	return f
}

// SeedPlaceWithoutVendor creates a place and its bookings but no vendor.
func SeedPlaceWithoutVendor(t *testing.T, seeder storage.Seeder, name string, amounts ...string) *Fixture {
	t.Helper()
	ctx := context.Background()

	f := &Fixture{Place: &models.Place{Name: name}}
	if err := seeder.CreatePlace(ctx, f.Place); err != nil {
		t.Fatalf("failed to seed place: %v", err)
	}

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	for i, amount := range amounts {
		booking := &models.Booking{
			PlaceID:       f.Place.ID,
			PayableAmount: decimal.RequireFromString(amount),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		}
		if err := seeder.CreateBooking(ctx, booking); err != nil {
			t.Fatalf("failed to seed booking: %v", err)
		}
		f.Bookings = append(f.Bookings, booking)
	}
	return f
}

// Dec parses a decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
