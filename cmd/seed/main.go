// Command seed loads demo places, vendors and bookings into the configured
// store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/config"
	"github.com/spotnere/admin-api/internal/database"
	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/pkg/logging"
)

var demoPlaces = []string{
	"Smash Arena",
	"Green Turf Koramangala",
	"Shuttle Point",
	"Baseline Tennis Club",
	"Hoops Court Indiranagar",
}

func main() {
	places := flag.Int("places", len(demoPlaces), "number of places to create")
	bookings := flag.Int("bookings", 12, "bookings per place")
	withoutVendor := flag.Bool("orphan", true, "also create one place without a vendor")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	store, err := database.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	for i := 0; i < *places; i++ {
		name := demoPlaces[i%len(demoPlaces)]
		if i >= len(demoPlaces) {
			name = fmt.Sprintf("%s %d", name, i/len(demoPlaces)+1)
		}
		if err := seedPlace(ctx, store, name, *bookings, true); err != nil {
			slog.Error("Failed to seed place", "place", name, "error", err)
			os.Exit(1)
		}
	}
	if *withoutVendor {
		if err := seedPlace(ctx, store, "Unclaimed Court", 3, false); err != nil {
			slog.Error("Failed to seed place", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seed complete", "places", *places, "bookings_per_place", *bookings)
}

func seedPlace(ctx context.Context, seeder storage.Seeder, name string, bookings int, withVendor bool) error {
	place := &models.Place{Name: name}
	if err := seeder.CreatePlace(ctx, place); err != nil {
		return err
	}

	if withVendor {
		vendor := &models.Vendor{
			PlaceID:           place.ID,
			BusinessName:      name + " Pvt Ltd",
			FullName:          name + " Owner",
			Email:             "owner@example.com",
			PhoneNumber:       "+919800000000",
			AccountHolderName: name + " Owner",
			AccountNumber:     fmt.Sprintf("50100%07d", rand.IntN(10_000_000)),
			IFSCCode:          "HDFC0001234",
			UPIID:             "owner@okhdfcbank",
		}
		if err := seeder.CreateVendor(ctx, vendor); err != nil {
			return err
		}
	}

	start := time.Now().UTC().AddDate(0, 0, -bookings)
	for i := 0; i < bookings; i++ {
		// 200.00 to 2000.00 in steps of 50
		amount := decimal.NewFromInt(int64(4+rand.IntN(37)) * 50)
		booking := &models.Booking{
			PlaceID:       place.ID,
			PayableAmount: amount.Round(2),
			CreatedAt:     start.AddDate(0, 0, i),
		}
		if err := seeder.CreateBooking(ctx, booking); err != nil {
			return err
		}
	}

	slog.Info("Seeded place", "place_id", place.ID, "name", name, "bookings", bookings, "vendor", withVendor)
	return nil
}
