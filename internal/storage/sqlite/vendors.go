package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spotnere/admin-api/internal/models"
)

// GetVendor retrieves the vendor of a place.
func (s *SQLiteStore) GetVendor(ctx context.Context, placeID string) (*models.Vendor, error) {
	vendor := &models.Vendor{}
	var createdAt, updatedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, place_id, business_name, vendor_full_name, vendor_email, vendor_phone_number,
		        account_holder_name, account_number, ifsc_code, upi_id, paid_so_far, created_at, updated_at
		 FROM vendors WHERE place_id = ?`,
		placeID,
	).Scan(
		&vendor.ID,
		&vendor.PlaceID,
		&vendor.BusinessName,
		&vendor.FullName,
		&vendor.Email,
		&vendor.PhoneNumber,
		&vendor.AccountHolderName,
		&vendor.AccountNumber,
		&vendor.IFSCCode,
		&vendor.UPIID,
		&vendor.PaidSoFar,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get vendor: %w", err))
	}

	vendor.CreatedAt = fromMillis(createdAt)
	vendor.UpdatedAt = fromMillis(updatedAt)
	return vendor, nil
}

// CreateVendor inserts a vendor profile.
func (s *SQLiteStore) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if vendor.CreatedAt.IsZero() {
		vendor.CreatedAt = now
	}
	vendor.UpdatedAt = vendor.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vendors (id, place_id, business_name, vendor_full_name, vendor_email, vendor_phone_number,
		                      account_holder_name, account_number, ifsc_code, upi_id, paid_so_far, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vendor.ID, vendor.PlaceID, vendor.BusinessName, vendor.FullName, vendor.Email, vendor.PhoneNumber,
		vendor.AccountHolderName, vendor.AccountNumber, vendor.IFSCCode, vendor.UPIID,
		vendor.PaidSoFar.String(), toMillis(vendor.CreatedAt), toMillis(vendor.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vendor: %w", err)
	}
	return nil
}
