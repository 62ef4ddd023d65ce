package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spotnere/admin-api/internal/models"
)

// GetVendor retrieves the vendor of a place.
func (s *PostgresStore) GetVendor(ctx context.Context, placeID string) (*models.Vendor, error) {
	vendor := &models.Vendor{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, place_id, business_name, vendor_full_name, vendor_email, vendor_phone_number,
		        account_holder_name, account_number, ifsc_code, upi_id, paid_so_far, created_at, updated_at
		 FROM vendors WHERE place_id = $1`,
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
		&vendor.CreatedAt,
		&vendor.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get vendor: %w", err))
	}
	return vendor, nil
}

// CreateVendor inserts a vendor profile.
func (s *PostgresStore) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.New().String()
	}
	if vendor.CreatedAt.IsZero() {
		vendor.CreatedAt = time.Now().UTC()
	}
	vendor.UpdatedAt = vendor.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vendors (id, place_id, business_name, vendor_full_name, vendor_email, vendor_phone_number,
		                      account_holder_name, account_number, ifsc_code, upi_id, paid_so_far, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		vendor.ID, vendor.PlaceID, vendor.BusinessName, vendor.FullName, vendor.Email, vendor.PhoneNumber,
		vendor.AccountHolderName, vendor.AccountNumber, vendor.IFSCCode, vendor.UPIID,
		vendor.PaidSoFar, vendor.CreatedAt, vendor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vendor: %w", err)
	}
	return nil
}
