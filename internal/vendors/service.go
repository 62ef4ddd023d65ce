// Package vendors exposes the vendor profile and bank details of a place.
package vendors

import (
	"context"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

// Service reads vendor profiles
type Service struct {
	vendors storage.VendorDirectory
}

// NewService creates a new vendor service
func NewService(vendors storage.VendorDirectory) *Service {
	return &Service{vendors: vendors}
}

// GetByPlace returns the vendor of a place, or nil when none is registered
func (s *Service) GetByPlace(ctx context.Context, placeID string) (*models.Vendor, error) {
	return s.vendors.GetVendor(ctx, placeID)
}
