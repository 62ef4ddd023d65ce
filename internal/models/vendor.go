package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Place is a bookable venue. Only the fields payouts display are modelled.
type Place struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Vendor is the payee profile of a place (1:1 by PlaceID)
type Vendor struct {
	ID                string          `json:"id"`
	PlaceID           string          `json:"place_id"`
	BusinessName      string          `json:"business_name"`
	FullName          string          `json:"vendor_full_name"`
	Email             string          `json:"vendor_email"`
	PhoneNumber       string          `json:"vendor_phone_number"`
	AccountHolderName string          `json:"account_holder_name"`
	AccountNumber     string          `json:"account_number"`
	IFSCCode          string          `json:"ifsc_code"`
	UPIID             string          `json:"upi_id"`
	PaidSoFar         decimal.Decimal `json:"paid_so_far"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// DisplayName returns the name shown for the vendor in payout listings
func (v *Vendor) DisplayName() string {
	return displayName(v.FullName, v.BusinessName)
}

func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "—"
}
