package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the lifecycle state of a settlement. Settlements are
// create-only, so committed is the only state.
type SettlementStatus string

const (
	SettlementStatusCommitted SettlementStatus = "committed"
)

// Settlement is an immutable record of one payout to a vendor
type Settlement struct {
	ID         string           `json:"id"`
	PlaceID    string           `json:"place_id"`
	BookingIDs []string         `json:"booking_ids"`
	Amount     decimal.Decimal  `json:"amount"`
	Status     SettlementStatus `json:"status"`
	CreatedBy  string           `json:"created_by"`
	CreatedAt  time.Time        `json:"created_at"`
}
