package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PlaceTotals is the raw aggregate of one place's bookings as read from a store
type PlaceTotals struct {
	PlaceID     string
	PlaceName   string
	VendorID    string
	VendorName  string
	NumBookings int
	TotalAmount decimal.Decimal
	AmountPaid  decimal.Decimal
}

// PayoutSummary is the derived payout view of one place
type PayoutSummary struct {
	PlaceID     string          `json:"place_id"`
	VendorID    string          `json:"vendor_id,omitempty"`
	Name        string          `json:"name"`
	PlaceName   string          `json:"place_name"`
	NumBookings int             `json:"num_bookings"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// Summary converts raw totals into a payout summary
func (t *PlaceTotals) Summary() *PayoutSummary {
	return &PayoutSummary{
		PlaceID:     t.PlaceID,
		VendorID:    t.VendorID,
		Name:        displayName(t.VendorName),
		PlaceName:   displayName(t.PlaceName),
		NumBookings: t.NumBookings,
		TotalAmount: t.TotalAmount,
		AmountPaid:  t.AmountPaid,
		Balance:     t.TotalAmount.Sub(t.AmountPaid),
	}
}

// Conserved reports whether total = paid + balance and balance is non-negative
func (s *PayoutSummary) Conserved() bool {
	return s.AmountPaid.Add(s.Balance).Equal(s.TotalAmount) && !s.Balance.IsNegative()
}

// TallyBookings groups bookings by place and sums their payable amounts.
// The result is ordered by place id. Display fields are left empty.
func TallyBookings(bookings []*Booking) []*PlaceTotals {
	byPlace := make(map[string]*PlaceTotals)
	for _, b := range bookings {
		t, ok := byPlace[b.PlaceID]
		if !ok {
			t = &PlaceTotals{PlaceID: b.PlaceID, PlaceName: b.PlaceName}
			byPlace[b.PlaceID] = t
		}
		t.NumBookings++
		t.TotalAmount = t.TotalAmount.Add(b.PayableAmount)
		if !b.Outstanding() {
			t.AmountPaid = t.AmountPaid.Add(b.PayableAmount)
		}
	}

	totals := make([]*PlaceTotals, 0, len(byPlace))
	for _, t := range byPlace {
		totals = append(totals, t)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].PlaceID < totals[j].PlaceID })
	return totals
}

// SumPayable returns the total payable amount of the given bookings
func SumPayable(bookings []*Booking) decimal.Decimal {
	sum := decimal.Zero
	for _, b := range bookings {
		sum = sum.Add(b.PayableAmount)
	}
	return sum
}

// Reconciliation cross-checks the three records of what a vendor has been paid
type Reconciliation struct {
	PlaceID          string          `json:"place_id"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`       // settled bookings
	SettlementsTotal decimal.Decimal `json:"settlements_total"` // settlement records
	SettlementCount  int             `json:"settlement_count"`
	PaidSoFar        decimal.Decimal `json:"paid_so_far"` // vendor counter
	Consistent       bool            `json:"consistent"`
}

// Check sets Consistent from the three money values
func (r *Reconciliation) Check() {
	r.Consistent = r.AmountPaid.Equal(r.SettlementsTotal) && r.SettlementsTotal.Equal(r.PaidSoFar)
}
