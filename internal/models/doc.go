// Package models defines the domain types shared by the payout engine and its
// storage backends.
//
// Money is always decimal.Decimal. Bookings are owned by the booking flow of
// the wider admin application; the engine only reads them and sets
// SettlementID. Vendors and places are likewise external records, read here
// for display and for the cumulative paid_so_far counter.
//
// Summaries and reconciliation reports are derived views and are never stored.
package models
