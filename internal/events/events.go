// Package events publishes payout domain events to RabbitMQ.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RoutingKeySettled is the topic key of SettlementCommitted events
const RoutingKeySettled = "payout.settled"

// Publisher sends JSON events to a topic exchange
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// SettlementCommitted is published after a settlement transaction commits
type SettlementCommitted struct {
	SettlementID string          `json:"settlement_id"`
	PlaceID      string          `json:"place_id"`
	Amount       decimal.Decimal `json:"amount"`
	BookingIDs   []string        `json:"booking_ids"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Nop discards every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishJSON(context.Context, string, any) error { return nil }
func (Nop) Close() error                                   { return nil }
