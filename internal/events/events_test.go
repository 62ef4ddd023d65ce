package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSettlementCommitted_JSON(t *testing.T) {
	ev := SettlementCommitted{
		SettlementID: "s1",
		PlaceID:      "p1",
		Amount:       decimal.RequireFromString("300.50"),
		BookingIDs:   []string{"b1", "b2"},
		CreatedBy:    "ops",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"settlement_id", "place_id", "amount", "booking_ids", "created_by", "created_at"} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing key %q in %s", key, b)
		}
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.PublishJSON(context.Background(), RoutingKeySettled, struct{}{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAMQPPublisher(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set")
	}

	p, err := NewAMQPPublisher(url, "payouts-test")
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.PublishJSON(ctx, RoutingKeySettled, SettlementCommitted{SettlementID: "s1"}); err != nil {
		t.Errorf("publish failed: %v", err)
	}
}

func TestNewAMQPPublisher_BadURL(t *testing.T) {
	if _, err := NewAMQPPublisher("amqp://127.0.0.1:1/", "payouts"); err == nil {
		t.Error("expected dial error")
	}
}
