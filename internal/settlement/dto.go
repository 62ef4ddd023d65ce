package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/spotnere/admin-api/internal/models"
)

// SettleRequest is the body of POST /api/payouts/{place_id}/settle
type SettleRequest struct {
	BookingIDs []string `json:"booking_ids" validate:"required,min=1,dive,required"`
}

// SettleResponse describes a committed settlement
type SettleResponse struct {
	SettlementID      string          `json:"settlement_id"`
	Amount            decimal.Decimal `json:"amount"`
	SettledBookingIDs []string        `json:"settled_booking_ids"`
}

// SettlementResponse is the read view of a settlement
type SettlementResponse struct {
	ID           string                  `json:"id"`
	PlaceID      string                  `json:"place_id"`
	BookingIDs   []string                `json:"booking_ids"`
	BookingCount int                     `json:"booking_count"`
	Amount       decimal.Decimal         `json:"amount"`
	Status       models.SettlementStatus `json:"status"`
	CreatedBy    string                  `json:"created_by"`
	CreatedAt    string                  `json:"created_at"`
}

// toSettleResponse converts a committed settlement to the settle reply
func toSettleResponse(s *models.Settlement) *SettleResponse {
	return &SettleResponse{
		SettlementID:      s.ID,
		Amount:            s.Amount,
		SettledBookingIDs: s.BookingIDs,
	}
}

// toResponse converts a Settlement model to a SettlementResponse DTO
func toResponse(s *models.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:           s.ID,
		PlaceID:      s.PlaceID,
		BookingIDs:   s.BookingIDs,
		BookingCount: len(s.BookingIDs),
		Amount:       s.Amount,
		Status:       s.Status,
		CreatedBy:    s.CreatedBy,
		CreatedAt:    s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
