package payout

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/pkg/response"
)

// Handler handles HTTP requests for payout views
type Handler struct {
	service *Service
}

// NewHandler creates a new payout handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the payout read endpoints to the /api/payouts router
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{placeId}", h.GetByPlace)
	r.Get("/{placeId}/reconciliation", h.Reconcile)
}

// BookingRoutes returns the router for /api/bookings
func (h *Handler) BookingRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListBookings)

	return r
}

// List godoc
// @Summary      List payout summaries
// @Description  One entry per place with at least one booking
// @Tags         payouts
// @Produce      json
// @Success      200 {array} models.PayoutSummary
// @Failure      503 {object} response.ErrorResponse
// @Router       /payouts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListPayoutSummaries(r.Context())
	if err != nil {
		writeReadError(w, err, "Failed to list payouts")
		return
	}

	response.JSON(w, http.StatusOK, summaries)
}

// GetByPlace godoc
// @Summary      Get the payout summary of a place
// @Tags         payouts
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Success      200 {object} models.PayoutSummary
// @Failure      503 {object} response.ErrorResponse
// @Router       /payouts/{placeId} [get]
func (h *Handler) GetByPlace(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetPayoutSummary(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		writeReadError(w, err, "Failed to get payout")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// Reconcile godoc
// @Summary      Reconcile payout records of a place
// @Description  Compares settled bookings, settlement records and the vendor's paid_so_far
// @Tags         payouts
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Success      200 {object} models.Reconciliation
// @Failure      503 {object} response.ErrorResponse
// @Router       /payouts/{placeId}/reconciliation [get]
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Reconcile(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		writeReadError(w, err, "Failed to reconcile payouts")
		return
	}

	response.JSON(w, http.StatusOK, rec)
}

// ListBookings godoc
// @Summary      List bookings
// @Description  Defaults to outstanding bookings when place_id is given, all bookings otherwise
// @Tags         bookings
// @Produce      json
// @Param        place_id  query  string  false  "Place ID"
// @Param        status    query  string  false  "outstanding, settled or all"
// @Success      200 {array} models.Booking
// @Failure      400 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListBookings(r.Context(), r.URL.Query().Get("place_id"), r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			response.BadRequest(w, err.Error())
			return
		}
		writeReadError(w, err, "Failed to list bookings")
		return
	}

	if bookings == nil {
		bookings = []*models.Booking{}
	}
	response.JSON(w, http.StatusOK, bookings)
}

func writeReadError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, storage.ErrUnavailable) {
		response.Unavailable(w, message)
		return
	}
	response.InternalError(w, message)
}
