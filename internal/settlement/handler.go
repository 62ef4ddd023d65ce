package settlement

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/pkg/middleware"
	"github.com/spotnere/admin-api/pkg/request"
	"github.com/spotnere/admin-api/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for /api/settlements
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetByID)

	return r
}

// RegisterPayoutRoutes adds the place-scoped settlement endpoints to the
// /api/payouts router
func (h *Handler) RegisterPayoutRoutes(r chi.Router) {
	r.Post("/{placeId}/settle", h.Settle)
	r.Get("/{placeId}/settlements", h.ListByPlace)
}

// Settle godoc
// @Summary      Settle outstanding bookings
// @Description  Pays out the selected outstanding bookings of a place in one transaction
// @Tags         payouts
// @Accept       json
// @Produce      json
// @Param        placeId        path   string         true   "Place ID"
// @Param        X-Operator-ID  header string         false  "Acting admin operator"
// @Param        request        body   SettleRequest  true   "Bookings to settle"
// @Success      201 {object} SettleResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /payouts/{placeId}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := request.Decode(r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	settlement, err := h.service.Settle(r.Context(), chi.URLParam(r, "placeId"), req.BookingIDs, middleware.GetOperatorID(r.Context()))
	if err != nil {
		writeSettleError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toSettleResponse(settlement))
}

func writeSettleError(w http.ResponseWriter, err error) {
	var serr *Error
	if !errors.As(err, &serr) {
		response.Unavailable(w, "The settlement could not be completed, retry later")
		return
	}

	switch {
	case errors.Is(serr.Kind, ErrInvalidRequest):
		response.ErrorWithBookings(w, http.StatusBadRequest, response.CodeInvalidRequest, serr.Message, serr.BookingIDs)
	case errors.Is(serr.Kind, ErrAlreadySettled):
		response.ErrorWithBookings(w, http.StatusConflict, response.CodeAlreadySettled, serr.Message, serr.BookingIDs)
	default:
		response.Unavailable(w, serr.Message)
	}
}

// GetByID godoc
// @Summary      Get settlement by ID
// @Tags         settlements
// @Produce      json
// @Param        id  path  string  true  "Settlement ID"
// @Success      200 {object} SettlementResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /settlements/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	settlement, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		writeReadError(w, err, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, toResponse(settlement))
}

// ListByPlace godoc
// @Summary      List settlements of a place
// @Description  Newest first; the total count is returned in X-Total-Count
// @Tags         payouts
// @Produce      json
// @Param        placeId   path   string  true   "Place ID"
// @Param        page      query  int     false  "Page number"  default(1)
// @Param        per_page  query  int     false  "Page size"    default(20)
// @Success      200 {array} SettlementResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /payouts/{placeId}/settlements [get]
func (h *Handler) ListByPlace(w http.ResponseWriter, r *http.Request) {
	page, perPage := request.Pagination(r, 20, 100)

	settlements, total, err := h.service.ListByPlace(r.Context(), chi.URLParam(r, "placeId"), page, perPage)
	if err != nil {
		writeReadError(w, err, "Failed to list settlements")
		return
	}

	settlementResponses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		settlementResponses[i] = toResponse(s)
	}

	response.JSONWithTotal(w, http.StatusOK, settlementResponses, total)
}

func writeReadError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, storage.ErrUnavailable) {
		response.Unavailable(w, message)
		return
	}
	response.InternalError(w, message)
}
