package vendors

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/pkg/response"
)

// Handler handles HTTP requests for vendor profiles
type Handler struct {
	service *Service
}

// NewHandler creates a new vendor handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetByPlace godoc
// @Summary      Get the vendor of a place
// @Description  Returns the vendor with bank details used for payouts, or null when the place has no vendor
// @Tags         vendors
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Success      200 {object} models.Vendor
// @Failure      503 {object} response.ErrorResponse
// @Router       /places/{placeId}/vendor [get]
func (h *Handler) GetByPlace(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.service.GetByPlace(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			response.Unavailable(w, "Failed to get vendor")
			return
		}
		response.InternalError(w, "Failed to get vendor")
		return
	}

	// The admin panel expects null rather than 404 for places without a vendor.
	response.JSON(w, http.StatusOK, vendor)
}
