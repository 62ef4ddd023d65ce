package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
	"github.com/spotnere/admin-api/pkg/request"
	"github.com/spotnere/admin-api/pkg/response"
)

// Handler handles HTTP requests for notification operations
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for /api/places/{placeId}/notifications
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.GetUnreadCount)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)

	return r
}

// NotificationResponse represents the response for a notification
type NotificationResponse struct {
	ID                int64   `json:"id"`
	Message           string  `json:"message"`
	IsRead            bool    `json:"is_read"`
	RelatedEntityType *string `json:"related_entity_type,omitempty"`
	RelatedEntityID   *string `json:"related_entity_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

// toResponse converts a Notification to a NotificationResponse
func toResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:                n.ID,
		Message:           n.Message,
		IsRead:            n.IsRead,
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		CreatedAt:         n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// List godoc
// @Summary      List vendor notifications
// @Tags         notifications
// @Produce      json
// @Param        placeId      path   string  true   "Place ID"
// @Param        page         query  int     false  "Page number"  default(1)
// @Param        per_page     query  int     false  "Page size"    default(20)
// @Param        unread_only  query  bool    false  "Only unread notifications"
// @Success      200 {array} NotificationResponse
// @Failure      503 {object} response.ErrorResponse
// @Router       /places/{placeId}/notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := request.Pagination(r, 20, 100)
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	notifications, total, err := h.service.ListByPlace(r.Context(), chi.URLParam(r, "placeId"), page, perPage, unreadOnly)
	if err != nil {
		writeError(w, err, "Failed to list notifications")
		return
	}

	notificationResponses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		notificationResponses[i] = toResponse(n)
	}

	response.JSONWithTotal(w, http.StatusOK, notificationResponses, total)
}

// GetUnreadCount godoc
// @Summary      Count unread vendor notifications
// @Tags         notifications
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Success      200 {object} map[string]int
// @Router       /places/{placeId}/notifications/unread-count [get]
func (h *Handler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetUnreadCount(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		writeError(w, err, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Param        id       path  int     true  "Notification ID"
// @Success      200 {object} map[string]string
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /places/{placeId}/notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), chi.URLParam(r, "placeId"), id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		writeError(w, err, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead godoc
// @Summary      Mark all notifications of a place as read
// @Tags         notifications
// @Produce      json
// @Param        placeId  path  string  true  "Place ID"
// @Success      200 {object} map[string]string
// @Router       /places/{placeId}/notifications/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllAsRead(r.Context(), chi.URLParam(r, "placeId")); err != nil {
		writeError(w, err, "Failed to mark all notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

func writeError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, storage.ErrUnavailable) {
		response.Unavailable(w, message)
		return
	}
	response.InternalError(w, message)
}
