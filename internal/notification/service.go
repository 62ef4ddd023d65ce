package notification

import (
	"context"
	"errors"

	"github.com/spotnere/admin-api/internal/models"
	"github.com/spotnere/admin-api/internal/storage"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

const maxPage = 100000

// Service handles notification business logic. Notifications are written by
// the settlement transaction; this service only reads them and tracks read
// state for the vendor.
type Service struct {
	store storage.NotificationStore
}

// NewService creates a new notification service
func NewService(store storage.NotificationStore) *Service {
	return &Service{store: store}
}

// GetByID retrieves a notification of a place
func (s *Service) GetByID(ctx context.Context, placeID string, id int64) (*models.Notification, error) {
	notification, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification == nil || notification.PlaceID != placeID {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

// ListByPlace retrieves a page of a place's notifications, newest first
func (s *Service) ListByPlace(ctx context.Context, placeID string, page, perPage int, unreadOnly bool) ([]*models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListNotifications(ctx, placeID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification of a place as read
func (s *Service) MarkAsRead(ctx context.Context, placeID string, id int64) error {
	if _, err := s.GetByID(ctx, placeID, id); err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, id)
}

// MarkAllAsRead marks all notifications of a place as read
func (s *Service) MarkAllAsRead(ctx context.Context, placeID string) error {
	return s.store.MarkAllNotificationsRead(ctx, placeID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, placeID string) (int, error) {
	return s.store.UnreadNotificationCount(ctx, placeID)
}
