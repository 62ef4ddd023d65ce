package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spotnere/admin-api/internal/models"
)

func scanNotification(row rowScanner) (*models.Notification, error) {
	notification := &models.Notification{}
	var entityType, entityID sql.NullString
	var createdAt int64
	if err := row.Scan(
		&notification.ID,
		&notification.PlaceID,
		&notification.Message,
		&notification.IsRead,
		&entityType,
		&entityID,
		&createdAt,
	); err != nil {
		return nil, err
	}
	notification.RelatedEntityType = stringPtr(entityType)
	notification.RelatedEntityID = stringPtr(entityID)
	notification.CreatedAt = fromMillis(createdAt)
	return notification, nil
}

// GetNotification retrieves a notification by its ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, place_id, message, is_read, related_entity_type, related_entity_id, created_at
		 FROM notifications WHERE id = ?`,
		id,
	)
	notification, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get notification: %w", err))
	}
	return notification, nil
}

// ListNotifications retrieves a place's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, placeID string, limit, offset int, unreadOnly bool) ([]*models.Notification, int, error) {
	filter := ""
	if unreadOnly {
		filter = " AND is_read = 0"
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE place_id = ?"+filter, placeID,
	).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count notifications: %w", err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, place_id, message, is_read, related_entity_type, related_entity_id, created_at
		 FROM notifications WHERE place_id = ?`+filter+`
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		placeID, limit, offset,
	)
	if err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list notifications: %w", err))
	}
	defer rows.Close()

	notifications := []*models.Notification{}
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to iterate notifications: %w", err))
	}

	return notifications, total, nil
}

// MarkNotificationRead marks a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id); err != nil {
		return classify(fmt.Errorf("failed to mark notification as read: %w", err))
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a place as read.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, placeID string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE place_id = ? AND is_read = 0", placeID,
	); err != nil {
		return classify(fmt.Errorf("failed to mark all notifications as read: %w", err))
	}
	return nil
}

// UnreadNotificationCount counts a place's unread notifications.
func (s *SQLiteStore) UnreadNotificationCount(ctx context.Context, placeID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE place_id = ? AND is_read = 0", placeID,
	).Scan(&count); err != nil {
		return 0, classify(fmt.Errorf("failed to count unread notifications: %w", err))
	}
	return count, nil
}
