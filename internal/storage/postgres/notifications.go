package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spotnere/admin-api/internal/models"
)

const notificationColumns = `id, place_id, message, is_read, related_entity_type, related_entity_id, created_at`

func scanNotification(row rowScanner) (*models.Notification, error) {
	notification := &models.Notification{}
	var entityType, entityID sql.NullString
	if err := row.Scan(
		&notification.ID,
		&notification.PlaceID,
		&notification.Message,
		&notification.IsRead,
		&entityType,
		&entityID,
		&notification.CreatedAt,
	); err != nil {
		return nil, err
	}
	if entityType.Valid {
		notification.RelatedEntityType = &entityType.String
	}
	if entityID.Valid {
		notification.RelatedEntityID = &entityID.String
	}
	return notification, nil
}

// GetNotification retrieves a notification by its ID.
func (s *PostgresStore) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
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
func (s *PostgresStore) ListNotifications(ctx context.Context, placeID string, limit, offset int, unreadOnly bool) ([]*models.Notification, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE place_id = $1 AND (NOT $2::boolean OR is_read = FALSE)",
		placeID, unreadOnly,
	).Scan(&total); err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count notifications: %w", err))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+`
		 FROM notifications
		 WHERE place_id = $1 AND (NOT $2::boolean OR is_read = FALSE)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3 OFFSET $4`,
		placeID, unreadOnly, limit, offset,
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
func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE notifications SET is_read = TRUE WHERE id = $1", id); err != nil {
		return classify(fmt.Errorf("failed to mark notification as read: %w", err))
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification of a place as read.
func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, placeID string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE place_id = $1 AND is_read = FALSE", placeID,
	); err != nil {
		return classify(fmt.Errorf("failed to mark all notifications as read: %w", err))
	}
	return nil
}

// UnreadNotificationCount counts a place's unread notifications.
func (s *PostgresStore) UnreadNotificationCount(ctx context.Context, placeID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE place_id = $1 AND is_read = FALSE", placeID,
	).Scan(&count); err != nil {
		return 0, classify(fmt.Errorf("failed to count unread notifications: %w", err))
	}
	return count, nil
}
