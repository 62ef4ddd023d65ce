package models

import "time"

// Notification is a message addressed to the vendor of a place
type Notification struct {
	ID                int64     `json:"id"`
	PlaceID           string    `json:"place_id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // e.g., "SETTLEMENT"
	RelatedEntityID   *string   `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NotificationEntity names the kind of record a notification points at
type NotificationEntity string

const (
	NotificationEntitySettlement NotificationEntity = "SETTLEMENT"
)
