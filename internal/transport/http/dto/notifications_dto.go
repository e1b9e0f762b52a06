package dto

import "time"

type NotificationItemResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationsResponse struct {
	Items []NotificationItemResponse `json:"items"`
}

type NotificationReadResponse struct {
	Updated bool `json:"updated"`
}
