package model

import (
	"time"

	"github.com/ivankudzin/matchchat/internal/domain/enums"
)

type Notification struct {
	ID        int64                  `json:"id"`
	UserID    int64                  `json:"user_id"`
	Type      enums.NotificationType `json:"type"`
	Content   string                 `json:"content"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}
