package dto

import "time"

type MessageItemResponse struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"from_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type MessageHistoryResponse struct {
	PeerID int64                 `json:"peer_id"`
	Items  []MessageItemResponse `json:"items"`
}
