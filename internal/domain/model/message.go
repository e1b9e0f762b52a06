package model

import "time"

// Message is one row of a user's message log. Every sent message is written
// twice, once under each participant, so history reads never need to merge
// two directions. CreatedAt is assigned by the database at persistence time.
type Message struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	PeerID     int64     `json:"peer_id"`
	FromUserID int64     `json:"from_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
