package model

import "time"

// Match rows are stored once per pair with user_a_id < user_b_id.
type Match struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	CreatedAt time.Time `json:"created_at"`
}
