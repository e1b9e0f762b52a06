package dto

import "time"

type MatchItemResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type UnmatchRequest struct {
	TargetID int64 `json:"target_id"`
}

type UnmatchResponse struct {
	Deleted bool `json:"deleted"`
}
