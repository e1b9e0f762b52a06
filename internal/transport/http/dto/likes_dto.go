package dto

type LikeRequest struct {
	TargetID int64 `json:"target_id"`
}

type LikeResponse struct {
	Matched        bool `json:"matched"`
	AlreadyMatched bool `json:"already_matched,omitempty"`
}
