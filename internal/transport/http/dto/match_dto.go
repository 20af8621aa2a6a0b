package dto

import "time"

type MatchItemResponse struct {
	ID            int64     `json:"id"`
	PartnerUserID int64     `json:"partner_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type MatchListResponse struct {
	Matches []MatchItemResponse `json:"matches"`
}

type UnmatchResponse struct {
	OK bool `json:"ok"`
}
