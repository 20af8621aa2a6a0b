package dto

import "time"

type CreateGametimeRequest struct {
	Activity string    `json:"activity"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
}

type GametimeResponse struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	Activity    string    `json:"activity"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Capacity    int       `json:"capacity"`
	PlayerCount int       `json:"player_count"`
	Status      string    `json:"status"`
}

type GametimeListResponse struct {
	Gametimes []GametimeResponse `json:"gametimes"`
}
