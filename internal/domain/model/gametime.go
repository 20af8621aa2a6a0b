package model

import (
	"time"

	"github.com/playpal-app/backend/internal/domain/enums"
)

type Gametime struct {
	ID          int64                `json:"id"`
	CreatorID   int64                `json:"creator_id"`
	Activity    string               `json:"activity"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      time.Time            `json:"ends_at"`
	Capacity    int                  `json:"capacity"`
	PlayerCount int                  `json:"player_count"`
	Status      enums.GametimeStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

type GametimePlayer struct {
	GametimeID int64                     `json:"gametime_id"`
	UserID     int64                     `json:"user_id"`
	Status     enums.ParticipationStatus `json:"status"`
	JoinedAt   time.Time                 `json:"joined_at"`
}
