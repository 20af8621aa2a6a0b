package model

import (
	"time"

	"github.com/playpal-app/backend/internal/domain/enums"
)

type Event struct {
	ID                 int64             `json:"id"`
	OrganizerID        int64             `json:"organizer_id"`
	Name               string            `json:"name"`
	Activity           string            `json:"activity"`
	StartsAt           time.Time         `json:"starts_at"`
	EndsAt             time.Time         `json:"ends_at"`
	Capacity           int               `json:"capacity"`
	RegisteredCount    int               `json:"registered_count"`
	RegistrationCloses time.Time         `json:"registration_closes"`
	Status             enums.EventStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
}

type EventRegistration struct {
	EventID      int64                    `json:"event_id"`
	UserID       int64                    `json:"user_id"`
	Reference    string                   `json:"reference"`
	Status       enums.RegistrationStatus `json:"status"`
	RegisteredAt time.Time                `json:"registered_at"`
}
