package dto

import "time"

type CreateEventRequest struct {
	Name               string    `json:"name"`
	Activity           string    `json:"activity"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	RegistrationCloses time.Time `json:"registration_closes"`
	Capacity           int       `json:"capacity"`
}

type EventResponse struct {
	ID                 int64     `json:"id"`
	OrganizerID        int64     `json:"organizer_id"`
	Name               string    `json:"name"`
	Activity           string    `json:"activity"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	Capacity           int       `json:"capacity"`
	RegisteredCount    int       `json:"registered_count"`
	RegistrationCloses time.Time `json:"registration_closes"`
	Status             string    `json:"status"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
}

type RegistrationResponse struct {
	EventID      int64     `json:"event_id"`
	Reference    string    `json:"reference"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}
