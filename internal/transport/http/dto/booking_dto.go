package dto

import "time"

type ReserveRequest struct {
	VenueID  int64     `json:"venue_id"`
	Activity string    `json:"activity"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type BookingResponse struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	VenueID    int64     `json:"venue_id"`
	Activity   string    `json:"activity"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	PriceCents int64     `json:"price_cents"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}
