package model

import (
	"time"

	"github.com/playpal-app/backend/internal/domain/enums"
)

type Booking struct {
	ID         int64               `json:"id"`
	Reference  string              `json:"reference"`
	VenueID    int64               `json:"venue_id"`
	UserID     int64               `json:"user_id"`
	Activity   string              `json:"activity"`
	StartsAt   time.Time           `json:"starts_at"`
	EndsAt     time.Time           `json:"ends_at"`
	PriceCents int64               `json:"price_cents"`
	Status     enums.BookingStatus `json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
}
