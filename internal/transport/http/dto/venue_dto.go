package dto

import "time"

type VenueActivityResponse struct {
	Name            string `json:"name"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
}

type DayWindowResponse struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type VenueResponse struct {
	ID        int64                     `json:"id"`
	Name      string                    `json:"name"`
	Location  string                    `json:"location"`
	Lat       float64                   `json:"lat"`
	Lon       float64                   `json:"lon"`
	Currency  string                    `json:"currency"`
	OpenHours map[int]DayWindowResponse `json:"open_hours"`
	Offers    []VenueActivityResponse   `json:"offers"`
}

type VenueListResponse struct {
	Venues []VenueResponse `json:"venues"`
}

type SlotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

type DaySlotsResponse struct {
	VenueID int64          `json:"venue_id"`
	Date    string         `json:"date"`
	Open    bool           `json:"open"`
	Slots   []SlotResponse `json:"slots"`
}
