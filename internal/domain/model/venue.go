package model

type Venue struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Lat       float64         `json:"lat"`
	Lon       float64         `json:"lon"`
	Currency  string          `json:"currency"`
	OpenHours OpenHours       `json:"open_hours"`
	Offers    []VenueActivity `json:"offers"`
}

// OpenHours maps a weekday (0=Sunday .. 6=Saturday) to the open window
// for that day. A missing weekday means the venue is closed that day.
type OpenHours map[int]DayWindow

type DayWindow struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type VenueActivity struct {
	Name            string `json:"name"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
}
