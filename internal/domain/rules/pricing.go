package rules

import (
	"math"
	"time"
)

// PriceCents computes hourlyRateCents × duration in fractional hours,
// rounded to the nearest cent.
func PriceCents(hourlyRateCents int64, d time.Duration) int64 {
	hours := d.Hours()
	return int64(math.Round(float64(hourlyRateCents) * hours))
}
