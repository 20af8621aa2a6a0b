package rules

import (
	"fmt"
	"time"

	"github.com/playpal-app/backend/internal/domain/model"
)

const SlotDuration = time.Hour

type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// OpenWindow resolves a venue's open-hours entry for the given date into a
// concrete interval on that date. ok is false when the venue has no entry
// for the date's weekday, i.e. it is closed that day.
func OpenWindow(hours model.OpenHours, date time.Time) (Interval, bool, error) {
	window, ok := hours[int(date.Weekday())]
	if !ok {
		return Interval{}, false, nil
	}

	open, err := atTimeOfDay(date, window.Open)
	if err != nil {
		return Interval{}, false, fmt.Errorf("parse open time: %w", err)
	}
	close, err := atTimeOfDay(date, window.Close)
	if err != nil {
		return Interval{}, false, fmt.Errorf("parse close time: %w", err)
	}
	if !open.Before(close) {
		return Interval{}, false, fmt.Errorf("open hours window %s-%s is empty", window.Open, window.Close)
	}

	return Interval{Start: open, End: close}, true, nil
}

// DaySlots splits the open window into consecutive slots of duration d and
// marks each one unavailable if it overlaps any busy interval. A trailing
// remainder shorter than d is dropped.
func DaySlots(window Interval, d time.Duration, busy []Interval) []Slot {
	if d <= 0 || !window.Valid() {
		return []Slot{}
	}

	slots := make([]Slot, 0, window.Duration()/d)
	for start := window.Start; !start.Add(d).After(window.End); start = start.Add(d) {
		slot := Interval{Start: start, End: start.Add(d)}
		available := true
		for _, b := range busy {
			if slot.Overlaps(b) {
				available = false
				break
			}
		}
		slots = append(slots, Slot{Start: slot.Start, End: slot.End, Available: available})
	}

	return slots
}

func atTimeOfDay(date time.Time, value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}
