package rules

import (
	"testing"
	"time"

	"github.com/playpal-app/backend/internal/domain/model"
)

func TestOpenWindowClosedDay(t *testing.T) {
	hours := model.OpenHours{
		1: {Open: "09:00", Close: "17:00"},
	}
	sunday := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	_, ok, err := OpenWindow(hours, sunday)
	if err != nil {
		t.Fatalf("open window: %v", err)
	}
	if ok {
		t.Fatalf("expected closed day for weekday without an entry")
	}
}

func TestOpenWindowResolvesOnDate(t *testing.T) {
	hours := model.OpenHours{
		1: {Open: "09:00", Close: "17:00"},
	}
	monday := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	window, ok, err := OpenWindow(hours, monday)
	if err != nil {
		t.Fatalf("open window: %v", err)
	}
	if !ok {
		t.Fatalf("expected open day")
	}
	if !window.Start.Equal(at(9, 0)) || !window.End.Equal(at(17, 0)) {
		t.Fatalf("unexpected window: %v", window)
	}
}

func TestDaySlotsMarksBusySlot(t *testing.T) {
	window := NewInterval(at(9, 0), at(17, 0))
	busy := []Interval{NewInterval(at(12, 0), at(13, 0))}

	slots := DaySlots(window, SlotDuration, busy)
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots for 09:00-17:00, got %d", len(slots))
	}

	unavailable := 0
	for _, slot := range slots {
		if !slot.Available {
			unavailable++
			if !slot.Start.Equal(at(12, 0)) {
				t.Fatalf("wrong slot marked busy: %v", slot)
			}
		}
	}
	if unavailable != 1 {
		t.Fatalf("expected exactly one unavailable slot, got %d", unavailable)
	}
}

func TestDaySlotsDropsTrailingPartial(t *testing.T) {
	window := NewInterval(at(9, 0), at(10, 30))

	slots := DaySlots(window, SlotDuration, nil)
	if len(slots) != 1 {
		t.Fatalf("expected the 10:00-10:30 remainder to be dropped, got %d slots", len(slots))
	}
	if !slots[0].Start.Equal(at(9, 0)) || !slots[0].End.Equal(at(10, 0)) {
		t.Fatalf("unexpected slot: %v", slots[0])
	}
}

func TestDaySlotsPartialReservationBlocksSlot(t *testing.T) {
	window := NewInterval(at(9, 0), at(11, 0))
	busy := []Interval{NewInterval(at(9, 30), at(10, 30))}

	slots := DaySlots(window, SlotDuration, busy)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Available || slots[1].Available {
		t.Fatalf("a reservation straddling both slots must block both: %+v", slots)
	}
}

func TestPriceCentsFractionalHours(t *testing.T) {
	if got := PriceCents(2000, 90*time.Minute); got != 3000 {
		t.Fatalf("unexpected price: got %d want 3000", got)
	}
	if got := PriceCents(2000, time.Hour); got != 2000 {
		t.Fatalf("unexpected price: got %d want 2000", got)
	}
	if got := PriceCents(1500, 20*time.Minute); got != 500 {
		t.Fatalf("unexpected price: got %d want 500", got)
	}
}
