package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/playpal-app/backend/internal/domain/model"
	"github.com/playpal-app/backend/internal/domain/rules"
	pgrepo "github.com/playpal-app/backend/internal/repo/postgres"
	bookingsvc "github.com/playpal-app/backend/internal/services/bookings"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type VenueCatalog interface {
	GetByID(ctx context.Context, venueID int64) (model.Venue, error)
	List(ctx context.Context, limit int) ([]model.Venue, error)
}

type VenueHandler struct {
	catalog  VenueCatalog
	bookings *bookingsvc.Service
}

func NewVenueHandler(catalog VenueCatalog, bookings *bookingsvc.Service) *VenueHandler {
	return &VenueHandler{catalog: catalog, bookings: bookings}
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "VENUE_SERVICE_UNAVAILABLE", "venue catalog is unavailable")
		return
	}

	venues, err := h.catalog.List(r.Context(), queryLimit(r, 50))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list venues")
		return
	}

	res := dto.VenueListResponse{Venues: make([]dto.VenueResponse, 0, len(venues))}
	for _, venue := range venues {
		res.Venues = append(res.Venues, mapVenue(venue))
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeInternal(w, "VENUE_SERVICE_UNAVAILABLE", "venue catalog is unavailable")
		return
	}

	venueID, ok := pathID(r, "venueID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid venue id")
		return
	}

	venue, err := h.catalog.GetByID(r.Context(), venueID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrVenueNotFound) {
			writeNotFound(w, "NOT_FOUND", "venue not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load venue")
		return
	}

	httperrors.Write(w, http.StatusOK, mapVenue(venue))
}

// DaySlots renders the hourly availability grid for ?date=YYYY-MM-DD.
func (h *VenueHandler) DaySlots(w http.ResponseWriter, r *http.Request) {
	if h.bookings == nil {
		writeInternal(w, "BOOKING_SERVICE_UNAVAILABLE", "booking service is unavailable")
		return
	}

	venueID, ok := pathID(r, "venueID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid venue id")
		return
	}

	rawDate := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "date must be YYYY-MM-DD")
		return
	}

	slots, open, err := h.bookings.DaySlots(r.Context(), venueID, date)
	if err != nil {
		switch {
		case errors.Is(err, bookingsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid slot request")
		case errors.Is(err, bookingsvc.ErrVenueNotFound):
			writeNotFound(w, "NOT_FOUND", "venue not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to build slots")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DaySlotsResponse{
		VenueID: venueID,
		Date:    rawDate,
		Open:    open,
		Slots:   mapSlots(slots),
	})
}

func mapVenue(venue model.Venue) dto.VenueResponse {
	hours := make(map[int]dto.DayWindowResponse, len(venue.OpenHours))
	for weekday, window := range venue.OpenHours {
		hours[weekday] = dto.DayWindowResponse{Open: window.Open, Close: window.Close}
	}

	offers := make([]dto.VenueActivityResponse, 0, len(venue.Offers))
	for _, offer := range venue.Offers {
		offers = append(offers, dto.VenueActivityResponse{
			Name:            offer.Name,
			HourlyRateCents: offer.HourlyRateCents,
		})
	}

	return dto.VenueResponse{
		ID:        venue.ID,
		Name:      venue.Name,
		Location:  venue.Location,
		Lat:       venue.Lat,
		Lon:       venue.Lon,
		Currency:  venue.Currency,
		OpenHours: hours,
		Offers:    offers,
	}
}

func mapSlots(slots []rules.Slot) []dto.SlotResponse {
	mapped := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		mapped = append(mapped, dto.SlotResponse{
			Start:     slot.Start,
			End:       slot.End,
			Available: slot.Available,
		})
	}
	return mapped
}
