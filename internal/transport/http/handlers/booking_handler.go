package handlers

import (
	"errors"
	"net/http"

	"github.com/playpal-app/backend/internal/domain/model"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	bookingsvc "github.com/playpal-app/backend/internal/services/bookings"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type BookingHandler struct {
	service *bookingsvc.Service
}

func NewBookingHandler(service *bookingsvc.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKING_SERVICE_UNAVAILABLE", "booking service is unavailable")
		return
	}

	var req dto.ReserveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	booking, err := h.service.Reserve(r.Context(), identity.UserID, req.VenueID, req.Activity, req.StartsAt, req.EndsAt)
	if err != nil {
		handleBookingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapBooking(booking))
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKING_SERVICE_UNAVAILABLE", "booking service is unavailable")
		return
	}

	bookingID, ok := pathID(r, "bookingID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid booking id")
		return
	}

	booking, err := h.service.Cancel(r.Context(), identity.UserID, bookingID)
	if err != nil {
		handleBookingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapBooking(booking))
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKING_SERVICE_UNAVAILABLE", "booking service is unavailable")
		return
	}

	bookingID, ok := pathID(r, "bookingID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid booking id")
		return
	}

	booking, err := h.service.Complete(r.Context(), identity.UserID, bookingID)
	if err != nil {
		handleBookingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapBooking(booking))
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "BOOKING_SERVICE_UNAVAILABLE", "booking service is unavailable")
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), identity.UserID, queryLimit(r, 50))
	if err != nil {
		handleBookingError(w, err)
		return
	}

	res := dto.BookingListResponse{Bookings: make([]dto.BookingResponse, 0, len(bookings))}
	for _, booking := range bookings {
		res.Bookings = append(res.Bookings, mapBooking(booking))
	}
	httperrors.Write(w, http.StatusOK, res)
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bookingsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid booking request")
	case errors.Is(err, bookingsvc.ErrActivityNotOffered):
		writeBadRequest(w, "VALIDATION_ERROR", "venue does not offer this activity")
	case errors.Is(err, bookingsvc.ErrVenueClosed):
		writeBadRequest(w, "VALIDATION_ERROR", "venue is closed at the requested time")
	case errors.Is(err, bookingsvc.ErrVenueNotFound), errors.Is(err, bookingsvc.ErrBookingNotFound):
		writeNotFound(w, "NOT_FOUND", "resource not found")
	case errors.Is(err, bookingsvc.ErrSlotConflict):
		writeConflict(w, "CONFLICT", "requested range conflicts with an existing booking")
	case errors.Is(err, bookingsvc.ErrNotOwner):
		writeForbidden(w, "FORBIDDEN", "booking belongs to another user")
	case errors.Is(err, bookingsvc.ErrAlreadyCancelled), errors.Is(err, bookingsvc.ErrNotCancellable), errors.Is(err, bookingsvc.ErrNotCompletable):
		writeConflict(w, "STATE_ERROR", "booking is not in a valid state for this operation")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process booking")
	}
}

func mapBooking(booking model.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:         booking.ID,
		Reference:  booking.Reference,
		VenueID:    booking.VenueID,
		Activity:   booking.Activity,
		StartsAt:   booking.StartsAt,
		EndsAt:     booking.EndsAt,
		PriceCents: booking.PriceCents,
		Status:     string(booking.Status),
		CreatedAt:  booking.CreatedAt,
	}
}
