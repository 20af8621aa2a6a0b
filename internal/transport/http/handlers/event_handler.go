package handlers

import (
	"errors"
	"net/http"

	"github.com/playpal-app/backend/internal/domain/model"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	eventsvc "github.com/playpal-app/backend/internal/services/events"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type EventHandler struct {
	service *eventsvc.Service
}

func NewEventHandler(service *eventsvc.Service) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	var req dto.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	event, err := h.service.Create(r.Context(), identity.UserID, req.Name, req.Activity, req.StartsAt, req.EndsAt, req.RegistrationCloses, req.Capacity)
	if err != nil {
		handleEventError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapEvent(event))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	eventID, ok := pathID(r, "eventID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
		return
	}

	event, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		handleEventError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapEvent(event))
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	events, err := h.service.ListOpen(r.Context(), queryLimit(r, 50))
	if err != nil {
		handleEventError(w, err)
		return
	}

	res := dto.EventListResponse{Events: make([]dto.EventResponse, 0, len(events))}
	for _, event := range events {
		res.Events = append(res.Events, mapEvent(event))
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	eventID, ok := pathID(r, "eventID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
		return
	}

	registration, err := h.service.Register(r.Context(), identity.UserID, eventID)
	if err != nil {
		handleEventError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.RegistrationResponse{
		EventID:      registration.EventID,
		Reference:    registration.Reference,
		Status:       string(registration.Status),
		RegisteredAt: registration.RegisteredAt,
	})
}

func (h *EventHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	eventID, ok := pathID(r, "eventID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
		return
	}

	if err := h.service.Withdraw(r.Context(), identity.UserID, eventID); err != nil {
		handleEventError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	eventID, ok := pathID(r, "eventID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
		return
	}

	if err := h.service.CancelEvent(r.Context(), identity.UserID, eventID); err != nil {
		handleEventError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func handleEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event request")
	case errors.Is(err, eventsvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "event not found")
	case errors.Is(err, eventsvc.ErrNotOrganizer):
		writeForbidden(w, "FORBIDDEN", "event belongs to another user")
	case errors.Is(err, eventsvc.ErrNotCancellable):
		writeConflict(w, "STATE_ERROR", "event cannot be cancelled in its current state")
	default:
		handleAdmissionError(w, err, "event")
	}
}

func mapEvent(event model.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:                 event.ID,
		OrganizerID:        event.OrganizerID,
		Name:               event.Name,
		Activity:           event.Activity,
		StartsAt:           event.StartsAt,
		EndsAt:             event.EndsAt,
		Capacity:           event.Capacity,
		RegisteredCount:    event.RegisteredCount,
		RegistrationCloses: event.RegistrationCloses,
		Status:             string(event.Status),
	}
}
