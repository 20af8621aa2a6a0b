package handlers

import (
	"errors"
	"net/http"

	"github.com/playpal-app/backend/internal/domain/model"
	admissionsvc "github.com/playpal-app/backend/internal/services/admission"
	authsvc "github.com/playpal-app/backend/internal/services/auth"
	gametimesvc "github.com/playpal-app/backend/internal/services/gametimes"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type GametimeHandler struct {
	service *gametimesvc.Service
}

func NewGametimeHandler(service *gametimesvc.Service) *GametimeHandler {
	return &GametimeHandler{service: service}
}

func (h *GametimeHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	var req dto.CreateGametimeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	gametime, err := h.service.Create(r.Context(), identity.UserID, req.Activity, req.StartsAt, req.EndsAt, req.Capacity)
	if err != nil {
		handleGametimeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, mapGametime(gametime))
}

func (h *GametimeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	gametimeID, ok := pathID(r, "gametimeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid gametime id")
		return
	}

	gametime, err := h.service.Get(r.Context(), gametimeID)
	if err != nil {
		handleGametimeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapGametime(gametime))
}

func (h *GametimeHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	gametimes, err := h.service.ListUpcoming(r.Context(), queryLimit(r, 50))
	if err != nil {
		handleGametimeError(w, err)
		return
	}

	res := dto.GametimeListResponse{Gametimes: make([]dto.GametimeResponse, 0, len(gametimes))}
	for _, gametime := range gametimes {
		res.Gametimes = append(res.Gametimes, mapGametime(gametime))
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *GametimeHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	gametimeID, ok := pathID(r, "gametimeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid gametime id")
		return
	}

	gametime, err := h.service.Join(r.Context(), identity.UserID, gametimeID)
	if err != nil {
		handleGametimeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapGametime(gametime))
}

func (h *GametimeHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	gametimeID, ok := pathID(r, "gametimeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid gametime id")
		return
	}

	gametime, err := h.service.Leave(r.Context(), identity.UserID, gametimeID)
	if err != nil {
		handleGametimeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mapGametime(gametime))
}

func (h *GametimeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "GAMETIME_SERVICE_UNAVAILABLE", "gametime service is unavailable")
		return
	}

	gametimeID, ok := pathID(r, "gametimeID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid gametime id")
		return
	}

	if err := h.service.Cancel(r.Context(), identity.UserID, gametimeID); err != nil {
		handleGametimeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func handleGametimeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gametimesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid gametime request")
	case errors.Is(err, gametimesvc.ErrNotFound):
		writeNotFound(w, "NOT_FOUND", "gametime not found")
	case errors.Is(err, gametimesvc.ErrNotCreator):
		writeForbidden(w, "FORBIDDEN", "gametime belongs to another user")
	case errors.Is(err, gametimesvc.ErrNotCancellable):
		writeConflict(w, "STATE_ERROR", "gametime cannot be cancelled in its current state")
	default:
		handleAdmissionError(w, err, "gametime")
	}
}

func handleAdmissionError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, admissionsvc.ErrNotAdmittable):
		writeConflict(w, "STATE_ERROR", resource+" is not accepting admissions")
	case errors.Is(err, admissionsvc.ErrDeadlinePassed):
		writeConflict(w, "STATE_ERROR", resource+" admission deadline passed")
	case errors.Is(err, admissionsvc.ErrCapacityFull):
		writeConflict(w, "CONFLICT", resource+" is at capacity")
	case errors.Is(err, admissionsvc.ErrAlreadyAdmitted):
		writeConflict(w, "CONFLICT", "already admitted to this "+resource)
	case errors.Is(err, admissionsvc.ErrNotAdmitted):
		writeNotFound(w, "NOT_FOUND", "no admitted record for this "+resource)
	case errors.Is(err, admissionsvc.ErrOwnerCannotWithdraw):
		writeForbidden(w, "FORBIDDEN", "owner cannot withdraw from own "+resource)
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process "+resource+" request")
	}
}

func mapGametime(gametime model.Gametime) dto.GametimeResponse {
	return dto.GametimeResponse{
		ID:          gametime.ID,
		CreatorID:   gametime.CreatorID,
		Activity:    gametime.Activity,
		StartsAt:    gametime.StartsAt,
		EndsAt:      gametime.EndsAt,
		Capacity:    gametime.Capacity,
		PlayerCount: gametime.PlayerCount,
		Status:      string(gametime.Status),
	}
}
