package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/playpal-app/backend/internal/services/auth"
	progressionsvc "github.com/playpal-app/backend/internal/services/progression"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type ProgressionHandler struct {
	service *progressionsvc.Service
}

func NewProgressionHandler(service *progressionsvc.Service) *ProgressionHandler {
	return &ProgressionHandler{service: service}
}

func (h *ProgressionHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROGRESSION_SERVICE_UNAVAILABLE", "progression service is unavailable")
		return
	}

	total, err := h.service.Total(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, progressionsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid progression request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load progression")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProgressionResponse{
		UserID:  identity.UserID,
		TotalXP: total,
	})
}
