package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/playpal-app/backend/internal/services/auth"
	discoverysvc "github.com/playpal-app/backend/internal/services/discovery"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type DiscoveryHandler struct {
	service *discoverysvc.Service
}

func NewDiscoveryHandler(service *discoverysvc.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

func (h *DiscoveryHandler) Discover(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DISCOVERY_SERVICE_UNAVAILABLE", "discovery service is unavailable")
		return
	}

	candidates, err := h.service.Discover(r.Context(), identity.UserID, queryLimit(r, 20))
	if err != nil {
		switch {
		case errors.Is(err, discoverysvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid discovery request")
		case errors.Is(err, discoverysvc.ErrProfileNotFound):
			writeNotFound(w, "NOT_FOUND", "viewer profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to rank candidates")
		}
		return
	}

	res := dto.DiscoveryResponse{Candidates: make([]dto.CandidateResponse, 0, len(candidates))}
	for _, candidate := range candidates {
		res.Candidates = append(res.Candidates, dto.CandidateResponse{
			UserID:      candidate.Profile.UserID,
			DisplayName: candidate.Profile.DisplayName,
			Activities:  candidate.Profile.Activities,
			SkillLevel:  candidate.Profile.SkillLevel,
			DistanceKM:  candidate.DistanceKM,
			Score:       candidate.Score,
		})
	}
	httperrors.Write(w, http.StatusOK, res)
}
