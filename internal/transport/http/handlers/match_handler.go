package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/playpal-app/backend/internal/services/auth"
	matchsvc "github.com/playpal-app/backend/internal/services/matches"
	"github.com/playpal-app/backend/internal/transport/http/dto"
	httperrors "github.com/playpal-app/backend/internal/transport/http/errors"
)

type MatchHandler struct {
	service *matchsvc.Service
}

func NewMatchHandler(service *matchsvc.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), identity.UserID, queryLimit(r, 50))
	if err != nil {
		handleMatchError(w, err)
		return
	}

	res := dto.MatchListResponse{Matches: make([]dto.MatchItemResponse, 0, len(items))}
	for _, item := range items {
		res.Matches = append(res.Matches, dto.MatchItemResponse{
			ID:            item.ID,
			PartnerUserID: item.PartnerUserID,
			CreatedAt:     item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, res)
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	partnerID, ok := pathID(r, "partnerID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid partner id")
		return
	}

	item, err := h.service.Get(r.Context(), identity.UserID, partnerID)
	if err != nil {
		switch {
		case errors.Is(err, matchsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
		case errors.Is(err, matchsvc.ErrNoActiveMatch):
			writeNotFound(w, "NOT_FOUND", "no active match for this pair")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process match request")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchItemResponse{
		ID:            item.ID,
		PartnerUserID: item.PartnerUserID,
		CreatedAt:     item.CreatedAt,
	})
}

func (h *MatchHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	partnerID, ok := pathID(r, "partnerID")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid partner id")
		return
	}

	if err := h.service.Unmatch(r.Context(), identity.UserID, partnerID); err != nil {
		handleMatchError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{OK: true})
}

func handleMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, matchsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match request")
	case errors.Is(err, matchsvc.ErrNoActiveMatch):
		writeConflict(w, "STATE_ERROR", "no active match for this pair")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process match request")
	}
}
