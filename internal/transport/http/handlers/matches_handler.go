package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	relsvc "github.com/ivankudzin/matchchat/internal/services/relations"
	"github.com/ivankudzin/matchchat/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchchat/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *relsvc.Service
}

func NewMatchesHandler(service *relsvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RELATIONS_SERVICE_UNAVAILABLE", "relations service is unavailable")
		return
	}

	items, err := h.service.ListMatches(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		switch {
		case errors.Is(err, relsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			ID:           item.ID,
			TargetUserID: item.TargetUserID,
			DisplayName:  item.DisplayName,
			CreatedAt:    item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RELATIONS_SERVICE_UNAVAILABLE", "relations service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	deleted, err := h.service.Unmatch(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, relsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{Deleted: deleted})
}
