package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	relsvc "github.com/ivankudzin/matchchat/internal/services/relations"
	"github.com/ivankudzin/matchchat/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchchat/internal/transport/http/errors"
)

type LikesHandler struct {
	service *relsvc.Service
}

func NewLikesHandler(service *relsvc.Service) *LikesHandler {
	return &LikesHandler{service: service}
}

func (h *LikesHandler) Like(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "RELATIONS_SERVICE_UNAVAILABLE", "relations service is unavailable")
		return
	}

	var req dto.LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.Like(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		switch {
		case errors.Is(err, relsvc.ErrSelfLike):
			writeBadRequest(w, "SELF_LIKE", "you cannot like yourself")
		case errors.Is(err, relsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid like request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to apply like")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LikeResponse{
		Matched:        result.Matched,
		AlreadyMatched: result.AlreadyMatched,
	})
}
