package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	chatsvc "github.com/ivankudzin/matchchat/internal/services/chat"
	"github.com/ivankudzin/matchchat/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchchat/internal/transport/http/errors"
)

type MessagesHandler struct {
	service *chatsvc.Service
}

func NewMessagesHandler(service *chatsvc.Service) *MessagesHandler {
	return &MessagesHandler{service: service}
}

// History returns the caller's message log with one peer, oldest first.
func (h *MessagesHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	peerID, ok := parseID(chi.URLParam(r, "peerID"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid peer id")
		return
	}

	items, err := h.service.History(r.Context(), identity.UserID, peerID, parseIntOrDefault(r.URL.Query().Get("limit"), 200))
	if err != nil {
		switch {
		case errors.Is(err, chatsvc.ErrInvalidFormat):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid history request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load message history")
		}
		return
	}

	responseItems := make([]dto.MessageItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MessageItemResponse{
			ID:         item.ID,
			FromUserID: item.FromUserID,
			Content:    item.Content,
			CreatedAt:  item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MessageHistoryResponse{
		PeerID: peerID,
		Items:  responseItems,
	})
}
