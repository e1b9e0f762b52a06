package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/matchchat/internal/domain/model"
	authsvc "github.com/ivankudzin/matchchat/internal/services/auth"
	"github.com/ivankudzin/matchchat/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/matchchat/internal/transport/http/errors"
)

type NotificationStore interface {
	ListForUser(ctx context.Context, userID int64, limit int, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) (bool, error)
}

type NotificationsHandler struct {
	store NotificationStore
}

func NewNotificationsHandler(store NotificationStore) *NotificationsHandler {
	return &NotificationsHandler{store: store}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.store == nil {
		writeInternal(w, "NOTIFICATIONS_UNAVAILABLE", "notification store is unavailable")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	items, err := h.store.ListForUser(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 50), unreadOnly)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load notifications")
		return
	}

	responseItems := make([]dto.NotificationItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.NotificationItemResponse{
			ID:        item.ID,
			Type:      string(item.Type),
			Content:   item.Content,
			Read:      item.Read,
			CreatedAt: item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{Items: responseItems})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.store == nil {
		writeInternal(w, "NOTIFICATIONS_UNAVAILABLE", "notification store is unavailable")
		return
	}

	notificationID, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid notification id")
		return
	}

	updated, err := h.store.MarkRead(r.Context(), identity.UserID, notificationID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to mark notification as read")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationReadResponse{Updated: updated})
}
