package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/store"
)

type NotificationHandler struct {
	notifications *store.NotificationStore
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger.With("component", "notification"),
	}
}

// List handles GET /api/notifications?limit=&unreadOnly=
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	notifications, err := h.notifications.List(userID, limit, unreadOnly)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	unread, err := h.notifications.CountUnread(userID)
	if err != nil {
		h.logger.Error("count unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead handles PUT /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	n, err := h.notifications.GetByID(id)
	if err != nil {
		h.logger.Error("get notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}
	if n == nil || n.UserID != userID {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	if err := h.notifications.MarkRead(id); err != nil {
		h.logger.Error("mark read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllRead handles PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.MarkAllRead(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("mark all read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark all read")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": count})
}

// Dismiss handles DELETE /api/notifications/{id}. Dismissal is a soft
// delete so bill reminders stay quiet for a day.
func (h *NotificationHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	n, err := h.notifications.GetByID(id)
	if err != nil {
		h.logger.Error("get notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dismiss notification")
		return
	}
	if n == nil || n.UserID != userID {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}

	if err := h.notifications.Dismiss(id); err != nil {
		h.logger.Error("dismiss notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to dismiss notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
