package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/notify"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

type MessageHandler struct {
	messages *store.MessageStore
	users    *store.UserStore
	notifier *notify.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewMessageHandler(messages *store.MessageStore, users *store.UserStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		users:    users,
		notifier: notifier,
		hub:      hub,
		logger:   logger.With("component", "message"),
	}
}

// List handles GET /api/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
}

// Create handles POST /api/messages. Sender and recipient must share a
// family.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	username := auth.Username(r.Context())

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.RecipientID == userID {
		writeError(w, http.StatusBadRequest, "cannot message yourself")
		return
	}

	sender, err := h.users.GetByID(userID)
	if err != nil || sender == nil {
		h.logger.Error("get sender", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	recipient, err := h.users.GetByID(req.RecipientID)
	if err != nil {
		h.logger.Error("get recipient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	if recipient == nil {
		writeError(w, http.StatusNotFound, "recipient not found")
		return
	}
	if sender.FamilyID == nil || recipient.FamilyID == nil || *sender.FamilyID != *recipient.FamilyID {
		writeError(w, http.StatusForbidden, "recipient is not in your family")
		return
	}

	msg, err := h.messages.Create(userID, recipient.ID, req.Content)
	if err != nil {
		h.logger.Error("create message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	_, err = h.notifier.Create(store.NewNotification{
		UserID:    recipient.ID,
		Type:      model.NotifMessage,
		Title:     "New Message",
		Message:   fmt.Sprintf("%s sent you a message", username),
		RelatedID: &msg.ID,
	})
	if err != nil {
		h.logger.Error("create message notification", "error", err)
	}

	h.hub.SendToUser(recipient.ID, websocket.NewMessage("message", "created", msg.ID, nil))
	writeJSON(w, http.StatusCreated, msg)
}

type updateMessageRequest struct {
	Status string `json:"status"`
}

// Update handles PUT /api/messages/{id}. Only the recipient moves a
// message along Sent -> Read -> Completed.
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	msg, err := h.messages.GetByID(id)
	if err != nil {
		h.logger.Error("get message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update message")
		return
	}
	if msg == nil || (msg.SenderID != userID && msg.RecipientID != userID) {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	if msg.RecipientID != userID {
		writeError(w, http.StatusForbidden, "only the recipient can update a message")
		return
	}

	var req updateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Status != model.MessageRead && req.Status != model.MessageCompleted {
		writeError(w, http.StatusBadRequest, "status must be Read or Completed")
		return
	}

	if err := h.messages.UpdateStatus(id, req.Status); err != nil {
		h.logger.Error("update message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update message")
		return
	}

	h.hub.SendToUser(msg.SenderID, websocket.NewMessage("message", "updated", id, map[string]any{"status": req.Status}))
	updated, _ := h.messages.GetByID(id)
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/messages/{id}. Either party can delete.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	msg, err := h.messages.GetByID(id)
	if err != nil {
		h.logger.Error("get message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if msg == nil || (msg.SenderID != userID && msg.RecipientID != userID) {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	if err := h.messages.Delete(id); err != nil {
		h.logger.Error("delete message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete message")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
