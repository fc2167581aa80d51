package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/notify"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

type GroceryHandler struct {
	grocery  *store.GroceryStore
	users    *store.UserStore
	notifier *notify.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewGroceryHandler(grocery *store.GroceryStore, users *store.UserStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{
		grocery:  grocery,
		users:    users,
		notifier: notifier,
		hub:      hub,
		logger:   logger.With("component", "grocery"),
	}
}

type groceryListView struct {
	model.GroceryList
	Items      []model.GroceryItem `json:"items"`
	Recipients []int64             `json:"recipients"`
}

func (h *GroceryHandler) view(l *model.GroceryList) (*groceryListView, error) {
	items, err := h.grocery.ListItems(l.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.GroceryItem{}
	}
	recipients, err := h.grocery.ListRecipients(l.ID)
	if err != nil {
		return nil, err
	}
	return &groceryListView{GroceryList: *l, Items: items, Recipients: recipients}, nil
}

// Get handles GET /api/grocery. Returns the active list the user can
// see, own or shared.
func (h *GroceryHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.grocery.GetActiveForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get active list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grocery list")
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "no active grocery list")
		return
	}

	v, err := h.view(l)
	if err != nil {
		h.logger.Error("load list view", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load grocery list")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createGroceryRequest struct {
	Title string `json:"title"`
	Items []struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	} `json:"items"`
}

// Create handles POST /api/grocery. A new list replaces the creator's
// previous active one.
func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createGroceryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	l, err := h.grocery.CreateActive(userID, req.Title)
	if err != nil {
		h.logger.Error("create grocery list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create grocery list")
		return
	}

	for _, it := range req.Items {
		if it.Name == "" {
			continue
		}
		if _, err := h.grocery.AddItem(l.ID, it.Name, it.Quantity, it.Unit); err != nil {
			h.logger.Error("add grocery item", "error", err)
		}
	}

	v, err := h.view(l)
	if err != nil {
		h.logger.Error("load list view", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create grocery list")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("grocery", "created", l.ID, nil))
	writeJSON(w, http.StatusCreated, v)
}

type groceryActionRequest struct {
	Action   string  `json:"action"`
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	UserID   int64   `json:"user_id"`
}

// Update handles PUT /api/grocery. The body carries an action: add,
// remove, toggle, share, or complete.
func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	username := auth.Username(r.Context())

	l, err := h.grocery.GetActiveForUser(userID)
	if err != nil {
		h.logger.Error("get active list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update grocery list")
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "no active grocery list")
		return
	}

	var req groceryActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch req.Action {
	case "add":
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if _, err := h.grocery.AddItem(l.ID, req.Name, req.Quantity, req.Unit); err != nil {
			h.logger.Error("add item", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to add item")
			return
		}

	case "remove":
		if err := h.grocery.RemoveItem(l.ID, req.ItemID); err != nil {
			h.logger.Error("remove item", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to remove item")
			return
		}

	case "toggle":
		if err := h.grocery.ToggleItem(l.ID, req.ItemID); err != nil {
			h.logger.Error("toggle item", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to toggle item")
			return
		}

	case "share":
		if err := h.share(w, l, userID, username, req.UserID); err != nil {
			return
		}

	case "complete":
		if _, err := h.grocery.Complete(l.ID, userID); err != nil {
			if errors.Is(err, store.ErrNotCreator) {
				writeError(w, http.StatusForbidden, "only the creator can complete the list")
				return
			}
			h.logger.Error("complete list", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to complete list")
			return
		}

	default:
		writeError(w, http.StatusBadRequest, "action must be add, remove, toggle, share, or complete")
		return
	}

	updated, err := h.grocery.GetByID(l.ID)
	if err != nil || updated == nil {
		h.logger.Error("reload list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update grocery list")
		return
	}
	v, err := h.view(updated)
	if err != nil {
		h.logger.Error("load list view", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update grocery list")
		return
	}

	h.notifyWatchers(l, websocket.NewMessage("grocery", req.Action, l.ID, nil))
	writeJSON(w, http.StatusOK, v)
}

// share validates the target and records them as a recipient. Writes
// the error response and returns non-nil when it fails.
func (h *GroceryHandler) share(w http.ResponseWriter, l *model.GroceryList, userID int64, username string, targetID int64) error {
	if l.CreatorID != userID {
		writeError(w, http.StatusForbidden, "only the creator can share the list")
		return errors.New("not creator")
	}
	if targetID == userID {
		writeError(w, http.StatusBadRequest, "cannot share with yourself")
		return errors.New("self share")
	}

	me, err := h.users.GetByID(userID)
	if err != nil || me == nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to share list")
		return fmt.Errorf("get user: %w", err)
	}
	target, err := h.users.GetByID(targetID)
	if err != nil {
		h.logger.Error("get target user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to share list")
		return fmt.Errorf("get target: %w", err)
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return errors.New("target missing")
	}
	if me.FamilyID == nil || target.FamilyID == nil || *me.FamilyID != *target.FamilyID {
		writeError(w, http.StatusForbidden, "user is not in your family")
		return errors.New("not family")
	}

	if err := h.grocery.AddRecipient(l.ID, targetID); err != nil {
		h.logger.Error("add recipient", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to share list")
		return err
	}

	_, err = h.notifier.Create(store.NewNotification{
		UserID:    targetID,
		Type:      model.NotifGrocery,
		Title:     "Grocery List Shared",
		Message:   fmt.Sprintf("%s shared a grocery list with you", username),
		RelatedID: &l.ID,
	})
	if err != nil {
		h.logger.Error("create share notification", "error", err)
	}
	return nil
}

// Delete handles DELETE /api/grocery. Creator only.
func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	l, err := h.grocery.GetActiveForUser(userID)
	if err != nil {
		h.logger.Error("get active list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete grocery list")
		return
	}
	if l == nil {
		writeError(w, http.StatusNotFound, "no active grocery list")
		return
	}

	if err := h.grocery.DeleteActive(l.ID, userID); err != nil {
		if errors.Is(err, store.ErrNotCreator) {
			writeError(w, http.StatusForbidden, "only the creator can delete the list")
			return
		}
		h.logger.Error("delete list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete grocery list")
		return
	}

	h.notifyWatchers(l, websocket.NewMessage("grocery", "deleted", l.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ListCompleted handles GET /api/grocery/completed
func (h *GroceryHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	lists, err := h.grocery.ListCompleted(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list completed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list completed lists")
		return
	}
	if lists == nil {
		lists = []model.GroceryList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

// notifyWatchers pushes a ws event to everyone on the list.
func (h *GroceryHandler) notifyWatchers(l *model.GroceryList, msg websocket.Message) {
	h.hub.SendToUser(l.CreatorID, msg)
	recipients, err := h.grocery.ListRecipients(l.ID)
	if err != nil {
		h.logger.Error("list recipients", "error", err)
		return
	}
	for _, id := range recipients {
		if id != l.CreatorID {
			h.hub.SendToUser(id, msg)
		}
	}
}
