package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

type TodoHandler struct {
	todos  *store.TodoStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTodoHandler(todos *store.TodoStore, hub *websocket.Hub, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, hub: hub, logger: logger.With("component", "todo")}
}

// List handles GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list todos", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

type createTodoRequest struct {
	Text     string     `json:"text"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date"`
}

// Create handles POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	todo, err := h.todos.Create(userID, req.Text, req.Priority, req.DueDate)
	if err != nil {
		h.logger.Error("create todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("todo", "created", todo.ID, nil))
	writeJSON(w, http.StatusCreated, todo)
}

type updateTodoRequest struct {
	Text      *string    `json:"text"`
	Completed *bool      `json:"completed"`
	Priority  *string    `json:"priority"`
	DueDate   *time.Time `json:"due_date"`
}

// Update handles PUT /api/todos/{id}
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.todos.GetByID(id)
	if err != nil {
		h.logger.Error("get todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	var req updateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	todo, err := h.todos.Update(id, store.TodoUpdate{
		Text:      req.Text,
		Completed: req.Completed,
		Priority:  req.Priority,
		DueDate:   req.DueDate,
	})
	if err != nil {
		h.logger.Error("update todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update todo")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("todo", "updated", id, nil))
	writeJSON(w, http.StatusOK, todo)
}

// Delete handles DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.todos.GetByID(id)
	if err != nil {
		h.logger.Error("get todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}

	if err := h.todos.Delete(id); err != nil {
		h.logger.Error("delete todo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete todo")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("todo", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
