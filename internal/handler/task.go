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

var validBuckets = map[string]bool{
	model.DueToday:     true,
	model.DueTomorrow:  true,
	model.DueThisWeek:  true,
	model.DueThisMonth: true,
}

type TaskHandler struct {
	tasks    *store.TaskStore
	families *store.FamilyStore
	notifier *notify.Service
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, families *store.FamilyStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		families: families,
		notifier: notifier,
		hub:      hub,
		logger:   logger.With("component", "task"),
	}
}

// List handles GET /api/family/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	family, err := h.families.GetForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return
	}

	tasks, err := h.tasks.ListByFamily(family.ID)
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.FamilyTask{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskRequest struct {
	Title     string `json:"title"`
	DueBucket string `json:"due_bucket"`
	Priority  string `json:"priority"`
}

// Create handles POST /api/family/tasks. Every other member of the
// family gets a notification.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	username := auth.Username(r.Context())

	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if !validBuckets[req.DueBucket] {
		req.DueBucket = model.DueToday
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	task, err := h.tasks.Create(family.ID, req.Title, userID, req.DueBucket, req.Priority)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	members, err := h.families.ListMembers(family.ID)
	if err != nil {
		h.logger.Error("list members", "error", err)
	}
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		_, err := h.notifier.Create(store.NewNotification{
			UserID:    m.UserID,
			Type:      model.NotifTask,
			Title:     "New Family Task",
			Message:   fmt.Sprintf("%s added a task: %s (%s)", username, task.Title, task.DueBucket),
			Priority:  task.Priority,
			RelatedID: &task.ID,
		})
		if err != nil {
			h.logger.Error("create task notification", "error", err, "user_id", m.UserID)
		}
	}

	h.hub.Broadcast(websocket.NewMessage("task", "created", task.ID, nil))
	writeJSON(w, http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title     string `json:"title"`
	DueBucket string `json:"due_bucket"`
	Priority  string `json:"priority"`
}

// Update handles PUT /api/family/tasks/{id}. A bucket change re-derives
// the due date.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	_, task, ok := h.taskInFamily(w, userID, id)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Title == "" {
		req.Title = task.Title
	}
	if !validBuckets[req.DueBucket] {
		req.DueBucket = task.DueBucket
	}
	if req.Priority == "" {
		req.Priority = task.Priority
	}

	updated, err := h.tasks.Update(id, req.Title, req.DueBucket, req.Priority)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "updated", id, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/family/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if _, _, ok := h.taskInFamily(w, userID, id); !ok {
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("task", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// taskInFamily loads the task and checks it belongs to the caller's
// family, writing the error response itself when it does not.
func (h *TaskHandler) taskInFamily(w http.ResponseWriter, userID, taskID int64) (*model.Family, *model.FamilyTask, bool) {
	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return nil, nil, false
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return nil, nil, false
	}

	task, err := h.tasks.GetByID(taskID)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return nil, nil, false
	}
	if task == nil || task.FamilyID != family.ID {
		writeError(w, http.StatusNotFound, "task not found")
		return nil, nil, false
	}
	return family, task, true
}
