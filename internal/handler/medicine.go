package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/notify"
	"hearth/internal/stock"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

type MedicineHandler struct {
	medicines *store.MedicineStore
	notifier  *notify.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewMedicineHandler(medicines *store.MedicineStore, notifier *notify.Service, hub *websocket.Hub, logger *slog.Logger) *MedicineHandler {
	return &MedicineHandler{
		medicines: medicines,
		notifier:  notifier,
		hub:       hub,
		logger:    logger.With("component", "medicine"),
	}
}

// medicineView is a medicine plus its projected stock.
type medicineView struct {
	model.Medicine
	DaysPassed   int     `json:"days_passed"`
	QuantityLeft float64 `json:"quantity_left"`
	Percent      float64 `json:"percent"`
	IsLow        bool    `json:"is_low"`
}

func projectMedicine(m model.Medicine, policy stock.Policy, now time.Time) medicineView {
	proj := stock.Project(m.Quantity, m.UsePerDay, m.DateAdded, now)
	return medicineView{
		Medicine:     m,
		DaysPassed:   proj.DaysPassed,
		QuantityLeft: proj.QuantityLeft,
		Percent:      proj.Percent,
		IsLow:        policy.Low(proj),
	}
}

// List handles GET /api/medicines. The list view flags stock at the 10%
// threshold.
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicines.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list medicines", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list medicines")
		return
	}

	now := time.Now()
	views := make([]medicineView, 0, len(medicines))
	for _, m := range medicines {
		views = append(views, projectMedicine(m, stock.ListPolicy, now))
	}
	writeJSON(w, http.StatusOK, views)
}

type createMedicineRequest struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UsePerDay float64 `json:"use_per_day"`
	RemindAt  string  `json:"remind_at"`
}

// Create handles POST /api/medicines
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req createMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 0 || req.UsePerDay < 0 {
		writeError(w, http.StatusBadRequest, "quantity and use_per_day must not be negative")
		return
	}

	m, err := h.medicines.Create(userID, req.Name, req.Quantity, req.UsePerDay, req.RemindAt)
	if err != nil {
		h.logger.Error("create medicine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create medicine")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("medicine", "created", m.ID, nil))
	writeJSON(w, http.StatusCreated, projectMedicine(*m, stock.ListPolicy, time.Now()))
}

type updateMedicineRequest struct {
	Name      *string  `json:"name"`
	Quantity  *float64 `json:"quantity"`
	UsePerDay *float64 `json:"use_per_day"`
	RemindAt  *string  `json:"remind_at"`
}

// Update handles PUT /api/medicines/{id}. A quantity change restarts the
// stock projection from today. If the updated medicine is still low on
// the 10% policy a low-stock notification goes out.
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.medicines.GetByID(id)
	if err != nil {
		h.logger.Error("get medicine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update medicine")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "medicine not found")
		return
	}

	var req updateMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	m, err := h.medicines.Update(id, store.MedicineUpdate{
		Name:      req.Name,
		Quantity:  req.Quantity,
		UsePerDay: req.UsePerDay,
		RemindAt:  req.RemindAt,
	})
	if err != nil {
		h.logger.Error("update medicine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update medicine")
		return
	}

	view := projectMedicine(*m, stock.ListPolicy, time.Now())
	if view.IsLow {
		_, err := h.notifier.Create(store.NewNotification{
			UserID:    userID,
			Type:      model.NotifMedicine,
			Title:     "Low Medicine Stock",
			Message:   fmt.Sprintf("%s is running low (%.0f%% left)", m.Name, view.Percent),
			Priority:  "high",
			RelatedID: &m.ID,
		})
		if err != nil {
			h.logger.Error("create low-stock notification", "error", err)
		}
	}

	h.hub.SendToUser(userID, websocket.NewMessage("medicine", "updated", id, nil))
	writeJSON(w, http.StatusOK, view)
}

// Delete handles DELETE /api/medicines/{id}
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.medicines.GetByID(id)
	if err != nil {
		h.logger.Error("get medicine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete medicine")
		return
	}
	if existing == nil || existing.UserID != userID {
		writeError(w, http.StatusNotFound, "medicine not found")
		return
	}

	if err := h.medicines.Delete(id); err != nil {
		h.logger.Error("delete medicine", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete medicine")
		return
	}

	h.hub.SendToUser(userID, websocket.NewMessage("medicine", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}
