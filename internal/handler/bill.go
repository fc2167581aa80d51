package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/auth"
	"hearth/internal/bill"
	"hearth/internal/model"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

type BillHandler struct {
	bills    *store.BillStore
	families *store.FamilyStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewBillHandler(bills *store.BillStore, families *store.FamilyStore, hub *websocket.Hub, logger *slog.Logger) *BillHandler {
	return &BillHandler{
		bills:    bills,
		families: families,
		hub:      hub,
		logger:   logger.With("component", "bill"),
	}
}

// billView is a slot plus its derived status. The stored status field
// may lag; the derived one is authoritative for display.
type billView struct {
	model.BillSlot
	DerivedStatus bill.Status `json:"derived_status"`
	DaysUntilDue  int         `json:"days_until_due"`
}

func (h *BillHandler) familyFor(r *http.Request) (*model.Family, error) {
	return h.families.GetForUser(auth.UserID(r.Context()))
}

// List handles GET /api/bills
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	family, err := h.familyFor(r)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return
	}

	slots, err := h.bills.ListByFamily(family.ID)
	if err != nil {
		h.logger.Error("list bills", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}

	today := time.Now()
	views := make([]billView, 0, len(slots))
	for _, s := range slots {
		d := bill.Derive(s, today)
		views = append(views, billView{BillSlot: s, DerivedStatus: d.Status, DaysUntilDue: d.DaysUntilDue})
	}
	writeJSON(w, http.StatusOK, views)
}

type upsertBillRequest struct {
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"due_date"`
	IsPaid  bool      `json:"is_paid"`
}

// Upsert handles PUT /api/bills/{type}
func (h *BillHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	billType := r.PathValue("type")
	if !model.ValidBillType(billType) {
		writeError(w, http.StatusBadRequest, "unknown bill type")
		return
	}

	family, err := h.familyFor(r)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bill")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return
	}

	var req upsertBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	if req.DueDate.IsZero() {
		writeError(w, http.StatusBadRequest, "due_date is required")
		return
	}

	var paidDate *time.Time
	if req.IsPaid {
		now := time.Now()
		paidDate = &now
	}

	d := bill.Derive(model.BillSlot{DueDate: req.DueDate, IsPaid: req.IsPaid}, time.Now())

	slot, err := h.bills.Upsert(family.ID, billType, req.Amount, req.DueDate, req.IsPaid, paidDate, string(d.Status))
	if err != nil {
		h.logger.Error("upsert bill", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bill")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("bill", "updated", slot.ID, map[string]any{"bill_type": billType}))
	writeJSON(w, http.StatusOK, billView{BillSlot: *slot, DerivedStatus: d.Status, DaysUntilDue: d.DaysUntilDue})
}

// Sweep handles POST /api/bills/sweep. It persists the derived status of
// each slot, one update per slot.
func (h *BillHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	family, err := h.familyFor(r)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sweep bills")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "join a family first")
		return
	}

	slots, err := h.bills.ListByFamily(family.ID)
	if err != nil {
		h.logger.Error("list bills", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sweep bills")
		return
	}

	today := time.Now()
	updated := 0
	for _, s := range slots {
		d := bill.Derive(s, today)
		if s.Status == string(d.Status) {
			continue
		}
		if err := h.bills.UpdateStatus(s.ID, string(d.Status)); err != nil {
			h.logger.Error("persist bill status", "error", err, "bill_type", s.BillType)
			continue
		}
		updated++
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}
