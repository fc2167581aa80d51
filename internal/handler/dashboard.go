package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/auth"
	"hearth/internal/bill"
	"hearth/internal/model"
	"hearth/internal/notify"
	"hearth/internal/stock"
	"hearth/internal/store"
)

type DashboardHandler struct {
	todos     *store.TodoStore
	medicines *store.MedicineStore
	bills     *store.BillStore
	tasks     *store.TaskStore
	messages  *store.MessageStore
	grocery   *store.GroceryStore
	families  *store.FamilyStore
	notifier  *notify.Service
	events    *store.NotificationStore
	logger    *slog.Logger
}

func NewDashboardHandler(
	todos *store.TodoStore,
	medicines *store.MedicineStore,
	bills *store.BillStore,
	tasks *store.TaskStore,
	messages *store.MessageStore,
	grocery *store.GroceryStore,
	families *store.FamilyStore,
	notifier *notify.Service,
	events *store.NotificationStore,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		todos:     todos,
		medicines: medicines,
		bills:     bills,
		tasks:     tasks,
		messages:  messages,
		grocery:   grocery,
		families:  families,
		notifier:  notifier,
		events:    events,
		logger:    logger.With("component", "dashboard"),
	}
}

type dashboardStats struct {
	TotalExpenses  float64 `json:"total_expenses"`
	PendingBills   int     `json:"pending_bills"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalTasks     int     `json:"total_tasks"`
	FamilyMembers  int     `json:"family_members"`
}

// Get handles GET /api/dashboard. One response carries everything the
// home screen shows; loading it also runs the low-stock and bill
// due-soon notification sweeps.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	now := time.Now()

	todos, err := h.todos.ListByUser(userID)
	if err != nil {
		h.logger.Error("list todos", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	medicines, err := h.medicines.ListByUser(userID)
	if err != nil {
		h.logger.Error("list medicines", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	medicineViews := make([]medicineView, 0, len(medicines))
	for _, m := range medicines {
		medicineViews = append(medicineViews, projectMedicine(m, stock.DashboardPolicy, now))
	}
	h.sweepMedicines(userID, medicineViews)

	messages, err := h.messages.ListForUser(userID)
	if err != nil {
		h.logger.Error("list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	var (
		family    *model.Family
		billViews []billView
		tasks     []model.FamilyTask
		stats     dashboardStats
	)
	family, err = h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	if family != nil {
		slots, err := h.bills.ListByFamily(family.ID)
		if err != nil {
			h.logger.Error("list bills", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}
		for _, s := range slots {
			d := bill.Derive(s, now)
			billViews = append(billViews, billView{BillSlot: s, DerivedStatus: d.Status, DaysUntilDue: d.DaysUntilDue})
			stats.TotalExpenses += s.Amount
			if d.Status != bill.StatusPaid {
				stats.PendingBills++
			}
		}
		h.sweepBills(userID, billViews, now)

		tasks, err = h.tasks.ListByFamily(family.ID)
		if err != nil {
			h.logger.Error("list tasks", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}

		stats.FamilyMembers, err = h.families.CountMembers(family.ID)
		if err != nil {
			h.logger.Error("count members", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}
	}

	stats.TotalTasks = len(todos)
	for _, t := range todos {
		if t.Completed {
			stats.CompletedTasks++
		}
	}

	var groceryView *groceryListView
	if l, err := h.grocery.GetActiveForUser(userID); err != nil {
		h.logger.Error("get active grocery list", "error", err)
	} else if l != nil {
		groceryView, err = h.view(l)
		if err != nil {
			h.logger.Error("load grocery view", "error", err)
		}
	}

	if todos == nil {
		todos = []model.Todo{}
	}
	if messages == nil {
		messages = []model.Message{}
	}
	if tasks == nil {
		tasks = []model.FamilyTask{}
	}
	if billViews == nil {
		billViews = []billView{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"todos":     todos,
		"medicines": medicineViews,
		"messages":  messages,
		"bills":     billViews,
		"tasks":     tasks,
		"family":    family,
		"grocery":   groceryView,
		"stats":     stats,
	})
}

// view assembles a grocery list with its items and recipients, shared
// with the grocery handler's response shape.
func (h *DashboardHandler) view(l *model.GroceryList) (*groceryListView, error) {
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

// sweepMedicines fires a low-stock notification for every medicine at or
// under the dashboard threshold. There is deliberately no de-dup here;
// the 24h retention purge is the only bound on repeats.
func (h *DashboardHandler) sweepMedicines(userID int64, views []medicineView) {
	for _, v := range views {
		if !v.IsLow {
			continue
		}
		_, err := h.notifier.Create(store.NewNotification{
			UserID:    userID,
			Type:      model.NotifMedicine,
			Title:     "Low Medicine Stock",
			Message:   fmt.Sprintf("%s is running low (%.0f%% left)", v.Name, v.Percent),
			Priority:  "high",
			RelatedID: &v.ID,
		})
		if err != nil {
			h.logger.Error("create low-stock notification", "error", err)
		}
	}
}

// sweepBills reminds about due-soon bills, de-duplicated on the
// dismissal-keyed re-arm window.
func (h *DashboardHandler) sweepBills(userID int64, views []billView, now time.Time) {
	for _, v := range views {
		d := bill.Derived{Status: v.DerivedStatus, DaysUntilDue: v.DaysUntilDue}
		if !bill.NeedsReminder(d) {
			continue
		}

		latest, err := h.events.LatestBillEvent(userID, v.BillType, v.DueDate, v.ID)
		if err != nil {
			h.logger.Error("look up bill notification", "error", err)
			continue
		}
		if !notify.ShouldCreate(latest, now) {
			continue
		}

		dueDate := v.DueDate
		_, err = h.notifier.Create(store.NewNotification{
			UserID:    userID,
			Type:      model.NotifBill,
			Title:     "Bill Due Soon",
			Message:   fmt.Sprintf("The %s bill ($%.2f) is due in %d day(s)", v.BillType, v.Amount, v.DaysUntilDue),
			Priority:  "high",
			RelatedID: &v.ID,
			BillType:  v.BillType,
			DueDate:   &dueDate,
		})
		if err != nil {
			h.logger.Error("create bill notification", "error", err)
		}
	}
}
