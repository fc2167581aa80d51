package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"hearth/internal/email"
	"hearth/internal/handler"
	"hearth/internal/middleware"
	"hearth/internal/notify"
	"hearth/internal/push"
	"hearth/internal/store"
	ws "hearth/internal/websocket"
)

type Server struct {
	db  *sql.DB
	hub *ws.Hub

	authH         *handler.AuthHandler
	todoH         *handler.TodoHandler
	medicineH     *handler.MedicineHandler
	billH         *handler.BillHandler
	familyH       *handler.FamilyHandler
	taskH         *handler.TaskHandler
	messageH      *handler.MessageHandler
	notificationH *handler.NotificationHandler
	groceryH      *handler.GroceryHandler
	dashboardH    *handler.DashboardHandler
	pushH         *handler.PushHandler

	sessionStore *store.SessionStore
	pendingStore *store.PendingStore
	userStore    *store.UserStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, pushSvc *push.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	pendingStore := store.NewPendingStore(db)
	sessionStore := store.NewSessionStore(db)
	familyStore := store.NewFamilyStore(db)
	todoStore := store.NewTodoStore(db)
	medicineStore := store.NewMedicineStore(db)
	billStore := store.NewBillStore(db)
	taskStore := store.NewTaskStore(db)
	messageStore := store.NewMessageStore(db)
	notificationStore := store.NewNotificationStore(db)
	groceryStore := store.NewGroceryStore(db)
	pushStore := store.NewPushStore(db)

	notifier := notify.NewService(notificationStore, pushStore, pushSvc, hub, logger)

	return &Server{
		db:  db,
		hub: hub,

		authH:         handler.NewAuthHandler(userStore, pendingStore, sessionStore, emailClient, logger),
		todoH:         handler.NewTodoHandler(todoStore, hub, logger),
		medicineH:     handler.NewMedicineHandler(medicineStore, notifier, hub, logger),
		billH:         handler.NewBillHandler(billStore, familyStore, hub, logger),
		familyH:       handler.NewFamilyHandler(familyStore, hub, logger),
		taskH:         handler.NewTaskHandler(taskStore, familyStore, notifier, hub, logger),
		messageH:      handler.NewMessageHandler(messageStore, userStore, notifier, hub, logger),
		notificationH: handler.NewNotificationHandler(notificationStore, logger),
		groceryH:      handler.NewGroceryHandler(groceryStore, userStore, notifier, hub, logger),
		dashboardH: handler.NewDashboardHandler(
			todoStore, medicineStore, billStore, taskStore, messageStore,
			groceryStore, familyStore, notifier, notificationStore, logger,
		),
		pushH: handler.NewPushHandler(pushStore, pushSvc, logger),

		sessionStore: sessionStore,
		pendingStore: pendingStore,
		userStore:    userStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PendingStore returns the pending verification store for cleanup tasks.
func (s *Server) PendingStore() *store.PendingStore {
	return s.pendingStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes. Sign-up and login are rate limited by client IP.
	outerMux.HandleFunc("POST /api/auth/sign-up", s.rateLimited(s.authH.SignUp))
	outerMux.HandleFunc("PUT /api/auth/verify", s.rateLimited(s.authH.Verify))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	mux.HandleFunc("GET /api/todos", s.todoH.List)
	mux.HandleFunc("POST /api/todos", s.todoH.Create)
	mux.HandleFunc("PUT /api/todos/{id}", s.todoH.Update)
	mux.HandleFunc("DELETE /api/todos/{id}", s.todoH.Delete)

	mux.HandleFunc("GET /api/medicines", s.medicineH.List)
	mux.HandleFunc("POST /api/medicines", s.medicineH.Create)
	mux.HandleFunc("PUT /api/medicines/{id}", s.medicineH.Update)
	mux.HandleFunc("DELETE /api/medicines/{id}", s.medicineH.Delete)

	mux.HandleFunc("GET /api/bills", s.billH.List)
	mux.HandleFunc("PUT /api/bills/{type}", s.billH.Upsert)
	mux.HandleFunc("POST /api/bills/sweep", s.billH.Sweep)

	mux.HandleFunc("GET /api/family", s.familyH.Get)
	mux.HandleFunc("POST /api/family", s.familyH.Create)
	mux.HandleFunc("DELETE /api/family", s.familyH.Delete)
	mux.HandleFunc("GET /api/family/lookup", s.familyH.Lookup)
	mux.HandleFunc("POST /api/family/join", s.familyH.Join)
	mux.HandleFunc("DELETE /api/family/members/{id}", s.familyH.RemoveMember)
	mux.HandleFunc("PUT /api/family/folders", s.familyH.SetFolder)
	mux.HandleFunc("DELETE /api/family/folders", s.familyH.ClearFolder)

	mux.HandleFunc("GET /api/family/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/family/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/family/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/family/tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("GET /api/messages", s.messageH.List)
	mux.HandleFunc("POST /api/messages", s.messageH.Create)
	mux.HandleFunc("PUT /api/messages/{id}", s.messageH.Update)
	mux.HandleFunc("DELETE /api/messages/{id}", s.messageH.Delete)

	mux.HandleFunc("GET /api/notifications", s.notificationH.List)
	mux.HandleFunc("PUT /api/notifications/{id}/read", s.notificationH.MarkRead)
	mux.HandleFunc("PATCH /api/notifications/read-all", s.notificationH.MarkAllRead)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.notificationH.Dismiss)

	mux.HandleFunc("GET /api/grocery", s.groceryH.Get)
	mux.HandleFunc("POST /api/grocery", s.groceryH.Create)
	mux.HandleFunc("PUT /api/grocery", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/grocery", s.groceryH.Delete)
	mux.HandleFunc("GET /api/grocery/completed", s.groceryH.ListCompleted)

	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Get)

	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
