package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hearth/internal/auth"
	"hearth/internal/email"
	"hearth/internal/store"
)

const maxVerifyAttempts = 3

type AuthHandler struct {
	users    *store.UserStore
	pending  *store.PendingStore
	sessions *store.SessionStore
	mailer   *email.Client
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, pending *store.PendingStore, sessions *store.SessionStore, mailer *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		pending:  pending,
		sessions: sessions,
		mailer:   mailer,
		logger:   logger.With("component", "auth"),
	}
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/auth/sign-up. It stages the registration and
// emails a verification code; no user row exists until Verify succeeds.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	taken, err := h.users.VerifiedTaken(req.Username, req.Email)
	if err != nil {
		h.logger.Error("check existing user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}
	if taken != "" {
		writeError(w, http.StatusConflict, taken+" already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	pv, err := h.pending.Create(req.Username, req.Email, string(hash))
	if err != nil {
		h.logger.Error("stage verification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	if h.mailer.Configured() {
		if err := h.mailer.SendOTP(pv.Email, pv.Username, pv.Code); err != nil {
			h.logger.Error("send verification email", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to send verification email")
			return
		}
	} else {
		// Local development without Postmark: surface the code in the log.
		h.logger.Warn("email not configured, verification code logged", "email", pv.Email, "code", pv.Code)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "verification code sent",
		"expires_at": pv.ExpiresAt,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify handles PUT /api/auth/verify. Three wrong codes or a three
// minute delay void the pending registration.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	pv, err := h.pending.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("get pending verification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify")
		return
	}
	if pv == nil {
		writeError(w, http.StatusBadRequest, "verification expired or not found, sign up again")
		return
	}

	if pv.Code != req.Code {
		attempts, err := h.pending.IncrementAttempts(pv.ID)
		if err != nil {
			h.logger.Error("increment attempts", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to verify")
			return
		}
		if attempts >= maxVerifyAttempts {
			if err := h.pending.DeleteByEmail(req.Email); err != nil {
				h.logger.Error("delete pending verification", "error", err)
			}
			writeError(w, http.StatusBadRequest, "too many attempts, sign up again")
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":         "incorrect code",
			"attempts_left": maxVerifyAttempts - attempts,
		})
		return
	}

	user, err := h.users.Create(pv.Username, pv.Email, pv.PasswordHash)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify")
		return
	}
	if err := h.pending.DeleteByEmail(req.Email); err != nil {
		h.logger.Error("delete pending verification", "error", err)
	}

	if err := h.startSession(w, user.ID); err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify")
		return
	}

	h.logger.Info("user verified", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	// Same answer whether the username or the password was wrong.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if ok {
		if err := h.sessions.Delete(ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

const sessionCookieName = "hearth_session"

func (h *AuthHandler) startSession(w http.ResponseWriter, userID int64) error {
	sess, err := h.sessions.Create(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
