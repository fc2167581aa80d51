package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"hearth/internal/auth"
	"hearth/internal/model"
	"hearth/internal/store"
	"hearth/internal/websocket"
)

// Folder links must point at a drive folder, not an arbitrary URL.
var driveFolderPattern = regexp.MustCompile(`^https://drive\.google\.com/drive/(u/\d+/)?folders/[a-zA-Z0-9_-]+`)

var folderColumns = map[string]string{
	"docs":   "docs_folder",
	"videos": "videos_folder",
	"photos": "photos_folder",
}

type FamilyHandler struct {
	families *store.FamilyStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewFamilyHandler(families *store.FamilyStore, hub *websocket.Hub, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{
		families: families,
		hub:      hub,
		logger:   logger.With("component", "family"),
	}
}

type familyView struct {
	model.Family
	Members []store.MemberDetail `json:"members"`
}

// Get handles GET /api/family
func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	family, err := h.families.GetForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "not in a family")
		return
	}

	members, err := h.families.ListMembers(family.ID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load family")
		return
	}
	writeJSON(w, http.StatusOK, familyView{Family: *family, Members: members})
}

type createFamilyRequest struct {
	Name string `json:"name"`
}

// Create handles POST /api/family
func (h *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	existing, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create family")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "already in a family")
		return
	}

	var req createFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	family, err := h.families.Create(req.Name, userID)
	if err != nil {
		h.logger.Error("create family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create family")
		return
	}

	writeJSON(w, http.StatusCreated, family)
}

// Delete handles DELETE /api/family. Creator only.
func (h *FamilyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "not in a family")
		return
	}
	if family.CreatedBy != userID {
		writeError(w, http.StatusForbidden, "only the creator can delete the family")
		return
	}

	if err := h.families.Delete(family.ID); err != nil {
		h.logger.Error("delete family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete family")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family", "deleted", family.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Lookup handles GET /api/family/lookup?code=. It previews a family
// before joining.
func (h *FamilyHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	family, err := h.families.GetByCode(code)
	if err != nil {
		h.logger.Error("lookup family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "invalid invitation code")
		return
	}

	count, err := h.families.CountMembers(family.ID)
	if err != nil {
		h.logger.Error("count members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to look up family")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           family.ID,
		"name":         family.Name,
		"member_count": count,
	})
}

type joinFamilyRequest struct {
	Code string `json:"code"`
}

// Join handles POST /api/family/join
func (h *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req joinFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	family, err := h.families.GetByCode(code)
	if err != nil {
		h.logger.Error("get family by code", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "invalid invitation code")
		return
	}

	if _, err := h.families.AddMember(family.ID, userID); err != nil {
		if errors.Is(err, store.ErrAlreadyMember) {
			writeError(w, http.StatusConflict, "already a member of a family")
			return
		}
		h.logger.Error("add member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join family")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family", "member_joined", family.ID, nil))
	writeJSON(w, http.StatusOK, family)
}

// RemoveMember handles DELETE /api/family/members/{id}. Removing your
// own id is leaving.
func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	targetID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "not in a family")
		return
	}

	// Anyone can leave; removing someone else takes the creator.
	if targetID != userID && family.CreatedBy != userID {
		writeError(w, http.StatusForbidden, "only the creator can remove members")
		return
	}

	if err := h.families.RemoveMember(family.ID, targetID); err != nil {
		if errors.Is(err, store.ErrCreator) {
			writeError(w, http.StatusForbidden, "the creator cannot leave, delete the family instead")
			return
		}
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family", "member_removed", family.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type folderRequest struct {
	Folder string `json:"folder"`
	URL    string `json:"url"`
}

// SetFolder handles PUT /api/family/folders
func (h *FamilyHandler) SetFolder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	column, ok := folderColumns[req.Folder]
	if !ok {
		writeError(w, http.StatusBadRequest, "folder must be docs, videos, or photos")
		return
	}
	if !driveFolderPattern.MatchString(req.URL) {
		writeError(w, http.StatusBadRequest, "url must be a drive folder link")
		return
	}

	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set folder")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "not in a family")
		return
	}

	if err := h.families.SetFolder(family.ID, column, req.URL); err != nil {
		h.logger.Error("set folder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set folder")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family", "folder_updated", family.ID, map[string]any{"folder": req.Folder}))
	writeJSON(w, http.StatusOK, map[string]string{"folder": req.Folder, "url": req.URL})
}

// ClearFolder handles DELETE /api/family/folders
func (h *FamilyHandler) ClearFolder(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req folderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	column, ok := folderColumns[req.Folder]
	if !ok {
		writeError(w, http.StatusBadRequest, "folder must be docs, videos, or photos")
		return
	}

	family, err := h.families.GetForUser(userID)
	if err != nil {
		h.logger.Error("get family", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear folder")
		return
	}
	if family == nil {
		writeError(w, http.StatusNotFound, "not in a family")
		return
	}

	if err := h.families.SetFolder(family.ID, column, ""); err != nil {
		h.logger.Error("clear folder", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear folder")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("family", "folder_updated", family.ID, map[string]any{"folder": req.Folder}))
	w.WriteHeader(http.StatusNoContent)
}
