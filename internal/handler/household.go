package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmayman/mealio/internal/auth"
	"github.com/dmayman/mealio/internal/email"
	"github.com/dmayman/mealio/internal/model"
	"github.com/dmayman/mealio/internal/store"
	ws "github.com/dmayman/mealio/internal/websocket"
)

type HouseholdHandler struct {
	householdStore *store.HouseholdStore
	emailClient    *email.Client
	hub            *ws.Hub
	logger         *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, ec *email.Client, hub *ws.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{householdStore: hs, emailClient: ec, hub: hub, logger: logger}
}

type householdRequest struct {
	Name string `json:"name"`
}

type joinRequest struct {
	InviteCode string `json:"invite_code"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Create starts a new household with the caller as admin. Callers already in
// a household must leave it first.
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	if auth.HasHousehold(r.Context()) {
		writeError(w, http.StatusConflict, "already a member of a household")
		return
	}

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	household, err := h.householdStore.Create(auth.UserID(r.Context()), req.Name)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create household")
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

// Current returns the caller's household with its member list.
func (h *HouseholdHandler) Current(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusNotFound, "not a member of a household")
		return
	}

	household, err := h.householdStore.GetByID(householdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}
	members, err := h.householdStore.ListMembers(householdID)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"household": household,
		"members":   members,
	})
}

// Update renames the household. Admin only.
func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	householdID := auth.HouseholdID(r.Context())
	household, err := h.householdStore.Update(householdID, req.Name)
	if err != nil {
		h.logger.Error("update household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update household")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("household", "updated", householdID, nil))
	writeJSON(w, http.StatusOK, household)
}

// Join adds the caller to the household holding the invite code.
func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if code == "" {
		writeError(w, http.StatusBadRequest, "invite_code is required")
		return
	}

	member, err := h.householdStore.JoinByInviteCode(auth.UserID(r.Context()), code)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "invalid invite code")
		return
	case errors.Is(err, store.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "already a member of a household")
		return
	case err != nil:
		h.logger.Error("join household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to join household")
		return
	}

	h.hub.Broadcast(member.HouseholdID, ws.NewMessage("member", "joined", member.UserID, nil))
	writeJSON(w, http.StatusCreated, member)
}

// Leave removes the caller from their household.
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	userID := auth.UserID(r.Context())

	left, err := h.householdStore.Leave(userID)
	if err != nil {
		h.logger.Error("leave household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to leave household")
		return
	}
	if !left {
		writeError(w, http.StatusNotFound, "not a member of a household")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("member", "left", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type memberRoleRequest struct {
	Role string `json:"role"`
}

// UpdateMemberRole changes another member's role. Admin only.
func (h *HouseholdHandler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req memberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleMember {
		writeError(w, http.StatusBadRequest, "role must be admin or member")
		return
	}

	householdID := auth.HouseholdID(r.Context())
	existing, err := h.householdStore.GetMember(householdID, userID)
	if err != nil {
		h.logger.Error("get member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	member, err := h.householdStore.UpdateMemberRole(householdID, userID, req.Role)
	if err != nil {
		h.logger.Error("update member role", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update role")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("member", "role_changed", userID, map[string]any{"role": req.Role}))
	writeJSON(w, http.StatusOK, member)
}

// RemoveMember kicks a member out of the household. Admin only; admins cannot
// remove themselves; they leave instead.
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if userID == auth.UserID(r.Context()) {
		writeError(w, http.StatusBadRequest, "cannot remove yourself; leave the household instead")
		return
	}

	householdID := auth.HouseholdID(r.Context())
	removed, err := h.householdStore.RemoveMember(householdID, userID)
	if err != nil {
		h.logger.Error("remove member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove member")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "member not found")
		return
	}

	h.hub.Broadcast(householdID, ws.NewMessage("member", "removed", userID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// InviteMember emails the household invite code to the given address. The
// recipient joins by entering the code, so no account needs to exist yet.
func (h *HouseholdHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	householdID := auth.HouseholdID(r.Context())
	if householdID == 0 {
		writeError(w, http.StatusForbidden, "household membership required")
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	if !h.emailClient.Configured() {
		writeError(w, http.StatusServiceUnavailable, "email delivery is not configured")
		return
	}

	household, err := h.householdStore.GetByID(householdID)
	if err != nil || household == nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}

	if err := h.emailClient.SendInvite(req.Email, household.Name, household.InviteCode); err != nil {
		h.logger.Error("send invite email", "error", err, "to", req.Email)
		writeError(w, http.StatusBadGateway, "failed to send invite email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sent": true})
}
