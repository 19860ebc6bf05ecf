package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"filmcraft-chat/internal/invite"
	"filmcraft-chat/pkg/logger"
)

type InviteHandlers struct {
	invites *invite.Service
}

func NewInviteHandlers(invites *invite.Service) *InviteHandlers {
	return &InviteHandlers{invites: invites}
}

type createInviteRequest struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
}

type createInviteResponse struct {
	Token string `json:"token"`
}

func (h *InviteHandlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.invites.CreateLink(req.ProjectID, req.ProjectName)
	if err != nil {
		logger.Error("Error creating invite: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createInviteResponse{Token: token})
}

// ResolveInvite decodes the token at the end of an /invites/{token} path.
func (h *InviteHandlers) ResolveInvite(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/invites/")
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}

	link, err := h.invites.Parse(token)
	if err != nil {
		http.Error(w, "invalid or expired invite", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(link)
}
