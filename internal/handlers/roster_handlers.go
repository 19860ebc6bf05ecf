package handlers

import (
	"encoding/json"
	"net/http"

	"filmcraft-chat/internal/roster"
	"filmcraft-chat/pkg/logger"
)

type RosterHandlers struct {
	store roster.Store
}

func NewRosterHandlers(store roster.Store) *RosterHandlers {
	return &RosterHandlers{store: store}
}

// ListCrew serves the project's crew roster, the source for the identity
// picker and the list of addressable DM targets.
func (h *RosterHandlers) ListCrew(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		http.Error(w, "missing projectId", http.StatusBadRequest)
		return
	}

	members, err := h.store.ListCrew(r.Context(), projectID)
	if err != nil {
		logger.Error("Error listing crew for project %s: %v", projectID, err)
		http.Error(w, "error loading roster", http.StatusInternalServerError)
		return
	}
	if members == nil {
		members = []roster.CrewMember{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}
