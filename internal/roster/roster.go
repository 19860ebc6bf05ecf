package roster

import (
	"context"

	"filmcraft-chat/internal/models"
)

// CrewMember is a roster entry from the production document store. The chat
// core reads these tuples to populate the identity picker and the list of
// addressable DM targets; it never writes back.
type CrewMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// Identity converts a roster entry to a chat identity.
func (m CrewMember) Identity() models.Identity {
	return models.Identity{ID: m.ID, Name: m.Name, Role: m.Role, Department: m.Department}
}

type Store interface {
	ListCrew(ctx context.Context, projectID string) ([]CrewMember, error)
	Close() error
}
