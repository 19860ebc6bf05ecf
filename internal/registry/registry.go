// Package registry tracks which identity is online in which project.
// Multiple live connections may claim the same identity (two browser tabs);
// the identity stays online until its last connection detaches. Like the
// room directory, the registry is owned by the gateway event loop and is
// not internally locked.
package registry

import (
	"sort"

	"filmcraft-chat/internal/models"
)

// Conn is an opaque connection handle; the registry only uses it as a map
// key.
type Conn interface{}

type binding struct {
	projectID string
	identity  models.Identity
}

type Registry struct {
	// connection -> its current identity/project binding
	bindings map[Conn]binding
	// projectID -> userID -> live connection count
	projects map[string]map[string]int
	// projectID -> userID -> last declared identity
	identities map[string]map[string]models.Identity
}

func New() *Registry {
	return &Registry{
		bindings:   make(map[Conn]binding),
		projects:   make(map[string]map[string]int),
		identities: make(map[string]map[string]models.Identity),
	}
}

// Attach records that identity is online for projectID via conn. A conn
// that was already attached is rebound: the old binding is detached first,
// which makes re-identify idempotent and lets a reconnect replace its prior
// identity. Returns true when the project's visible online set changed.
func (r *Registry) Attach(projectID string, identity models.Identity, conn Conn) bool {
	changed := false
	if prev, ok := r.bindings[conn]; ok {
		if prev.projectID == projectID && prev.identity.ID == identity.ID {
			// Same binding; refresh the declared name/role/department.
			r.identities[projectID][identity.ID] = identity
			r.bindings[conn] = binding{projectID: projectID, identity: identity}
			return false
		}
		changed = r.detachBinding(conn, prev)
	}

	r.bindings[conn] = binding{projectID: projectID, identity: identity}

	counts, ok := r.projects[projectID]
	if !ok {
		counts = make(map[string]int)
		r.projects[projectID] = counts
		r.identities[projectID] = make(map[string]models.Identity)
	}
	counts[identity.ID]++
	r.identities[projectID][identity.ID] = identity
	if counts[identity.ID] == 1 {
		changed = true
	}
	return changed
}

// Detach removes the connection's association. Returns the project whose
// online set changed and true, or "" and false when nothing visible
// changed (unknown conn, or the identity still has another connection).
func (r *Registry) Detach(conn Conn) (projectID string, changed bool) {
	b, ok := r.bindings[conn]
	if !ok {
		return "", false
	}
	changed = r.detachBinding(conn, b)
	return b.projectID, changed
}

func (r *Registry) detachBinding(conn Conn, b binding) bool {
	delete(r.bindings, conn)
	counts, ok := r.projects[b.projectID]
	if !ok {
		return false
	}
	counts[b.identity.ID]--
	if counts[b.identity.ID] > 0 {
		return false
	}
	delete(counts, b.identity.ID)
	delete(r.identities[b.projectID], b.identity.ID)
	if len(counts) == 0 {
		delete(r.projects, b.projectID)
		delete(r.identities, b.projectID)
	}
	return true
}

// Project returns the project a connection is identified into, if any.
func (r *Registry) Project(conn Conn) (string, bool) {
	b, ok := r.bindings[conn]
	return b.projectID, ok
}

// Identity returns the identity a connection last declared, if any.
func (r *Registry) Identity(conn Conn) (models.Identity, bool) {
	b, ok := r.bindings[conn]
	return b.identity, ok
}

// OnlineMembers returns the distinct identities currently online in the
// project, sorted by id so presence snapshots are deterministic.
func (r *Registry) OnlineMembers(projectID string) []models.Identity {
	ids, ok := r.identities[projectID]
	if !ok {
		return []models.Identity{}
	}
	members := make([]models.Identity, 0, len(ids))
	for _, identity := range ids {
		members = append(members, identity)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

// Connections returns every connection identified into the project; this is
// the fan-out set for presence broadcasts.
func (r *Registry) Connections(projectID string) []Conn {
	conns := make([]Conn, 0)
	for conn, b := range r.bindings {
		if b.projectID == projectID {
			conns = append(conns, conn)
		}
	}
	return conns
}
