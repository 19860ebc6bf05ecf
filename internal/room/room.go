// Package room models the two kinds of chat rooms and their wire keys.
// Channel rooms are scoped to a project and a topic slug; direct-message
// rooms are keyed by the canonically ordered pair of participant ids, which
// guarantees a single room per unordered pair.
package room

import "strings"

const dmPrefix = "dm:"

type Kind int

const (
	KindChannel Kind = iota
	KindDM
)

// Ref is the typed form of a room key. Exactly one of the two field pairs
// is meaningful depending on Kind.
type Ref struct {
	Kind Kind

	// Channel fields
	ProjectID string
	Slug      string

	// DM fields, Low < High lexicographically
	Low  string
	High string
}

// Channel builds a channel ref for a project and topic slug.
func Channel(projectID, slug string) Ref {
	return Ref{Kind: KindChannel, ProjectID: projectID, Slug: slug}
}

// DM builds a direct-message ref for an unordered pair of user ids.
func DM(a, b string) Ref {
	if b < a {
		a, b = b, a
	}
	return Ref{Kind: KindDM, Low: a, High: b}
}

// Key serializes the ref to its wire string key.
func (r Ref) Key() string {
	if r.Kind == KindDM {
		return dmPrefix + r.Low + ":" + r.High
	}
	return r.ProjectID + ":" + r.Slug
}

// DMKey returns the canonical room key for a DM between a and b.
// DMKey(a, b) == DMKey(b, a) for all pairs.
func DMKey(a, b string) string {
	return DM(a, b).Key()
}

// ChannelKey returns the room key for a project channel.
func ChannelKey(projectID, slug string) string {
	return Channel(projectID, slug).Key()
}

// Parse decodes a wire key into its typed form. Keys are opaque to the
// server otherwise; anything that is not a well-formed DM key is treated as
// a channel key.
func Parse(key string) Ref {
	if rest, ok := strings.CutPrefix(key, dmPrefix); ok {
		if low, high, found := strings.Cut(rest, ":"); found && low != "" && high != "" {
			if high < low {
				low, high = high, low
			}
			return Ref{Kind: KindDM, Low: low, High: high}
		}
	}
	projectID, slug, _ := strings.Cut(key, ":")
	return Ref{Kind: KindChannel, ProjectID: projectID, Slug: slug}
}

// Canonical rewrites a DM key into its ordered form so "dm:b:a" and
// "dm:a:b" address the same room. Channel keys pass through untouched.
func Canonical(key string) string {
	if strings.HasPrefix(key, dmPrefix) {
		return Parse(key).Key()
	}
	return key
}

// IsDM reports whether the wire key names a direct-message room.
func IsDM(key string) bool {
	return Parse(key).Kind == KindDM
}

// Participants returns the user ids of a DM ref, or nil for a channel.
func (r Ref) Participants() []string {
	if r.Kind != KindDM {
		return nil
	}
	return []string{r.Low, r.High}
}
