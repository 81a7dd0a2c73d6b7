package pricing

import "github.com/Simplici0/sumrai/internal/catalog"

// Toggles maps option ids to on/off. Methods never modify the receiver.
type Toggles map[string]bool

// Clone returns an independent copy.
func (t Toggles) Clone() Toggles {
	out := make(Toggles, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Choose switches optionID on and every other member of g off. An id that
// is not a member, including "", leaves the whole group off.
func (t Toggles) Choose(g catalog.ExclusiveGroup, optionID string) Toggles {
	out := t.Clone()
	for _, id := range g.OptionIDs {
		out[id] = id == optionID
	}
	return out
}

// Chosen returns the active member of g, or "" when none is on.
func (t Toggles) Chosen(g catalog.ExclusiveGroup) string {
	for _, id := range g.OptionIDs {
		if t[id] {
			return id
		}
	}
	return ""
}

// Set switches a single option. Switching on a member of an exclusive group
// switches its siblings off.
func (t Toggles) Set(c *catalog.Catalog, optionID string, on bool) Toggles {
	if g, ok := c.GroupOf(optionID); ok && on {
		return t.Choose(g, optionID)
	}
	out := t.Clone()
	out[optionID] = on
	return out
}

// Normalize enforces at-most-one per exclusive group; when several members
// are on, the first in declaration order wins.
func (t Toggles) Normalize(c *catalog.Catalog) Toggles {
	out := t.Clone()
	for _, g := range c.ExclusiveGroups {
		if chosen := out.Chosen(g); chosen != "" {
			out = out.Choose(g, chosen)
		}
	}
	return out
}
