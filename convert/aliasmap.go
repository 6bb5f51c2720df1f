package convert

import (
	"github.com/mckib2/uddl-owl-paper/path"
)

// AliasMap maps each query alias to the set of participant paths that reach
// the entity instance bound to it. Insertion order is preserved: iteration
// order of aliases and of each alias's paths is the order in which they were
// bound, which the reverse compiler's join ordering depends on.
//
// The root alias holds exactly one zero-length path. Any other alias may
// hold several paths; multiple paths under one alias express a diamond join
// and are AND-combined, never treated as alternatives.
type AliasMap struct {
	order []string
	paths map[string][]path.ParticipantPath
}

// NewAliasMap returns an empty alias map.
func NewAliasMap() *AliasMap {
	return &AliasMap{paths: make(map[string][]path.ParticipantPath)}
}

// Bind registers the alias (keeping first-bound order) and adds each path
// that is not already structurally present. Binding with no paths still
// registers the alias.
func (m *AliasMap) Bind(alias string, paths ...path.ParticipantPath) {
	if _, ok := m.paths[alias]; !ok {
		m.order = append(m.order, alias)
		m.paths[alias] = nil
	}
	for _, p := range paths {
		if !containsPath(m.paths[alias], p) {
			m.paths[alias] = append(m.paths[alias], p)
		}
	}
}

// Has reports whether the alias is registered.
func (m *AliasMap) Has(alias string) bool {
	_, ok := m.paths[alias]
	return ok
}

// Len returns the number of registered aliases.
func (m *AliasMap) Len() int { return len(m.order) }

// Aliases returns the aliases in binding order.
func (m *AliasMap) Aliases() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Paths returns the alias's paths in binding order, or nil for an unknown
// alias. The returned slice must not be mutated.
func (m *AliasMap) Paths(alias string) []path.ParticipantPath {
	return m.paths[alias]
}

// RootAlias returns the first alias holding a zero-length path, if any.
func (m *AliasMap) RootAlias() (string, bool) {
	for _, alias := range m.order {
		for _, p := range m.paths[alias] {
			if len(p.Resolutions) == 0 {
				return alias, true
			}
		}
	}
	return "", false
}

// AliasFor returns the first alias whose path set contains a path
// structurally equal to p.
func (m *AliasMap) AliasFor(p path.ParticipantPath) (string, bool) {
	for _, alias := range m.order {
		if containsPath(m.paths[alias], p) {
			return alias, true
		}
	}
	return "", false
}

func containsPath(set []path.ParticipantPath, p path.ParticipantPath) bool {
	for _, q := range set {
		if q.Equal(p) {
			return true
		}
	}
	return false
}
