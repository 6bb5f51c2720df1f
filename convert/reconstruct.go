package convert

import (
	"fmt"

	"github.com/mckib2/uddl-owl-paper/path"
)

// ReconstructAliasMap builds a complete alias map covering every prefix of
// the terminal paths. Bindings from partial are kept verbatim, so a caller
// can pre-bind a shared alias to force a diamond grouping; everything else
// gets a generated alias named after the resolved type, suffixed _1, _2, ...
// on collision. Reconstruction is always lenient: unresolvable hops name
// their alias after the rolename.
func (c *Compiler) ReconstructAliasMap(terminal []path.ParticipantPath, partial *AliasMap) *AliasMap {
	am := NewAliasMap()
	if partial != nil {
		for _, alias := range partial.Aliases() {
			for _, p := range partial.Paths(alias) {
				am.Bind(alias, p)
			}
		}
	}

	for _, p := range terminal {
		// Root outward, so each prefix's parent alias already exists by
		// the time the prefix itself is bound.
		for i := 0; i < len(p.Resolutions); i++ {
			c.ensureAlias(am, p.Prefix(i))
		}
	}
	return am
}

func (c *Compiler) ensureAlias(am *AliasMap, p path.ParticipantPath) string {
	if alias, ok := am.AliasFor(p); ok {
		return alias
	}
	alias := freshAlias(am, c.aliasBaseName(am, p))
	am.Bind(alias, p)
	return alias
}

// aliasBaseName picks the type-derived name for a generated alias.
func (c *Compiler) aliasBaseName(am *AliasMap, p path.ParticipantPath) string {
	n := len(p.Resolutions)
	if n == 0 {
		return p.StartType
	}
	switch hop := p.Resolutions[n-1].(type) {
	case path.AssociationResolution:
		return hop.AssociationName
	case path.EntityResolution:
		if hop.TargetType != "" {
			return hop.TargetType
		}
		if src := c.traceType(am, p.Prefix(n-1)); src != "" {
			if t, ok := c.Model.ResolveRole(src, hop.Rolename); ok {
				return t
			}
		}
		return hop.Rolename
	}
	return ""
}

// traceType resolves the concrete type a path prefix lands on by walking
// it hop by hop through the model. Returns "" when any hop is unresolvable.
func (c *Compiler) traceType(am *AliasMap, p path.ParticipantPath) string {
	cur := p.StartType
	for _, r := range p.Resolutions {
		switch hop := r.(type) {
		case path.AssociationResolution:
			cur = hop.AssociationName
		case path.EntityResolution:
			if hop.TargetType != "" {
				cur = hop.TargetType
				continue
			}
			t, ok := c.Model.ResolveRole(cur, hop.Rolename)
			if !ok {
				return ""
			}
			cur = t
		}
	}
	return cur
}

func freshAlias(am *AliasMap, base string) string {
	if base == "" {
		base = "T"
	}
	if !am.Has(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !am.Has(candidate) {
			return candidate
		}
	}
}
