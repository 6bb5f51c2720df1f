package convert

import (
	"sort"

	"github.com/mckib2/uddl-owl-paper/path"
	"github.com/mckib2/uddl-owl-paper/query"
)

// PathsToQuery reconstructs a canonical statement from an alias map and the
// terminal projected paths. The map may be hand-seeded, for example to force
// a particular diamond grouping; every path bound under one alias becomes
// one ANDed condition of that alias's single join.
//
// An empty map yields (nil, nil). A non-empty map with no zero-length path
// yields ErrNoRootAlias. Hops whose target type cannot be resolved against
// the model fall back to the rolename unless Strict is set.
func (c *Compiler) PathsToQuery(am *AliasMap, terminal []path.ParticipantPath) (*query.QueryStatement, error) {
	if am == nil || am.Len() == 0 {
		return nil, nil
	}
	rootAlias, ok := am.RootAlias()
	if !ok {
		return nil, ErrNoRootAlias
	}
	var startType string
	for _, p := range am.Paths(rootAlias) {
		if len(p.Resolutions) == 0 {
			startType = p.StartType
			break
		}
	}

	ordered := orderAliases(am, rootAlias)

	typeTracker := map[string]string{rootAlias: startType}
	var joins []query.Join
	for _, alias := range ordered {
		paths := am.Paths(alias)
		if len(paths) == 0 {
			continue
		}

		best, sourceAlias := pickResolvedPath(am, paths, typeTracker)
		targetType, err := c.resolveTargetType(best, typeTracker[sourceAlias])
		if err != nil {
			return nil, err
		}
		typeTracker[alias] = targetType

		var conds []query.Equivalence
		for _, p := range paths {
			n := len(p.Resolutions)
			if n == 0 {
				continue
			}
			prefixAlias, ok := am.AliasFor(p.Prefix(n - 1))
			if !ok {
				continue
			}
			switch hop := p.Resolutions[n-1].(type) {
			case path.EntityResolution:
				conds = append(conds, query.Equivalence{
					Left:  query.Reference{Entity: prefixAlias, Characteristic: hop.Rolename},
					Right: &query.Reference{Entity: alias},
				})
			case path.AssociationResolution:
				conds = append(conds, query.Equivalence{
					Left:  query.Reference{Entity: alias, Characteristic: hop.Rolename},
					Right: &query.Reference{Entity: prefixAlias},
				})
			}
		}
		joins = append(joins, query.Join{Target: query.Entity{Name: targetType, Alias: alias}, On: conds})
	}

	var projections []query.Projection
	for _, p := range terminal {
		n := len(p.Resolutions)
		if n == 0 {
			continue
		}
		alias, ok := am.AliasFor(p.Prefix(n - 1))
		if !ok {
			continue
		}
		projections = append(projections, query.ProjectedCharacteristic{
			Reference: query.Reference{Entity: alias, Characteristic: p.Resolutions[n-1].Role()},
		})
	}

	return &query.QueryStatement{
		Projections: projections,
		From: query.FromClause{
			Entities: []query.Entity{{Name: startType, Alias: rootAlias}},
			Joins:    joins,
		},
	}, nil
}

// orderAliases produces the join processing order: repeatedly emit every
// alias whose dependencies are already placed. When cross-referencing AND
// joins leave no alias ready, fall back to a heuristic: prefer aliases with
// at least one path whose prefix aliases are all placed, breaking ties by
// (fewest pending dependencies that are themselves candidates, fewest
// pending dependencies, shallowest path). Best effort, not a general
// topological sort. All traversal follows map binding order, so the result
// is deterministic in the input.
func orderAliases(am *AliasMap, rootAlias string) []string {
	var remaining []string
	for _, a := range am.Aliases() {
		if a != rootAlias {
			remaining = append(remaining, a)
		}
	}

	// Alias A depends on alias B when any path reaching A passes through
	// the sub-path bound to B as a proper prefix.
	deps := make(map[string]map[string]bool, len(remaining))
	for _, alias := range remaining {
		set := make(map[string]bool)
		for _, p := range am.Paths(alias) {
			for i := range p.Resolutions {
				if mid, ok := am.AliasFor(p.Prefix(i)); ok && mid != alias && mid != rootAlias {
					set[mid] = true
				}
			}
		}
		deps[alias] = set
	}

	processed := map[string]bool{rootAlias: true}
	allPlaced := func(set map[string]bool) bool {
		for d := range set {
			if !processed[d] {
				return false
			}
		}
		return true
	}

	// joinable reports whether the alias has at least one path whose prefix
	// aliases are all placed.
	joinable := func(alias string) bool {
		for _, p := range am.Paths(alias) {
			ok := true
			for i := range p.Resolutions {
				if mid, found := am.AliasFor(p.Prefix(i)); found && mid != alias && mid != rootAlias && !processed[mid] {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	}

	minDepth := func(alias string) int {
		depth := -1
		for _, p := range am.Paths(alias) {
			if depth < 0 || len(p.Resolutions) < depth {
				depth = len(p.Resolutions)
			}
		}
		if depth < 0 {
			return 0
		}
		return depth
	}

	var ordered []string
	for len(remaining) > 0 {
		var ready []string
		for _, a := range remaining {
			if allPlaced(deps[a]) {
				ready = append(ready, a)
			}
		}

		if len(ready) == 0 {
			var candidates []string
			for _, a := range remaining {
				if joinable(a) {
					candidates = append(candidates, a)
				}
			}
			if len(candidates) > 0 {
				isCandidate := make(map[string]bool, len(candidates))
				for _, a := range candidates {
					isCandidate[a] = true
				}
				score := func(alias string) [3]int {
					penalty, pending := 0, 0
					for d := range deps[alias] {
						if processed[d] {
							continue
						}
						pending++
						if isCandidate[d] {
							penalty++
						}
					}
					return [3]int{penalty, pending, minDepth(alias)}
				}
				sort.SliceStable(candidates, func(i, j int) bool {
					si, sj := score(candidates[i]), score(candidates[j])
					for k := 0; k < 3; k++ {
						if si[k] != sj[k] {
							return si[k] < sj[k]
						}
					}
					return false
				})
				best := score(candidates[0])
				for _, a := range candidates {
					if score(a) == best {
						ready = append(ready, a)
					}
				}
			}
			if len(ready) == 0 {
				ready = append(ready, remaining...)
			}
		}

		sort.SliceStable(ready, func(i, j int) bool {
			return minDepth(ready[i]) < minDepth(ready[j])
		})

		taken := make(map[string]bool, len(ready))
		for _, a := range ready {
			ordered = append(ordered, a)
			processed[a] = true
			taken[a] = true
		}
		var rest []string
		for _, a := range remaining {
			if !taken[a] {
				rest = append(rest, a)
			}
		}
		remaining = rest
	}

	return ordered
}

// pickResolvedPath chooses a path whose immediate prefix alias already has a
// resolved type, falling back to the first path when none qualifies.
func pickResolvedPath(am *AliasMap, paths []path.ParticipantPath, typeTracker map[string]string) (path.ParticipantPath, string) {
	for _, p := range paths {
		n := len(p.Resolutions)
		if n == 0 {
			continue
		}
		if alias, ok := am.AliasFor(p.Prefix(n - 1)); ok {
			if _, resolved := typeTracker[alias]; resolved {
				return p, alias
			}
		}
	}
	best := paths[0]
	if n := len(best.Resolutions); n > 0 {
		if alias, ok := am.AliasFor(best.Prefix(n - 1)); ok {
			return best, alias
		}
	}
	return best, ""
}

// resolveTargetType determines the type a path's final hop lands on: the
// association name for a backward hop; otherwise the hop's cached target
// type, a model lookup of (source type, rolename), or leniently the
// rolename itself.
func (c *Compiler) resolveTargetType(p path.ParticipantPath, sourceType string) (string, error) {
	n := len(p.Resolutions)
	if n == 0 {
		return p.StartType, nil
	}
	switch hop := p.Resolutions[n-1].(type) {
	case path.AssociationResolution:
		return hop.AssociationName, nil
	case path.EntityResolution:
		if hop.TargetType != "" {
			return hop.TargetType, nil
		}
		if sourceType != "" {
			if t, ok := c.Model.ResolveRole(sourceType, hop.Rolename); ok {
				return t, nil
			}
		}
		if c.Strict {
			return "", &UnresolvedTypeError{SourceType: sourceType, Rolename: hop.Rolename}
		}
		return hop.Rolename, nil
	}
	return "", nil
}
