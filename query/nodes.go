// Package query defines the AST for the SQL-like UDDL query surface,
// a parser for it, and canonical single-line and pretty-printed renderings.
//
// Statements are built once (by the parser or by hand) and never mutated.
package query

import (
	"fmt"
	"strings"
)

// Reference names an alias, a characteristic of an alias, or both.
// An empty Characteristic denotes an identity reference: the entity bound to
// the alias itself rather than one of its attributes.
type Reference struct {
	// Entity is the alias the reference is scoped to. Empty in a projection
	// means the characteristic belongs to the query's root entity.
	Entity string
	// Characteristic is the referenced attribute rolename, or empty for an
	// identity reference.
	Characteristic string
}

// IsIdentity reports whether the reference denotes an entity identity
// rather than an attribute.
func (r Reference) IsIdentity() bool { return r.Characteristic == "" }

func (r Reference) String() string {
	if r.Entity != "" && r.Characteristic != "" {
		return r.Entity + "." + r.Characteristic
	}
	if r.Entity != "" {
		return r.Entity
	}
	return r.Characteristic
}

// Projection is the marker interface for items in a SELECT list.
type Projection interface {
	fmt.Stringer
	projection()
}

// ProjectedCharacteristic projects a single characteristic, optionally
// renamed with an alias.
type ProjectedCharacteristic struct {
	Reference Reference
	Alias     string
}

func (ProjectedCharacteristic) projection() {}

func (p ProjectedCharacteristic) String() string {
	if p.Alias != "" {
		return p.Reference.String() + " AS " + p.Alias
	}
	return p.Reference.String()
}

// AllCharacteristics is the bare "*" projection.
type AllCharacteristics struct{}

func (AllCharacteristics) projection() {}

func (AllCharacteristics) String() string { return "*" }

// EntityWildcard is an "alias.*" projection.
type EntityWildcard struct {
	Entity string
}

func (EntityWildcard) projection() {}

func (w EntityWildcard) String() string { return w.Entity + ".*" }

// Entity is an entity reference in a FROM or JOIN clause.
type Entity struct {
	Name  string
	Alias string
}

// EffectiveAlias returns the alias if set, otherwise the entity name.
func (e Entity) EffectiveAlias() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

func (e Entity) String() string {
	if e.Alias != "" && e.Alias != e.Name {
		return e.Name + " AS " + e.Alias
	}
	return e.Name
}

// Equivalence is a single join condition. A nil Right denotes the unary
// form: an implicit identity match against the join target.
type Equivalence struct {
	Left  Reference
	Right *Reference
}

func (e Equivalence) String() string {
	if e.Right != nil {
		return e.Left.String() + " = " + e.Right.String()
	}
	return e.Left.String()
}

// Join targets an entity under an alias with one or more ANDed conditions.
type Join struct {
	Target Entity
	On     []Equivalence
}

func (j Join) String() string {
	conds := make([]string, 0, len(j.On))
	for _, e := range j.On {
		conds = append(conds, e.String())
	}
	return "JOIN " + j.Target.String() + " ON " + strings.Join(conds, " AND ")
}

// FromClause holds the root entity (first element) and ordered joins.
type FromClause struct {
	Entities []Entity
	Joins    []Join
}

func (f FromClause) String() string {
	names := make([]string, 0, len(f.Entities))
	for _, e := range f.Entities {
		names = append(names, e.String())
	}
	s := "FROM " + strings.Join(names, ", ")
	for _, j := range f.Joins {
		s += " " + j.String()
	}
	return s
}

// QueryStatement is a complete, immutable query.
type QueryStatement struct {
	// Qualifier is the optional SELECT qualifier ("ALL"), or empty.
	Qualifier   string
	Projections []Projection
	From        FromClause
}

func (q QueryStatement) String() string {
	projs := make([]string, 0, len(q.Projections))
	for _, p := range q.Projections {
		projs = append(projs, p.String())
	}
	head := "SELECT"
	if q.Qualifier != "" {
		head += " " + q.Qualifier
	}
	return head + " " + strings.Join(projs, ", ") + " " + q.From.String()
}

// PrettyPrint renders the canonical multi-line form: one projection per line
// when there are several, and one ON/AND line per join condition. It is a
// deterministic function of the statement and re-parses to an equal AST.
func (q QueryStatement) PrettyPrint() string {
	head := "SELECT"
	if q.Qualifier != "" {
		head += " " + q.Qualifier
	}

	var lines []string
	switch len(q.Projections) {
	case 0:
		lines = append(lines, head)
	case 1:
		lines = append(lines, head+" "+q.Projections[0].String())
	default:
		indent := strings.Repeat(" ", len(head)+1)
		for i, p := range q.Projections {
			suffix := ","
			if i == len(q.Projections)-1 {
				suffix = ""
			}
			if i == 0 {
				lines = append(lines, head+" "+p.String()+suffix)
			} else {
				lines = append(lines, indent+p.String()+suffix)
			}
		}
	}

	fromNames := make([]string, 0, len(q.From.Entities))
	for _, e := range q.From.Entities {
		fromNames = append(fromNames, e.String())
	}
	lines = append(lines, "FROM "+strings.Join(fromNames, ", "))

	for _, j := range q.From.Joins {
		lines = append(lines, "JOIN "+j.Target.String())
		for i, eq := range j.On {
			kw := "ON"
			if i > 0 {
				kw = "AND"
			}
			lines = append(lines, "    "+kw+" "+eq.String())
		}
	}

	return strings.Join(lines, "\n")
}
