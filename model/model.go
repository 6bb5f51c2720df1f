// Package model holds the flat schema-fact representation of a UDDL model:
// a read-only list of (subject, predicate, object, rolename, multiplicity)
// facts, plus the tuple-text loader that produces it.
package model

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mckib2/uddl-owl-paper/path"
)

// Fact predicates.
const (
	PredicateComposes    = "composes"
	PredicateAssociates  = "associates"
	PredicateSpecializes = "specializes"
	PredicateInstance    = "instance"
)

// Multiplicity is the multiplicity annotation of a fact: nil (unspecified),
// one bound, a [min, max] pair, or two pairs for source and target sides.
type Multiplicity []int

func (m Multiplicity) String() string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, len(m))
	for i, v := range m {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Fact is one schema statement. For associates facts the object is usually a
// participant path; ObjectPath carries the parsed form when the object text
// parses as one.
type Fact struct {
	// Subject is the type the fact is about.
	Subject string
	// Predicate is one of the Predicate* constants.
	Predicate string
	// Object is the raw object text: a type name, possibly dotted, or a
	// participant path.
	Object string
	// ObjectPath is the parsed object when it is path-valued, else nil.
	ObjectPath *path.ParticipantPath
	// Rolename is the name the object plays within the subject.
	Rolename string
	// Multiplicity is the optional multiplicity annotation.
	Multiplicity Multiplicity
}

// ObjectTypeName returns the type the fact's object leads with: the start
// type of a path-valued object, or the text before the first dot. Navigating
// through a path-valued participant lands on its root association, so the
// leading segment is the navigable type.
func (f Fact) ObjectTypeName() string {
	if f.ObjectPath != nil {
		return f.ObjectPath.StartType
	}
	if i := strings.IndexByte(f.Object, '.'); i >= 0 {
		return f.Object[:i]
	}
	return f.Object
}

func (f Fact) String() string {
	s := f.Subject + " " + f.Predicate
	if len(f.Multiplicity) > 0 {
		s += f.Multiplicity.String()
	}
	s += " " + f.Object
	if f.Rolename != "" {
		s += " as " + f.Rolename
	}
	return s
}

// Model is an immutable flat fact list. Lookups are linear scans over the
// input order, matching the reference behavior; models are small enough that
// indexing has not been worth it.
type Model []Fact

// Attributes returns the sorted rolenames of all composes facts on the
// given type. Used for wildcard projection expansion.
func (m Model) Attributes(typeName string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range m {
		if f.Subject == typeName && f.Predicate == PredicateComposes && !seen[f.Rolename] {
			seen[f.Rolename] = true
			names = append(names, f.Rolename)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveRole returns the object type of the first fact whose subject and
// rolename match, and whether one was found.
func (m Model) ResolveRole(subject, rolename string) (string, bool) {
	for _, f := range m {
		if f.Subject == subject && f.Rolename == rolename {
			return f.ObjectTypeName(), true
		}
	}
	return "", false
}
