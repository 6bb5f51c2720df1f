// Package path defines the participant-path representation: a typed start
// followed by an ordered sequence of navigational hops. Paths are the
// interchange form between the query compiler and downstream generators.
package path

import (
	"fmt"
	"strings"
)

// Resolution is the marker interface for a single navigational hop.
// A hop is either an [EntityResolution] (forward composition) or an
// [AssociationResolution] (backward hop landing on an association).
type Resolution interface {
	// Role returns the rolename navigated by this hop.
	Role() string
	// Equal reports structural equality with another hop. Incidental data
	// such as cached target types does not participate.
	Equal(Resolution) bool

	fmt.Stringer
	resolution()
}

// EntityResolution is a forward hop through a composition rolename.
type EntityResolution struct {
	// Rolename is the composed element's rolename within its container.
	Rolename string
	// TargetType optionally caches the entity type the hop lands on. It is
	// populated by the forward compiler and is not part of path equality.
	TargetType string
}

func (EntityResolution) resolution() {}

// Role returns the hop's rolename.
func (r EntityResolution) Role() string { return r.Rolename }

func (r EntityResolution) String() string { return "." + r.Rolename }

// Equal reports whether o is an entity hop with the same rolename.
func (r EntityResolution) Equal(o Resolution) bool {
	e, ok := o.(EntityResolution)
	return ok && e.Rolename == r.Rolename
}

// AssociationResolution is a backward hop: it lands on an association via
// one of that association's participant rolenames.
type AssociationResolution struct {
	// Rolename is the participant rolename within the association.
	Rolename string
	// AssociationName is the association type the hop lands on.
	AssociationName string
}

func (AssociationResolution) resolution() {}

// Role returns the hop's rolename.
func (r AssociationResolution) Role() string { return r.Rolename }

func (r AssociationResolution) String() string {
	return "->" + r.Rolename + "[" + r.AssociationName + "]"
}

// Equal reports whether o is an association hop with the same rolename and
// association name.
func (r AssociationResolution) Equal(o Resolution) bool {
	a, ok := o.(AssociationResolution)
	return ok && a.Rolename == r.Rolename && a.AssociationName == r.AssociationName
}

// ParticipantPath is a typed start plus an ordered hop sequence. An empty
// sequence denotes the start type itself.
type ParticipantPath struct {
	// StartType names the root entity or association the path starts from.
	StartType string
	// Resolutions is the ordered hop sequence.
	Resolutions []Resolution
}

// String renders the canonical text form: the start type followed by
// ".rolename" per entity hop and "->rolename[AssocName]" per association
// hop. Parse is the exact inverse.
func (p ParticipantPath) String() string {
	var b strings.Builder
	b.WriteString(p.StartType)
	for _, r := range p.Resolutions {
		b.WriteString(r.String())
	}
	return b.String()
}

// Equal reports structural equality: same start type and element-wise equal
// hop sequences.
func (p ParticipantPath) Equal(o ParticipantPath) bool {
	if p.StartType != o.StartType || len(p.Resolutions) != len(o.Resolutions) {
		return false
	}
	for i, r := range p.Resolutions {
		if !r.Equal(o.Resolutions[i]) {
			return false
		}
	}
	return true
}

// Prefix returns the path truncated to its first n hops. The underlying hop
// slice is shared; paths are treated as immutable.
func (p ParticipantPath) Prefix(n int) ParticipantPath {
	return ParticipantPath{StartType: p.StartType, Resolutions: p.Resolutions[:n]}
}

// Append returns a new path with extra hops added. The receiver is not
// modified.
func (p ParticipantPath) Append(hops ...Resolution) ParticipantPath {
	combined := make([]Resolution, 0, len(p.Resolutions)+len(hops))
	combined = append(combined, p.Resolutions...)
	combined = append(combined, hops...)
	return ParticipantPath{StartType: p.StartType, Resolutions: combined}
}

// MalformedPathError reports a participant-path parse failure and the byte
// index of the offending input.
type MalformedPathError struct {
	// Index is the byte offset at which parsing failed.
	Index int
	// Message describes the failure.
	Message string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed participant path at index %d: %s", e.Index, e.Message)
}
