// Package convert compiles between the SQL-like query surface and the
// participant-path representation, in both directions.
//
// The forward direction walks a parsed [query.QueryStatement] and produces
// an [AliasMap] plus the terminal projected paths. The reverse direction
// takes an alias map (possibly hand-seeded, for example to force a diamond
// join) and terminal paths, and reconstructs a canonical statement whose
// forward compilation yields an equivalent alias map and path set.
//
// Both directions are pure functions over immutable inputs; a shared schema
// model may be used by concurrent compilations without synchronization.
package convert

import (
	"github.com/mckib2/uddl-owl-paper/model"
)

// Compiler converts between query statements and participant paths.
// The zero value compiles leniently with no model.
type Compiler struct {
	// Model supplies schema facts, needed for wildcard projection expansion
	// in the forward direction and target-type resolution in the reverse
	// direction. May be nil when neither is exercised.
	Model model.Model
	// Strict turns the lenient defaults into hard errors: join conditions
	// naming unknown aliases return *UnresolvedReferenceError instead of
	// being dropped, and failed type lookups return *UnresolvedTypeError
	// instead of falling back to the rolename.
	Strict bool
}
