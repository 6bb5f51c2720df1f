package convert

import (
	"errors"
	"fmt"
)

// ErrNoRootAlias is returned by the reverse compiler when a non-empty alias
// map contains no alias with a zero-length path.
var ErrNoRootAlias = errors.New("convert: alias map has no root alias")

// UnresolvedReferenceError reports a join condition or projection whose
// operands name no known alias. The lenient default drops such conditions
// silently; strict compilation returns this error instead.
type UnresolvedReferenceError struct {
	// Reference is the textual form of the offending condition or operand.
	Reference string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference: %q names no known alias", e.Reference)
}

// UnresolvedTypeError reports a hop whose target type could not be resolved
// against the schema model. The lenient default falls back to the rolename
// as a placeholder type; strict compilation returns this error instead.
type UnresolvedTypeError struct {
	// SourceType is the type the lookup started from.
	SourceType string
	// Rolename is the hop rolename that failed to resolve ("*" for a
	// wildcard expansion attempted without a model).
	Rolename string
}

func (e *UnresolvedTypeError) Error() string {
	return fmt.Sprintf("cannot resolve target type of rolename %q on %s", e.Rolename, e.SourceType)
}
