package convert

import (
	"github.com/mckib2/uddl-owl-paper/path"
	"github.com/mckib2/uddl-owl-paper/query"
)

// conditionShape classifies a join condition against the join's own target
// alias and the set of already-known aliases. The five recognized shapes are
// all spellings of the same two navigations: a forward composition hop from
// a known source to the target, or a backward hop landing on the target
// association from a known participant.
type conditionShape int

const (
	shapeNoMatch conditionShape = iota
	shapeUnary                  // source.role            (implicit target identity)
	shapeForward                // source.role = target
	shapeForwardFlipped         // target = source.role
	shapeBackward               // target.role = source
	shapeBackwardFlipped        // source = target.role
)

// QueryToPaths compiles a statement into an alias map and the terminal
// projected paths. The statement and model are not modified. A statement
// with no FROM entities or no projections compiles to an empty map and nil
// paths with no error.
func (c *Compiler) QueryToPaths(stmt *query.QueryStatement) (*AliasMap, []path.ParticipantPath, error) {
	am := NewAliasMap()
	if stmt == nil || len(stmt.From.Entities) == 0 {
		return am, nil, nil
	}

	root := stmt.From.Entities[0]
	startType := root.Name
	rootAlias := root.EffectiveAlias()
	am.Bind(rootAlias, path.ParticipantPath{StartType: startType})
	aliasTypes := map[string]string{rootAlias: startType}

	for _, join := range stmt.From.Joins {
		targetAlias := join.Target.EffectiveAlias()
		targetType := join.Target.Name
		aliasTypes[targetAlias] = targetType
		am.Bind(targetAlias)

		for _, cond := range join.On {
			hop, sourceAlias := c.classify(cond, rootAlias, targetAlias, targetType, am)
			if hop == nil || !am.Has(sourceAlias) {
				if c.Strict {
					return nil, nil, &UnresolvedReferenceError{Reference: cond.String()}
				}
				continue
			}
			for _, parent := range am.Paths(sourceAlias) {
				am.Bind(targetAlias, parent.Append(hop))
			}
		}
	}

	projected, err := c.projectPaths(stmt, am, rootAlias, aliasTypes)
	if err != nil {
		return nil, nil, err
	}
	return am, projected, nil
}

// classify matches a condition against the shape union and returns the hop
// it denotes plus the alias the hop extends from, or (nil, "") when no
// shape matches.
func (c *Compiler) classify(cond query.Equivalence, rootAlias, targetAlias, targetType string, am *AliasMap) (path.Resolution, string) {
	leftAlias := cond.Left.Entity
	if leftAlias == "" {
		leftAlias = rootAlias
	}

	shape := shapeNoMatch
	var rightAlias string
	if cond.Right == nil {
		shape = shapeUnary
	} else {
		rightAlias = cond.Right.Entity
		leftKnown, rightKnown := am.Has(leftAlias), am.Has(rightAlias)
		leftIdentity, rightIdentity := cond.Left.IsIdentity(), cond.Right.IsIdentity()
		switch {
		case leftKnown && rightAlias == targetAlias && rightIdentity:
			shape = shapeForward
		case rightKnown && leftAlias == targetAlias && leftIdentity:
			shape = shapeForwardFlipped
		case leftAlias == targetAlias && rightKnown && rightIdentity:
			shape = shapeBackward
		case rightAlias == targetAlias && leftKnown && leftIdentity:
			shape = shapeBackwardFlipped
		}
	}

	switch shape {
	case shapeUnary, shapeForward:
		return path.EntityResolution{Rolename: cond.Left.Characteristic, TargetType: targetType}, leftAlias
	case shapeForwardFlipped:
		return path.EntityResolution{Rolename: cond.Right.Characteristic, TargetType: targetType}, rightAlias
	case shapeBackward:
		return path.AssociationResolution{Rolename: cond.Left.Characteristic, AssociationName: targetType}, rightAlias
	case shapeBackwardFlipped:
		return path.AssociationResolution{Rolename: cond.Right.Characteristic, AssociationName: targetType}, leftAlias
	case shapeNoMatch:
		return nil, ""
	}
	return nil, ""
}

func (c *Compiler) projectPaths(stmt *query.QueryStatement, am *AliasMap, rootAlias string, aliasTypes map[string]string) ([]path.ParticipantPath, error) {
	var projected []path.ParticipantPath

	expandWildcard := func(alias string) error {
		if !am.Has(alias) {
			if c.Strict {
				return &UnresolvedReferenceError{Reference: alias + ".*"}
			}
			return nil
		}
		typeName := aliasTypes[alias]
		if len(c.Model) == 0 {
			if c.Strict {
				return &UnresolvedTypeError{SourceType: typeName, Rolename: "*"}
			}
			return nil
		}
		for _, attr := range c.Model.Attributes(typeName) {
			for _, base := range am.Paths(alias) {
				projected = append(projected, base.Append(path.EntityResolution{Rolename: attr}))
			}
		}
		return nil
	}

	for _, proj := range stmt.Projections {
		switch p := proj.(type) {
		case query.ProjectedCharacteristic:
			alias := p.Reference.Entity
			if alias == "" {
				alias = rootAlias
			}
			attr := p.Reference.Characteristic
			if attr == "" {
				continue
			}
			if !am.Has(alias) {
				if c.Strict {
					return nil, &UnresolvedReferenceError{Reference: p.Reference.String()}
				}
				continue
			}
			for _, base := range am.Paths(alias) {
				projected = append(projected, base.Append(path.EntityResolution{Rolename: attr}))
			}
		case query.AllCharacteristics:
			if err := expandWildcard(rootAlias); err != nil {
				return nil, err
			}
		case query.EntityWildcard:
			if err := expandWildcard(p.Entity); err != nil {
				return nil, err
			}
		}
	}

	return projected, nil
}
