package query

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar structs ---
// Grammar:
//
//	query      := SELECT [ALL] proj_list from_clause
//	proj_list  := "*" | proj ("," proj)*
//	proj       := ID ["." ("*" | ID)] [[AS] ID]
//	from_clause:= FROM entity_ref join*
//	entity_ref := ID [[AS] ID]
//	join       := JOIN entity_ref ON equiv (AND equiv)*
//	equiv      := operand ["=" operand]
//	operand    := ID ["." ID]
//
// A bare identifier after a projection or entity reference is an implicit
// alias. That form is ambiguous with the start of the next clause; keywords
// are lexed as their own token type, so FROM/JOIN/SELECT can never be
// swallowed as an alias.

type queryAST struct {
	Qualifier string       `parser:"'SELECT' @'ALL'?"`
	List      projListAST  `parser:"@@"`
	From      fromAST      `parser:"@@"`
}

type projListAST struct {
	Star  bool      `parser:"  @'*'"`
	Projs []projAST `parser:"| @@ (',' @@)*"`
}

type projAST struct {
	First  string         `parser:"@Ident"`
	Suffix *projSuffixAST `parser:"('.' @@)?"`
	Alias  string         `parser:"('AS'? @Ident)?"`
}

type projSuffixAST struct {
	Star bool   `parser:"  @'*'"`
	Name string `parser:"| @Ident"`
}

type fromAST struct {
	Root  entityRefAST `parser:"'FROM' @@"`
	Joins []joinAST    `parser:"@@*"`
}

type entityRefAST struct {
	Name  string `parser:"@Ident"`
	Alias string `parser:"('AS'? @Ident)?"`
}

type joinAST struct {
	Target entityRefAST `parser:"'JOIN' @@"`
	On     []equivAST   `parser:"'ON' @@ ('AND' @@)*"`
}

type equivAST struct {
	Left  operandAST  `parser:"@@"`
	Right *operandAST `parser:"('=' @@)?"`
}

type operandAST struct {
	Entity string `parser:"@Ident"`
	Char   string `parser:"('.' @Ident)?"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Keyword", Pattern: `(?i)\b(SELECT|FROM|JOIN|ON|AND|AS|ALL)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[*.,=]`},
})

var queryParser = participle.MustBuild[queryAST](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
	participle.UseLookahead(2),
)

// ParseError reports a query parse failure: expected vs. actual token and
// the source position. A failed parse returns no partial statement.
type ParseError struct {
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse parses a query statement. Keywords are case-insensitive; identifiers
// keep their case. The parse is atomic: any malformed token sequence yields
// a *ParseError and no statement.
func Parse(text string) (*QueryStatement, error) {
	ast, err := queryParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			pos := perr.Position()
			return nil, &ParseError{Line: pos.Line, Column: pos.Column, Message: perr.Message()}
		}
		return nil, err
	}
	return convertQuery(ast), nil
}

func convertQuery(ast *queryAST) *QueryStatement {
	stmt := &QueryStatement{Qualifier: normalizeQualifier(ast.Qualifier)}

	if ast.List.Star {
		stmt.Projections = []Projection{AllCharacteristics{}}
	} else {
		for _, p := range ast.List.Projs {
			stmt.Projections = append(stmt.Projections, convertProjection(p))
		}
	}

	stmt.From.Entities = []Entity{{Name: ast.From.Root.Name, Alias: ast.From.Root.Alias}}
	for _, j := range ast.From.Joins {
		join := Join{Target: Entity{Name: j.Target.Name, Alias: j.Target.Alias}}
		for _, c := range j.On {
			eq := Equivalence{Left: Reference{Entity: c.Left.Entity, Characteristic: c.Left.Char}}
			if c.Right != nil {
				eq.Right = &Reference{Entity: c.Right.Entity, Characteristic: c.Right.Char}
			}
			join.On = append(join.On, eq)
		}
		stmt.From.Joins = append(stmt.From.Joins, join)
	}

	return stmt
}

func convertProjection(p projAST) Projection {
	if p.Suffix != nil {
		if p.Suffix.Star {
			return EntityWildcard{Entity: p.First}
		}
		return ProjectedCharacteristic{
			Reference: Reference{Entity: p.First, Characteristic: p.Suffix.Name},
			Alias:     p.Alias,
		}
	}
	// A standalone identifier in SELECT is a characteristic of the root.
	return ProjectedCharacteristic{
		Reference: Reference{Characteristic: p.First},
		Alias:     p.Alias,
	}
}

// normalizeQualifier upper-cases a matched qualifier keyword so printed
// output is canonical regardless of input casing.
func normalizeQualifier(q string) string {
	if q == "" {
		return ""
	}
	return "ALL"
}
