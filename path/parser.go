package path

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar structs ---
// Grammar: identifier ( "." identifier | "->" identifier "[" identifier "]" )*
// No whitespace is permitted anywhere in a path.

type pathAST struct {
	Start string   `parser:"@Ident"`
	Hops  []hopAST `parser:"@@*"`
}

type hopAST struct {
	Entity *entityHopAST `parser:"  @@"`
	Assoc  *assocHopAST  `parser:"| @@"`
}

type entityHopAST struct {
	Rolename string `parser:"'.' @Ident"`
}

type assocHopAST struct {
	Rolename    string `parser:"Arrow @Ident"`
	Association string `parser:"'[' @Ident ']'"`
}

var pathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[.\[\]]`},
})

var pathParser = participle.MustBuild[pathAST](
	participle.Lexer(pathLexer),
)

// Parse parses the canonical text form of a participant path. It fails with
// a *MalformedPathError naming the offending byte index on any unexpected
// character, missing identifier, or unterminated association bracket.
func Parse(text string) (ParticipantPath, error) {
	ast, err := pathParser.ParseString("", text)
	if err != nil {
		var perr participle.Error
		if errors.As(err, &perr) {
			return ParticipantPath{}, &MalformedPathError{
				Index:   perr.Position().Offset,
				Message: perr.Message(),
			}
		}
		return ParticipantPath{}, err
	}

	p := ParticipantPath{StartType: ast.Start}
	for _, hop := range ast.Hops {
		switch {
		case hop.Entity != nil:
			p.Resolutions = append(p.Resolutions, EntityResolution{Rolename: hop.Entity.Rolename})
		case hop.Assoc != nil:
			p.Resolutions = append(p.Resolutions, AssociationResolution{
				Rolename:        hop.Assoc.Rolename,
				AssociationName: hop.Assoc.Association,
			})
		}
	}
	return p, nil
}

// MustParse is Parse that panics on error. Intended for fixtures and
// hand-written path literals.
func MustParse(text string) ParticipantPath {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}
