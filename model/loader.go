package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mckib2/uddl-owl-paper/path"
	"github.com/mckib2/uddl-owl-paper/query"
)

// ParseFacts parses the tuple text format:
//
//	(Subject, predicate, Object)
//	(Subject, predicate[mult], Object, rolename)
//	SELECT ... ;
//
// Fact lines are parenthesized, comma-separated at the top level (commas
// inside brackets belong to multiplicities or association paths). Embedded
// SELECT statements may span lines and end at a semicolon; they are parsed
// and returned alongside the facts. Lines that fit neither form are skipped,
// as are statements that fail to parse; the loader is deliberately lenient
// so one bad line cannot poison a model file.
func ParseFacts(input string) (Model, []*query.QueryStatement) {
	var (
		facts   Model
		queries []*query.QueryStatement

		queryBuf []string
		inQuery  bool
	)

	flushQuery := func() {
		text := strings.TrimSpace(strings.Join(queryBuf, "\n"))
		text = strings.TrimSuffix(text, ";")
		if stmt, err := query.Parse(text); err == nil {
			queries = append(queries, stmt)
		}
		queryBuf = nil
		inQuery = false
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if inQuery {
			queryBuf = append(queryBuf, line)
			if strings.Contains(line, ";") {
				flushQuery()
			}
			continue
		}
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "SELECT") {
			inQuery = true
			queryBuf = []string{line}
			if strings.Contains(line, ";") {
				flushQuery()
			}
			continue
		}
		if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
			if f, ok := parseFactLine(trimmed[1 : len(trimmed)-1]); ok {
				facts = append(facts, f)
			}
		}
	}

	return facts, queries
}

// ParseFactsFile reads and parses a tuple file from disk.
func ParseFactsFile(p string) (Model, []*query.QueryStatement, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, nil, fmt.Errorf("read model: %w", err)
	}
	facts, queries := ParseFacts(string(data))
	return facts, queries, nil
}

func parseFactLine(content string) (Fact, bool) {
	parts := splitTopLevel(content)
	if len(parts) < 3 {
		return Fact{}, false
	}

	f := Fact{Subject: parts[0], Object: parts[2]}
	if len(parts) > 3 {
		f.Rolename = parts[3]
	}

	f.Predicate, f.Multiplicity = parsePredicate(parts[1])

	if f.Predicate == PredicateAssociates {
		if p, err := path.Parse(f.Object); err == nil {
			f.ObjectPath = &p
		}
	}

	if f.Rolename == "" {
		f.Rolename = defaultRolename(f)
	}

	return f, true
}

// splitTopLevel splits on commas outside square brackets and drops empty
// segments left by trailing commas.
func splitTopLevel(content string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range content {
		switch {
		case ch == '[':
			depth++
			current.WriteRune(ch)
		case ch == ']':
			depth--
			current.WriteRune(ch)
		case ch == ',' && depth == 0:
			if s := strings.TrimSpace(current.String()); s != "" {
				parts = append(parts, s)
			}
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}

// parsePredicate splits "predicate[a, b]" into name and bounds. Predicates
// without explicit bounds get their conventional defaults: composes is
// single-valued, associates is unbounded on both sides.
func parsePredicate(raw string) (string, Multiplicity) {
	open := strings.IndexByte(raw, '[')
	if open < 0 || !strings.HasSuffix(raw, "]") {
		switch raw {
		case PredicateComposes:
			return raw, Multiplicity{1}
		case PredicateAssociates:
			return raw, Multiplicity{-1, -1}
		}
		return raw, nil
	}

	name := raw[:open]
	var bounds Multiplicity
	for _, piece := range strings.Split(raw[open+1:len(raw)-1], ",") {
		v, err := strconv.Atoi(strings.TrimSpace(piece))
		if err != nil {
			return name, nil
		}
		bounds = append(bounds, v)
	}
	return name, bounds
}

// defaultRolename derives a rolename from the object: the terminal name with
// its first letter lower-cased.
func defaultRolename(f Fact) string {
	var name string
	if f.ObjectPath != nil {
		if n := len(f.ObjectPath.Resolutions); n > 0 {
			name = f.ObjectPath.Resolutions[n-1].Role()
		} else {
			name = f.ObjectPath.StartType
		}
	} else {
		segments := strings.Split(f.Object, ".")
		name = segments[len(segments)-1]
	}
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}
