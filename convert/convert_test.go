package convert

import (
	"errors"
	"testing"

	"github.com/mckib2/uddl-owl-paper/model"
	"github.com/mckib2/uddl-owl-paper/path"
	"github.com/mckib2/uddl-owl-paper/query"
)

const gordonFacts = `
(AirSystem, composes, NavigationSystem, navSystem)
(AirSystem, composes, ControlSystem, controlSystem)
(AirSystem, composes, AirFrame, airFrame)
(AirFrame, composes, Position, pos)
(NavigationSystem, composes, Mode, mode)
(ControlSystem, composes, Mode, mode)
(Observe, associates[1, 1, -1, -1], NavigationSystem, observer)
(Observe, associates[1, 1, -1, -1], AirFrame, observed)
(Observe, composes, Validity, validity)
(Control, associates[1, 1, -1, -1], ControlSystem, controller)
(Control, associates[1, 1, -1, -1], AirFrame, controlled)
(Control, composes, Validity, validity)
`

const diamondFacts = `
(A, composes, B, b)
(A, composes, C, c)
(B, composes, D, d)
(C, composes, D, d)
(D, composes, X, x)
`

const gordonQuery = `SELECT AirFrame.pos
FROM AirSystem
JOIN NavigationSystem
    ON AirSystem.navSystem = NavigationSystem
JOIN Observe
    ON Observe.observer = NavigationSystem
JOIN AirFrame
    ON Observe.observed = AirFrame`

func gordonCompiler(t *testing.T) *Compiler {
	t.Helper()
	facts, _ := model.ParseFacts(gordonFacts)
	return &Compiler{Model: facts}
}

func diamondCompiler(t *testing.T) *Compiler {
	t.Helper()
	facts, _ := model.ParseFacts(diamondFacts)
	return &Compiler{Model: facts}
}

func mustCompile(t *testing.T, c *Compiler, text string) (*AliasMap, []path.ParticipantPath) {
	t.Helper()
	stmt, err := query.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", text, err)
	}
	am, terminal, err := c.QueryToPaths(stmt)
	if err != nil {
		t.Fatalf("QueryToPaths(%q) failed: %v", text, err)
	}
	return am, terminal
}

func pathStrings(paths []path.ParticipantPath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func checkPaths(t *testing.T, got []path.ParticipantPath, want ...string) {
	t.Helper()
	gotStrs := pathStrings(got)
	if len(gotStrs) != len(want) {
		t.Fatalf("expected %d paths %v, got %v", len(want), want, gotStrs)
	}
	for i := range want {
		if gotStrs[i] != want[i] {
			t.Errorf("path %d: expected %s, got %s", i, want[i], gotStrs[i])
		}
	}
}

func TestQueryToPaths_Gordon(t *testing.T) {
	c := gordonCompiler(t)
	am, terminal := mustCompile(t, c, gordonQuery)

	checkPaths(t, terminal, "AirSystem.navSystem->observer[Observe].observed.pos")

	checkPaths(t, am.Paths("AirSystem"), "AirSystem")
	checkPaths(t, am.Paths("NavigationSystem"), "AirSystem.navSystem")
	checkPaths(t, am.Paths("Observe"), "AirSystem.navSystem->observer[Observe]")
	checkPaths(t, am.Paths("AirFrame"), "AirSystem.navSystem->observer[Observe].observed")
}

func TestQueryToPaths_ForwardShapesEquivalent(t *testing.T) {
	queries := []string{
		"SELECT B.x FROM A JOIN B ON A.b = B",
		"SELECT B.x FROM A JOIN B ON B = A.b",
		"SELECT B.x FROM A JOIN B ON A.b",
	}
	for _, q := range queries {
		am, terminal := mustCompile(t, &Compiler{}, q)
		checkPaths(t, terminal, "A.b.x")
		checkPaths(t, am.Paths("B"), "A.b")
		if root, ok := am.RootAlias(); !ok || root != "A" {
			t.Errorf("%q: root alias = %q, %v", q, root, ok)
		}
	}
}

func TestQueryToPaths_BackwardShapesEquivalent(t *testing.T) {
	queries := []string{
		"SELECT O.v FROM N JOIN O ON O.r = N",
		"SELECT O.v FROM N JOIN O ON N = O.r",
	}
	for _, q := range queries {
		am, terminal := mustCompile(t, &Compiler{}, q)
		checkPaths(t, terminal, "N->r[O].v")
		checkPaths(t, am.Paths("O"), "N->r[O]")
	}
}

func TestQueryToPaths_RootAliasInProjection(t *testing.T) {
	_, terminal := mustCompile(t, &Compiler{}, "SELECT a.x FROM A a")
	checkPaths(t, terminal, "A.x")

	// A bare characteristic belongs to the root.
	_, terminal = mustCompile(t, &Compiler{}, "SELECT x FROM A")
	checkPaths(t, terminal, "A.x")
}

func TestQueryToPaths_DiamondAccumulates(t *testing.T) {
	am, terminal := mustCompile(t, diamondCompiler(t),
		"SELECT D.x FROM A JOIN B ON A.b = B JOIN C ON A.c = C JOIN D ON B.d = D AND C.d = D")

	checkPaths(t, am.Paths("D"), "A.b.d", "A.c.d")
	checkPaths(t, terminal, "A.b.d.x", "A.c.d.x")
}

func TestQueryToPaths_DiamondDedupes(t *testing.T) {
	// The same condition twice contributes one path, not two.
	am, _ := mustCompile(t, &Compiler{},
		"SELECT D.x FROM A JOIN D ON A.d = D AND A.d = D")
	checkPaths(t, am.Paths("D"), "A.d")
}

func TestQueryToPaths_EntityWildcard(t *testing.T) {
	c := gordonCompiler(t)
	_, terminal := mustCompile(t, c,
		"SELECT NavigationSystem.* FROM AirSystem JOIN NavigationSystem ON AirSystem.navSystem = NavigationSystem")
	checkPaths(t, terminal, "AirSystem.navSystem.mode")
}

func TestQueryToPaths_AllWildcard(t *testing.T) {
	c := gordonCompiler(t)
	_, terminal := mustCompile(t, c, "SELECT * FROM AirSystem")
	checkPaths(t, terminal, "AirSystem.airFrame", "AirSystem.controlSystem", "AirSystem.navSystem")
}

func TestQueryToPaths_LenientSkipsUnknownAlias(t *testing.T) {
	am, terminal := mustCompile(t, &Compiler{}, "SELECT B.x FROM A JOIN B ON Z.q = B")
	if !am.Has("B") {
		t.Error("target alias should be registered even when its condition is dropped")
	}
	if len(am.Paths("B")) != 0 {
		t.Errorf("expected no paths for B, got %v", pathStrings(am.Paths("B")))
	}
	if len(terminal) != 0 {
		t.Errorf("expected no terminal paths, got %v", pathStrings(terminal))
	}
}

func TestQueryToPaths_StrictErrors(t *testing.T) {
	stmt, err := query.Parse("SELECT B.x FROM A JOIN B ON Z.q = B")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, _, err = (&Compiler{Strict: true}).QueryToPaths(stmt)
	var rerr *UnresolvedReferenceError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *UnresolvedReferenceError, got %v", err)
	}

	stmt, err = query.Parse("SELECT Z.x FROM A")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, _, err = (&Compiler{Strict: true}).QueryToPaths(stmt)
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *UnresolvedReferenceError for unknown projection alias, got %v", err)
	}
}

func TestQueryToPaths_Empty(t *testing.T) {
	am, terminal, err := (&Compiler{}).QueryToPaths(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if am.Len() != 0 || terminal != nil {
		t.Errorf("expected empty result, got %d aliases, %v", am.Len(), pathStrings(terminal))
	}
}

func TestPathsToQuery_Gordon(t *testing.T) {
	c := gordonCompiler(t)
	terminal := []path.ParticipantPath{
		path.MustParse("AirSystem.navSystem->observer[Observe].observed.pos"),
	}
	am := c.ReconstructAliasMap(terminal, nil)
	stmt, err := c.PathsToQuery(am, terminal)
	if err != nil {
		t.Fatalf("PathsToQuery failed: %v", err)
	}
	if got := stmt.PrettyPrint(); got != gordonQuery {
		t.Errorf("reconstructed query mismatch:\ngot:\n%s\nwant:\n%s", got, gordonQuery)
	}
}

func TestPathsToQuery_Diamond(t *testing.T) {
	c := diamondCompiler(t)
	terminal := []path.ParticipantPath{path.MustParse("A.b.d.x")}

	partial := NewAliasMap()
	partial.Bind("D", path.MustParse("A.b.d"), path.MustParse("A.c.d"))
	am := c.ReconstructAliasMap(terminal, partial)

	stmt, err := c.PathsToQuery(am, terminal)
	if err != nil {
		t.Fatalf("PathsToQuery failed: %v", err)
	}

	if len(stmt.From.Joins) != 3 {
		t.Fatalf("expected 3 joins, got %d: %s", len(stmt.From.Joins), stmt)
	}
	last := stmt.From.Joins[2]
	if last.Target.Name != "D" {
		t.Fatalf("expected final join on D, got %s", last.Target.Name)
	}
	if len(last.On) != 2 {
		t.Fatalf("diamond alias must yield one join with two conditions, got %d", len(last.On))
	}
	if last.On[0].String() != "B.d = D" || last.On[1].String() != "C.d = D" {
		t.Errorf("unexpected diamond conditions: %s AND %s", last.On[0], last.On[1])
	}
}

func TestPathsToQuery_DependencyOrdering(t *testing.T) {
	// D is bound before B but navigates through it; B must join first.
	c := diamondCompiler(t)
	am := NewAliasMap()
	am.Bind("A", path.MustParse("A"))
	am.Bind("D", path.MustParse("A.b.d"))
	am.Bind("B", path.MustParse("A.b"))

	stmt, err := c.PathsToQuery(am, []path.ParticipantPath{path.MustParse("A.b.d.x")})
	if err != nil {
		t.Fatalf("PathsToQuery failed: %v", err)
	}
	if len(stmt.From.Joins) != 2 {
		t.Fatalf("expected 2 joins, got %d", len(stmt.From.Joins))
	}
	if stmt.From.Joins[0].Target.Alias != "B" || stmt.From.Joins[1].Target.Alias != "D" {
		t.Errorf("expected join order B, D; got %s, %s",
			stmt.From.Joins[0].Target.Alias, stmt.From.Joins[1].Target.Alias)
	}
}

func TestPathsToQuery_Empty(t *testing.T) {
	stmt, err := (&Compiler{}).PathsToQuery(NewAliasMap(), nil)
	if err != nil || stmt != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", stmt, err)
	}
	stmt, err = (&Compiler{}).PathsToQuery(nil, nil)
	if err != nil || stmt != nil {
		t.Errorf("expected (nil, nil) for nil map, got (%v, %v)", stmt, err)
	}
}

func TestPathsToQuery_NoRoot(t *testing.T) {
	am := NewAliasMap()
	am.Bind("B", path.MustParse("A.b"))
	_, err := (&Compiler{}).PathsToQuery(am, nil)
	if !errors.Is(err, ErrNoRootAlias) {
		t.Errorf("expected ErrNoRootAlias, got %v", err)
	}
}

func TestPathsToQuery_TypeFallback(t *testing.T) {
	am := NewAliasMap()
	am.Bind("A", path.MustParse("A"))
	am.Bind("B", path.MustParse("A.b"))

	// No model: lenient compilation names the join target after the rolename.
	stmt, err := (&Compiler{}).PathsToQuery(am, nil)
	if err != nil {
		t.Fatalf("lenient PathsToQuery failed: %v", err)
	}
	if stmt.From.Joins[0].Target.Name != "b" {
		t.Errorf("expected rolename fallback b, got %s", stmt.From.Joins[0].Target.Name)
	}

	_, err = (&Compiler{Strict: true}).PathsToQuery(am, nil)
	var terr *UnresolvedTypeError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *UnresolvedTypeError, got %v", err)
	}
}

func TestReconstructAliasMap_FreshAliases(t *testing.T) {
	c := diamondCompiler(t)
	terminal := []path.ParticipantPath{
		path.MustParse("A.b.d.x"),
		path.MustParse("A.c.d.x"),
	}
	am := c.ReconstructAliasMap(terminal, nil)

	// Without seeding, the two d-prefixes get distinct type-named aliases.
	want := []string{"A", "B", "D", "C", "D_1"}
	got := am.Aliases()
	if len(got) != len(want) {
		t.Fatalf("expected aliases %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("alias %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestReconstructAliasMap_PartialPreserved(t *testing.T) {
	c := diamondCompiler(t)
	terminal := []path.ParticipantPath{
		path.MustParse("A.b.d.x"),
		path.MustParse("A.c.d.x"),
	}
	partial := NewAliasMap()
	partial.Bind("shared", path.MustParse("A.b.d"), path.MustParse("A.c.d"))

	am := c.ReconstructAliasMap(terminal, partial)
	if alias, ok := am.AliasFor(path.MustParse("A.c.d")); !ok || alias != "shared" {
		t.Errorf("seeded binding not preserved: %q, %v", alias, ok)
	}
	if am.Has("D") || am.Has("D_1") {
		t.Error("seeded alias should suppress generated aliases for the same paths")
	}
}

func TestRoundTrip_Gordon(t *testing.T) {
	c := gordonCompiler(t)
	am, terminal := mustCompile(t, c, gordonQuery)
	stmt, err := c.PathsToQuery(am, terminal)
	if err != nil {
		t.Fatalf("PathsToQuery failed: %v", err)
	}
	if got := stmt.PrettyPrint(); got != gordonQuery {
		t.Errorf("round trip not canonical:\ngot:\n%s\nwant:\n%s", got, gordonQuery)
	}
}

func TestRoundTrip_PathsSurvive(t *testing.T) {
	// Any terminal path set survives reverse-then-forward compilation.
	c := gordonCompiler(t)
	inputs := [][]string{
		{"AirSystem.navSystem.mode"},
		{"AirSystem.navSystem->observer[Observe].observed.pos"},
		{"AirSystem.navSystem.mode", "AirSystem.controlSystem.mode"},
	}
	for _, in := range inputs {
		var terminal []path.ParticipantPath
		for _, s := range in {
			terminal = append(terminal, path.MustParse(s))
		}
		am := c.ReconstructAliasMap(terminal, nil)
		stmt, err := c.PathsToQuery(am, terminal)
		if err != nil {
			t.Fatalf("PathsToQuery(%v) failed: %v", in, err)
		}
		_, again, err := c.QueryToPaths(stmt)
		if err != nil {
			t.Fatalf("QueryToPaths of reconstructed query failed: %v\nquery:\n%s", err, stmt.PrettyPrint())
		}
		checkPaths(t, again, in...)
	}
}
