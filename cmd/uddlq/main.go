// uddlq converts between query statements and participant paths.
//
// Usage:
//
//	uddlq [-model facts.txt] [-strict] [-v] "SELECT AirFrame.pos FROM AirSystem JOIN ..."
//	uddlq [-model facts.txt] [-and-join D:p1,p2] "AirSystem.navSystem->observer[Observe].observed.pos" ...
//
// A single argument starting with SELECT is compiled to paths; any other
// arguments are parsed as paths and compiled back to a canonical query.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mckib2/uddl-owl-paper/convert"
	"github.com/mckib2/uddl-owl-paper/model"
	"github.com/mckib2/uddl-owl-paper/path"
	"github.com/mckib2/uddl-owl-paper/query"
)

const version = "0.1.0"

// andJoins collects repeated -and-join flags of the form "alias:p1,p2,...".
type andJoins []string

func (a *andJoins) String() string { return strings.Join(*a, "; ") }

func (a *andJoins) Set(v string) error {
	if !strings.Contains(v, ":") {
		return fmt.Errorf("expected alias:path,path form, got %q", v)
	}
	*a = append(*a, v)
	return nil
}

func main() {
	modelFile := flag.String("model", "", "Path to a tuple facts file used for type resolution")
	strict := flag.Bool("strict", false, "Fail on unresolvable conditions and types instead of skipping")
	verbose := flag.Bool("v", false, "Print the alias map alongside the result")
	showVersion := flag.Bool("version", false, "Print version and exit")
	var joins andJoins
	flag.Var(&joins, "and-join", "Pre-bind an alias to several paths (alias:p1,p2); repeatable")

	flag.Parse()

	if *showVersion {
		fmt.Printf("uddlq %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: a query or at least one path is required")
		flag.Usage()
		os.Exit(1)
	}

	c := &convert.Compiler{Strict: *strict}
	if *modelFile != "" {
		m, _, err := model.ParseFactsFile(*modelFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		c.Model = m
	}

	if len(args) == 1 && strings.HasPrefix(strings.ToUpper(strings.TrimSpace(args[0])), "SELECT") {
		if err := queryToPaths(c, args[0], *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := pathsToQuery(c, args, joins, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func queryToPaths(c *convert.Compiler, text string, verbose bool) error {
	stmt, err := query.Parse(text)
	if err != nil {
		return err
	}
	am, terminal, err := c.QueryToPaths(stmt)
	if err != nil {
		return err
	}
	for _, p := range terminal {
		fmt.Println(p.String())
	}
	if verbose && am != nil {
		fmt.Println()
		printAliasMap(am)
	}
	return nil
}

func pathsToQuery(c *convert.Compiler, args []string, joins andJoins, verbose bool) error {
	var terminal []path.ParticipantPath
	for _, raw := range args {
		p, err := path.Parse(raw)
		if err != nil {
			return err
		}
		terminal = append(terminal, p)
	}

	partial := convert.NewAliasMap()
	for _, j := range joins {
		alias, rest, _ := strings.Cut(j, ":")
		for _, raw := range strings.Split(rest, ",") {
			p, err := path.Parse(strings.TrimSpace(raw))
			if err != nil {
				return err
			}
			partial.Bind(alias, p)
		}
	}

	am := c.ReconstructAliasMap(terminal, partial)
	stmt, err := c.PathsToQuery(am, terminal)
	if err != nil {
		return err
	}
	if stmt == nil {
		return fmt.Errorf("no paths to convert")
	}
	fmt.Println(stmt.PrettyPrint())
	if verbose {
		fmt.Println()
		printAliasMap(am)
	}
	return nil
}

func printAliasMap(am *convert.AliasMap) {
	for _, alias := range am.Aliases() {
		var parts []string
		for _, p := range am.Paths(alias) {
			parts = append(parts, p.String())
		}
		fmt.Printf("%s: %s\n", alias, strings.Join(parts, " AND "))
	}
}
