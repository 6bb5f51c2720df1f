// Package uddl provides a toolchain for the UDDL conceptual data model:
// a SQL-like query surface over a graph of entities, associations and
// observables, and a bidirectional compiler between that surface and the
// navigational participant-path representation.
//
// The module is organized into four packages:
//
//   - [github.com/mckib2/uddl-owl-paper/model] -- schema facts and the tuple-file loader
//   - [github.com/mckib2/uddl-owl-paper/path] -- participant paths: parsing, printing, equality
//   - [github.com/mckib2/uddl-owl-paper/query] -- query AST, parser and pretty-printer
//   - [github.com/mckib2/uddl-owl-paper/convert] -- query/path compilation in both directions
//
// The cmd/uddlq binary wires the packages together for command-line use.
// Everything is pure and in-memory; a loaded model is read-only and safe to
// share across concurrent compilations.
package uddl
