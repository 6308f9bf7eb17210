// Package libcel is the public façade: construct a program from an
// expression string, evaluate it against bindings, get back a value or a
// typed error. Everything interesting — grammar, AST, value model,
// function dispatch, tree-walking evaluation — lives in the pkg/
// subpackages this re-exports; this file is deliberately thin.
package libcel

import (
	"github.com/libdbm/libcel/internal/cache"
	"github.com/libdbm/libcel/pkg/function"
	"github.com/libdbm/libcel/pkg/program"
	"github.com/libdbm/libcel/pkg/value"
)

// Value is the dynamic value every expression evaluates to.
type Value = value.Value

// Program is a parsed, reusable expression.
type Program = program.Program

// FunctionTable is the extension point for embedder-supplied functions.
type FunctionTable = function.Table

// StandardFunctions returns the built-in function table (size, int, has,
// matches, the string/list methods, and so on).
func StandardFunctions() FunctionTable { return function.NewStandard() }

// Compile parses source against the standard function table, returning a
// *parser.Error on failure.
func Compile(source string) (*Program, error) {
	return program.Compile(source)
}

// CompileWith parses source against a caller-supplied function table,
// typically one that intercepts a handful of names and delegates the rest
// to StandardFunctions().
func CompileWith(source string, table FunctionTable) (*Program, error) {
	return program.CompileWith(source, table)
}

// standardCache memoizes Compile by source text, against the standard
// function table, for embedders that re-evaluate the same handful of
// expressions against many binding sets.
var standardCache = cache.New()

// CompileCached is Compile, but returns the same *Program instance for a
// source string seen before instead of re-parsing it.
func CompileCached(source string) (*Program, error) {
	return standardCache.Compile(source)
}

// Evaluate runs an already-compiled program against a fresh binding map.
func Evaluate(p *Program, bindings map[string]Value) (Value, error) {
	return p.Evaluate(bindings)
}

// Eval is the one-shot convenience: compile source, then evaluate it once.
func Eval(source string, bindings map[string]Value) (Value, error) {
	return program.Eval(source, bindings)
}
