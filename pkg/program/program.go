// Package program ties the parser, evaluator, and function table together
// into a reusable compiled unit: parse once, evaluate many times against
// independent binding maps.
package program

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/libdbm/libcel/pkg/ast"
	"github.com/libdbm/libcel/pkg/eval"
	"github.com/libdbm/libcel/pkg/function"
	"github.com/libdbm/libcel/pkg/parser"
	"github.com/libdbm/libcel/pkg/value"
)

// Program is a parsed expression plus the function table it evaluates
// against. The AST is immutable once built and may be shared across any
// number of concurrent Evaluate calls, each against its own bindings.
type Program struct {
	source string
	expr   ast.Expr
	table  function.Table
}

// Compile parses source against the standard function table.
func Compile(source string) (*Program, error) {
	return CompileWith(source, function.NewStandard())
}

// CompileWith parses source against a caller-supplied function table.
func CompileWith(source string, table function.Table) (*Program, error) {
	expr, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return &Program{source: source, expr: expr, table: table}, nil
}

// Source returns the original expression text this Program was compiled
// from.
func (p *Program) Source() string { return p.source }

// Expr returns the parsed AST, letting callers that already hold a
// compiled Program (the CLI's debug printer, for instance) inspect the
// tree without parsing the source a second time.
func (p *Program) Expr() ast.Expr { return p.expr }

// Evaluate runs the compiled program against a fresh binding map. Each call
// gets its own eval.Env: the binding map is copied, and transient macro
// bindings never leak between calls or across goroutines.
func (p *Program) Evaluate(bindings map[string]value.Value) (value.Value, error) {
	return eval.New(p.table).Eval(p.expr, eval.NewEnv(bindings))
}

// Request is one binding set for a batch evaluation. Its position in the
// requests slice is the position of its Result in EvaluateBatch's output.
type Request struct {
	Bindings map[string]value.Value
}

// Result is one element of an EvaluateBatch response: either a value or an
// error, keyed by its position in the input slice.
type Result struct {
	Value value.Value
	Err   error
}

// EvaluateBatch evaluates the same compiled program against many
// independent binding sets concurrently, modeled on the fan-out/join shape
// Tangerg-lynx's batch helper uses for bulk model calls: spawn one
// goroutine per request, synchronize with an errgroup, and return results
// in input order. A per-request evaluation error is captured in that
// request's Result rather than aborting the batch — only a cancelled or
// already-done ctx stops it early.
func (p *Program) EvaluateBatch(ctx context.Context, requests []Request) ([]Result, error) {
	results := make([]Result, len(requests))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := p.Evaluate(req.Bindings)
			results[i] = Result{Value: v, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Eval is the one-shot convenience form: compile source, then evaluate it
// once against bindings.
func Eval(source string, bindings map[string]value.Value) (value.Value, error) {
	prog, err := Compile(source)
	if err != nil {
		return value.Value{}, err
	}
	return prog.Evaluate(bindings)
}
