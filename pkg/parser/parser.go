// Package parser turns CEL source text into a pkg/ast tree, driving the
// grammar through participle/v2 over a stateful lexer rather than a
// hand-written scanner: CEL's triple-quoted strings are a "content runs
// until a delimiter run" problem, which the stateful lexer's Push/Pop
// states solve (see grammar.go).
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/libdbm/libcel/pkg/ast"
)

// Error reports a parse error together with the position it occurred at.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

var celParser = participle.MustBuild[conditionalExpr](
	participle.Lexer(celLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(10),
)

// Parse parses source as a single CEL expression and returns its AST.
func Parse(source string) (ast.Expr, error) {
	tree, err := celParser.ParseString("", source)
	if err != nil {
		return nil, wrapError(err)
	}
	return toExpr(tree)
}

// wrapError adapts participle's error (which may or may not carry a
// position, depending on where parsing failed) into this package's Error
// type, so callers only ever see one error shape out of Parse.
func wrapError(err error) error {
	if perr, ok := err.(participle.Error); ok {
		return &Error{Pos: perr.Position(), Msg: perr.Message()}
	}
	return &Error{Msg: err.Error()}
}
