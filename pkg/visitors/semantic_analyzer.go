package visitors

import (
	"fmt"

	"github.com/libdbm/libcel/pkg/ast"
)

// Diagnostic is one finding produced by the SemanticAnalyzer, attached to
// the position of the node that triggered it.
type Diagnostic struct {
	Pos     ast.Position
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// SemanticAnalyzer walks a parsed expression looking for constructs that
// parse cleanly but are almost certainly mistakes: macro calls shaped so
// their bound variable can never be referenced, map literals whose
// duplicate keys silently resolve to last-write-wins at evaluation time,
// and division by a literal zero.
//
// It never rejects anything the parser accepted — a compiled Program does
// not consult it — it only collects Diagnostics for a caller that wants to
// surface warnings ahead of evaluation.
//
// The analyzer descends only through call, map-literal and binary nodes.
// Anything nested inside a list, select, index, unary, conditional, struct
// or comprehension node is walked by ast.BaseVisitor and is not examined,
// so a division by zero inside `[x / 0]` is not reported.
type SemanticAnalyzer struct {
	ast.BaseVisitor

	diagnostics []Diagnostic
}

// NewSemanticAnalyzer creates an analyzer with no diagnostics collected yet.
func NewSemanticAnalyzer() *SemanticAnalyzer {
	return &SemanticAnalyzer{}
}

// Analyze visits expr and returns every Diagnostic found.
func (a *SemanticAnalyzer) Analyze(expr ast.Expr) []Diagnostic {
	expr.Accept(a)
	return a.diagnostics
}

func (a *SemanticAnalyzer) report(pos ast.Position, format string, args ...interface{}) {
	a.diagnostics = append(a.diagnostics, Diagnostic{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// macroNames mirrors pkg/parser's list. The analyzer checks a call's shape
// against this set directly rather than trusting Call.IsMacro: the parser
// only sets IsMacro once the shape is already well-formed, so a malformed
// macro-named call (the case worth flagging) always has IsMacro false and
// would never reach a check gated on that flag.
var macroNames = map[string]bool{
	"map": true, "filter": true, "all": true, "exists": true, "existsOne": true,
}

func (a *SemanticAnalyzer) VisitCall(node *ast.Call) interface{} {
	if node.Target != nil {
		node.Target.Accept(a)
	}

	if node.Target != nil && macroNames[node.Name] {
		a.checkMacroShape(node)
	}

	for _, arg := range node.Args {
		arg.Accept(a)
	}
	return nil
}

// checkMacroShape flags a macro-named method call whose first argument is
// not a bare identifier: map/filter/all/exists/existsOne all bind their
// loop variable from that argument, so anything else can never be
// referenced by the transform or predicate that follows.
func (a *SemanticAnalyzer) checkMacroShape(node *ast.Call) {
	if len(node.Args) != 2 {
		a.report(node.Position, "macro %q expects exactly 2 arguments, got %d", node.Name, len(node.Args))
		return
	}
	if _, ok := node.Args[0].(*ast.Identifier); !ok {
		a.report(node.Args[0].Pos(), "macro %q expects a bare identifier as its loop variable, not a compound expression", node.Name)
	}
}

func (a *SemanticAnalyzer) VisitMap(node *ast.Map) interface{} {
	seen := make(map[string]bool, len(node.Entries))
	for _, entry := range node.Entries {
		entry.Key.Accept(a)
		entry.Val.Accept(a)

		if lit, ok := entry.Key.(*ast.Literal); ok && lit.Kind == ast.LitString {
			key := lit.Value.AsString()
			if seen[key] {
				a.report(lit.Position, "duplicate map key %q, later entry wins", key)
			}
			seen[key] = true
		}
	}
	return nil
}

func (a *SemanticAnalyzer) VisitBinary(node *ast.Binary) interface{} {
	if node.Op == ast.OpDivide {
		if lit, ok := node.Right.(*ast.Literal); ok {
			switch lit.Kind {
			case ast.LitInt:
				if lit.Value.AsInt() == 0 {
					a.report(lit.Position, "division by literal zero always errors at evaluation time")
				}
			case ast.LitDouble:
				if lit.Value.AsDouble() == 0 {
					a.report(lit.Position, "division by literal zero always errors at evaluation time")
				}
			}
		}
	}
	node.Left.Accept(a)
	node.Right.Accept(a)
	return nil
}
