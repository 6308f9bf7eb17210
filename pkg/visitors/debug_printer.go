// Package visitors provides ast.Visitor implementations for tooling that
// walks a compiled expression without evaluating it: a debug printer and a
// static lint pass. Neither is on the evaluator's hot path — pkg/eval
// type-switches directly — these exist for diagnostics.
package visitors

import (
	"fmt"
	"strings"

	"github.com/libdbm/libcel/pkg/ast"
	"github.com/libdbm/libcel/pkg/value"
)

// DebugPrinter renders an AST as an indented tree, one node per line.
type DebugPrinter struct {
	ast.BaseVisitor

	output strings.Builder
	indent int
}

// NewDebugPrinter creates a DebugPrinter.
func NewDebugPrinter() *DebugPrinter {
	return &DebugPrinter{}
}

// String returns the accumulated output.
func (d *DebugPrinter) String() string {
	return d.output.String()
}

func (d *DebugPrinter) print(format string, args ...interface{}) {
	d.output.WriteString(strings.Repeat("  ", d.indent))
	d.output.WriteString(fmt.Sprintf(format, args...))
	d.output.WriteString("\n")
}

func (d *DebugPrinter) child(f func()) {
	d.indent++
	f()
	d.indent--
}

func (d *DebugPrinter) VisitLiteral(node *ast.Literal) interface{} {
	d.print("Literal: %s", value.ToDisplayString(node.Value))
	return nil
}

func (d *DebugPrinter) VisitIdentifier(node *ast.Identifier) interface{} {
	d.print("Identifier: %s", node.Name)
	return nil
}

func (d *DebugPrinter) VisitSelect(node *ast.Select) interface{} {
	suffix := ""
	if node.IsTest {
		suffix = " (test)"
	}
	d.print("Select: .%s%s", node.Field, suffix)
	d.child(func() { node.Operand.Accept(d) })
	return nil
}

func (d *DebugPrinter) VisitCall(node *ast.Call) interface{} {
	kind := "Call"
	if node.IsMacro {
		kind = "Macro"
	}
	d.print("%s: %s (%d args)", kind, node.Name, len(node.Args))
	d.child(func() {
		if node.Target != nil {
			d.print("Target:")
			d.child(func() { node.Target.Accept(d) })
		}
		for i, arg := range node.Args {
			d.print("Arg %d:", i)
			d.child(func() { arg.Accept(d) })
		}
	})
	return nil
}

func (d *DebugPrinter) VisitList(node *ast.List) interface{} {
	d.print("List: %d elements", len(node.Elements))
	d.child(func() {
		for _, e := range node.Elements {
			e.Accept(d)
		}
	})
	return nil
}

func (d *DebugPrinter) VisitMap(node *ast.Map) interface{} {
	d.print("Map: %d entries", len(node.Entries))
	d.child(func() {
		for _, e := range node.Entries {
			d.print("Key:")
			d.child(func() { e.Key.Accept(d) })
			d.print("Val:")
			d.child(func() { e.Val.Accept(d) })
		}
	})
	return nil
}

func (d *DebugPrinter) VisitStruct(node *ast.Struct) interface{} {
	d.print("Struct: %s", node.Type)
	d.child(func() {
		for _, f := range node.Fields {
			d.print("Field %s:", f.Name)
			d.child(func() { f.Val.Accept(d) })
		}
	})
	return nil
}

func (d *DebugPrinter) VisitUnary(node *ast.Unary) interface{} {
	op := "!"
	if node.Op == ast.OpNegate {
		op = "-"
	}
	d.print("Unary: %s", op)
	d.child(func() { node.Operand.Accept(d) })
	return nil
}

func (d *DebugPrinter) VisitBinary(node *ast.Binary) interface{} {
	d.print("Binary: %s", binaryOpName(node.Op))
	d.child(func() {
		node.Left.Accept(d)
		node.Right.Accept(d)
	})
	return nil
}

func (d *DebugPrinter) VisitConditional(node *ast.Conditional) interface{} {
	d.print("Conditional:")
	d.child(func() {
		d.print("Cond:")
		d.child(func() { node.Cond.Accept(d) })
		d.print("Then:")
		d.child(func() { node.Then.Accept(d) })
		d.print("Else:")
		d.child(func() { node.Else.Accept(d) })
	})
	return nil
}

func (d *DebugPrinter) VisitIndex(node *ast.Index) interface{} {
	d.print("Index:")
	d.child(func() {
		node.Operand.Accept(d)
		node.Index.Accept(d)
	})
	return nil
}

func (d *DebugPrinter) VisitComprehension(node *ast.Comprehension) interface{} {
	d.print("Comprehension: iter=%s accu=%s", node.IterVar, node.AccuVar)
	d.child(func() {
		d.print("Range:")
		d.child(func() { node.IterRange.Accept(d) })
		if node.LoopCond != nil {
			d.print("LoopCond:")
			d.child(func() { node.LoopCond.Accept(d) })
		}
		d.print("LoopStep:")
		d.child(func() { node.LoopStep.Accept(d) })
		d.print("Result:")
		d.child(func() { node.Result.Accept(d) })
	})
	return nil
}

func binaryOpName(op ast.BinaryOp) string {
	switch op {
	case ast.OpAdd:
		return "+"
	case ast.OpSubtract:
		return "-"
	case ast.OpMultiply:
		return "*"
	case ast.OpDivide:
		return "/"
	case ast.OpModulo:
		return "%"
	case ast.OpEqual:
		return "=="
	case ast.OpNotEqual:
		return "!="
	case ast.OpLess:
		return "<"
	case ast.OpLessEqual:
		return "<="
	case ast.OpGreater:
		return ">"
	case ast.OpGreaterEqual:
		return ">="
	case ast.OpLogicalAnd:
		return "&&"
	case ast.OpLogicalOr:
		return "||"
	case ast.OpIn:
		return "in"
	default:
		return "?"
	}
}
