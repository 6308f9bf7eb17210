package parser

import (
	"testing"

	"github.com/libdbm/libcel/pkg/ast"
)

func mustParse(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return expr
}

func TestPrecedence(t *testing.T) {
	expr := mustParse(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level Add, got %#v", expr)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMultiply {
		t.Fatalf("expected right operand to be Multiply, got %#v", bin.Right)
	}
}

func TestTernaryRightAssociative(t *testing.T) {
	expr := mustParse(t, "a ? b : c ? d : e")
	cond, ok := expr.(*ast.Conditional)
	if !ok {
		t.Fatalf("expected Conditional, got %#v", expr)
	}
	if _, ok := cond.Else.(*ast.Conditional); !ok {
		t.Fatalf("expected nested Conditional in Else branch, got %#v", cond.Else)
	}
}

func TestLogicalShortCircuitShape(t *testing.T) {
	expr := mustParse(t, "a || b && c")
	or, ok := expr.(*ast.Binary)
	if !ok || or.Op != ast.OpLogicalOr {
		t.Fatalf("expected top-level LogicalOr, got %#v", expr)
	}
	and, ok := or.Right.(*ast.Binary)
	if !ok || and.Op != ast.OpLogicalAnd {
		t.Fatalf("expected right operand to be LogicalAnd, got %#v", or.Right)
	}
}

func TestRelationalChain(t *testing.T) {
	expr := mustParse(t, "1 < 2 == true")
	eq, ok := expr.(*ast.Binary)
	if !ok || eq.Op != ast.OpEqual {
		t.Fatalf("expected top-level Equal, got %#v", expr)
	}
	if _, ok := eq.Left.(*ast.Binary); !ok {
		t.Fatalf("expected left operand to be a Binary (the Less comparison), got %#v", eq.Left)
	}
}

func TestUnaryChaining(t *testing.T) {
	expr := mustParse(t, "!!a")
	outer, ok := expr.(*ast.Unary)
	if !ok || outer.Op != ast.OpNot {
		t.Fatalf("expected outer Not, got %#v", expr)
	}
	inner, ok := outer.Operand.(*ast.Unary)
	if !ok || inner.Op != ast.OpNot {
		t.Fatalf("expected inner Not, got %#v", outer.Operand)
	}
}

func TestNegatingUintLiteralIsParseError(t *testing.T) {
	if _, err := Parse("-5u"); err == nil {
		t.Errorf("expected parse error negating a uint literal")
	}
}

func TestMemberChain(t *testing.T) {
	expr := mustParse(t, "a.b.c")
	outer, ok := expr.(*ast.Select)
	if !ok || outer.Field != "c" {
		t.Fatalf("expected outer Select on field c, got %#v", expr)
	}
	inner, ok := outer.Operand.(*ast.Select)
	if !ok || inner.Field != "b" {
		t.Fatalf("expected inner Select on field b, got %#v", outer.Operand)
	}
}

func TestIndexAndCallChain(t *testing.T) {
	expr := mustParse(t, "a[0].b(1, 2)")
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "b" || len(call.Args) != 2 {
		t.Fatalf("expected call b(1,2), got %#v", expr)
	}
	idx, ok := call.Target.(*ast.Index)
	if !ok {
		t.Fatalf("expected target (the receiver a[0]) to be Index, got %#v", call.Target)
	}
	if id, ok := idx.Operand.(*ast.Identifier); !ok || id.Name != "a" {
		t.Fatalf("expected Index operand to be identifier a, got %#v", idx.Operand)
	}
}

func TestListAndMapLiterals(t *testing.T) {
	expr := mustParse(t, `[1, 2, 3,]`)
	list, ok := expr.(*ast.List)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("expected 3-element list with trailing comma tolerated, got %#v", expr)
	}

	expr2 := mustParse(t, `{"a": 1, "b": 2}`)
	m, ok := expr2.(*ast.Map)
	if !ok || len(m.Entries) != 2 {
		t.Fatalf("expected 2-entry map, got %#v", expr2)
	}
}

func TestStructLiteral(t *testing.T) {
	expr := mustParse(t, `Point{x: 1, y: 2}`)
	s, ok := expr.(*ast.Struct)
	if !ok || s.Type != "Point" || len(s.Fields) != 2 {
		t.Fatalf("expected Point struct literal with 2 fields, got %#v", expr)
	}
}

func TestMacroCallFlagged(t *testing.T) {
	expr := mustParse(t, "items.map(x, x + 1)")
	call, ok := expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %#v", expr)
	}
	if !call.IsMacro {
		t.Errorf("expected map(x, ...) to be flagged as a macro call")
	}
}

func TestNonMacroShapedCallNotFlagged(t *testing.T) {
	expr := mustParse(t, "items.map(1, 2)")
	call, ok := expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %#v", expr)
	}
	if call.IsMacro {
		t.Errorf("map(1, 2) does not bind a bare identifier, should not be flagged as a macro")
	}
}

func TestPlainFunctionCallNotMacro(t *testing.T) {
	expr := mustParse(t, "size(x)")
	call, ok := expr.(*ast.Call)
	if !ok {
		t.Fatalf("expected Call, got %#v", expr)
	}
	if call.Target != nil {
		t.Errorf("expected plain function call to have nil target")
	}
	if call.IsMacro {
		t.Errorf("a plain function call is never a macro")
	}
}

func TestReservedWordRejectedByParser(t *testing.T) {
	if _, err := Parse("let"); err == nil {
		t.Errorf("expected parse error for reserved word")
	}
}

func TestStringAndBytesLiteralRoundTrip(t *testing.T) {
	expr := mustParse(t, `"\101" + b"\xff"`)
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected Add, got %#v", expr)
	}
	lit, ok := bin.Left.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString || lit.Value.AsString() != "A" {
		t.Fatalf("expected string literal \"A\", got %#v", bin.Left)
	}
	blit, ok := bin.Right.(*ast.Literal)
	if !ok || blit.Kind != ast.LitBytes {
		t.Fatalf("expected bytes literal, got %#v", bin.Right)
	}
}

func TestInOperator(t *testing.T) {
	expr := mustParse(t, "x in [1, 2, 3]")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpIn {
		t.Fatalf("expected In binary op, got %#v", expr)
	}
}

func TestTripleQuotedStringAllowsEmbeddedQuotesAndNewlines(t *testing.T) {
	expr := mustParse(t, "'''line one\nhas \"quotes\" and 'one' tick'''")
	lit, ok := expr.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		t.Fatalf("expected string literal, got %#v", expr)
	}
	want := "line one\nhas \"quotes\" and 'one' tick"
	if lit.Value.AsString() != want {
		t.Fatalf("got %q, want %q", lit.Value.AsString(), want)
	}
}

func TestRawStringKeepsBackslashesLiteral(t *testing.T) {
	expr := mustParse(t, `r"a\nb"`)
	lit, ok := expr.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString || lit.Value.AsString() != `a\nb` {
		t.Fatalf(`expected raw literal a\nb, got %#v`, expr)
	}
}

func TestNewlineInSingleQuotedStringIsParseError(t *testing.T) {
	if _, err := Parse("'a\nb'"); err == nil {
		t.Errorf("expected parse error for newline in a non-triple-quoted string")
	}
}

func TestHasLikeCallParsesAsPlainFunctionCall(t *testing.T) {
	expr := mustParse(t, "has(a.b)")
	call, ok := expr.(*ast.Call)
	if !ok || call.Name != "has" || len(call.Args) != 1 {
		t.Fatalf("expected has(a.b) to parse as a 1-arg function call, got %#v", expr)
	}
	if _, ok := call.Args[0].(*ast.Select); !ok {
		t.Fatalf("expected has() argument to be a Select, got %#v", call.Args[0])
	}
}
