package eval

import (
	"testing"

	"github.com/libdbm/libcel/pkg/parser"
	"github.com/libdbm/libcel/pkg/value"
)

func run(t *testing.T, src string, bindings map[string]value.Value) (value.Value, error) {
	t.Helper()
	expr, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return New(nil).Eval(expr, NewEnv(bindings))
}

func TestArithmeticPrecedence(t *testing.T) {
	v, err := run(t, "2 + 3 * 4", nil)
	if err != nil || v.AsInt() != 14 {
		t.Fatalf("2 + 3 * 4 = %v, %v, want 14", v, err)
	}
	v, err = run(t, "(2 + 3) * 4", nil)
	if err != nil || v.AsInt() != 20 {
		t.Fatalf("(2 + 3) * 4 = %v, %v, want 20", v, err)
	}
}

func TestDivisionAlwaysProducesDouble(t *testing.T) {
	v, err := run(t, "10 / 3", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != value.KindDouble || v.AsDouble() != 10.0/3.0 {
		t.Fatalf("10 / 3 = %v, want double %v", v, 10.0/3.0)
	}
}

func TestStringConcatenation(t *testing.T) {
	v, err := run(t, `"Hello, " + name`, map[string]value.Value{"name": value.String("World")})
	if err != nil || v.AsString() != "Hello, World" {
		t.Fatalf(`"Hello, " + name = %v, %v, want "Hello, World"`, v, err)
	}
}

func TestTernaryWithBoundVars(t *testing.T) {
	v, err := run(t, `age >= 18 && hasLicense ? "can drive" : "cannot drive"`,
		map[string]value.Value{"age": value.Int(25), "hasLicense": value.Bool(true)})
	if err != nil || v.AsString() != "can drive" {
		t.Fatalf("ternary = %v, %v, want \"can drive\"", v, err)
	}
}

func TestFilterThenMap(t *testing.T) {
	v, err := run(t, "[1, 2, 3, 4, 5].filter(x, x > 2).map(x, x * 10)", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int64{30, 40, 50}
	got := v.AsList()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i, w := range want {
		if got[i].AsInt() != w {
			t.Errorf("element %d: got %v, want %d", i, got[i], w)
		}
	}
}

func TestHasFunction(t *testing.T) {
	user := value.Map([]value.Entry{
		{Key: value.String("name"), Val: value.String("Alice")},
		{Key: value.String("email"), Val: value.String("a@b")},
	})
	v, err := run(t, `has(user, "email")`, map[string]value.Value{"user": user})
	if err != nil || !v.AsBool() {
		t.Fatalf("has(user, \"email\") = %v, %v, want true", v, err)
	}

	user2 := value.Map([]value.Entry{{Key: value.String("name"), Val: value.String("Alice")}})
	v, err = run(t, `has(user, "email")`, map[string]value.Value{"user": user2})
	if err != nil || v.AsBool() {
		t.Fatalf("has(user, \"email\") = %v, %v, want false", v, err)
	}
}

func TestMatchesFunction(t *testing.T) {
	v, err := run(t, `matches("test@example.com", ".*@.*")`, nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("matches(...) = %v, %v, want true", v, err)
	}
}

func TestDivisionByZeroErrors(t *testing.T) {
	if _, err := run(t, "1 / 0", nil); err == nil {
		t.Errorf("expected error for 1 / 0")
	}
}

func TestUndefinedVariableErrors(t *testing.T) {
	if _, err := run(t, "x + y", map[string]value.Value{"x": value.Int(1)}); err == nil {
		t.Errorf("expected error for undefined variable y")
	}
}

func TestAllAndExists(t *testing.T) {
	v, err := run(t, "[2,4,6].all(x, x % 2 == 0)", nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("all(...) = %v, %v, want true", v, err)
	}
	v, err = run(t, "[1,3,5].exists(x, x % 2 == 0)", nil)
	if err != nil || v.AsBool() {
		t.Fatalf("exists(...) = %v, %v, want false", v, err)
	}
}

func TestHexLiteralEquality(t *testing.T) {
	v, err := run(t, "0x10 == 16", nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("0x10 == 16 = %v, %v, want true", v, err)
	}
	v, err = run(t, "-0x10 == -16", nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("-0x10 == -16 = %v, %v, want true", v, err)
	}
}

func TestShortCircuitNeverInvokesRightSide(t *testing.T) {
	table := &countingTable{}
	expr, err := parser.Parse("false && explode()")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := New(table).Eval(expr, NewEnv(nil))
	if err != nil || v.AsBool() {
		t.Fatalf("false && explode() = %v, %v, want false/nil", v, err)
	}
	if table.calls != 0 {
		t.Errorf("expected explode() never called, got %d calls", table.calls)
	}

	expr, err = parser.Parse("true || explode()")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err = New(table).Eval(expr, NewEnv(nil))
	if err != nil || !v.AsBool() {
		t.Fatalf("true || explode() = %v, %v, want true/nil", v, err)
	}
	if table.calls != 0 {
		t.Errorf("expected explode() never called, got %d calls", table.calls)
	}
}

// countingTable is a minimal function.Table used to prove short-circuited
// operands are never evaluated.
type countingTable struct {
	calls int
}

func (c *countingTable) Call(name string, args []value.Value) (value.Value, error) {
	c.calls++
	return value.Value{}, nil
}

func (c *countingTable) CallMethod(receiver value.Value, name string, args []value.Value) (value.Value, error) {
	c.calls++
	return value.Value{}, nil
}

func TestMacroHygieneRestoresOuterBinding(t *testing.T) {
	env := NewEnv(map[string]value.Value{"x": value.Int(99)})
	expr, err := parser.Parse("[1,2,3].map(x, x + 1)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := New(nil).Eval(expr, env); err != nil {
		t.Fatalf("eval: %v", err)
	}
	v, ok := env.lookup("x")
	if !ok || v.AsInt() != 99 {
		t.Fatalf("expected x restored to 99, got %v, %v", v, ok)
	}
}

func TestMacroHygieneRestoresOnError(t *testing.T) {
	env := NewEnv(map[string]value.Value{"x": value.String("outer")})
	expr, err := parser.Parse("[1,2].map(x, x.nonexistentField)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := New(nil).Eval(expr, env); err == nil {
		t.Fatalf("expected evaluation error")
	}
	v, ok := env.lookup("x")
	if !ok || v.AsString() != "outer" {
		t.Fatalf("expected x restored to \"outer\" even on error, got %v, %v", v, ok)
	}
}

func TestStructuralEquality(t *testing.T) {
	v, err := run(t, "[1, 2] == [1, 2]", nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("[1,2] == [1,2] = %v, %v, want true", v, err)
	}
	v, err = run(t, `{"a": 1, "b": 2} == {"b": 2, "a": 1}`, nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("map equality regardless of order = %v, %v, want true", v, err)
	}
}

func TestInOperator(t *testing.T) {
	v, err := run(t, "2 in [1, 2, 3]", nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("2 in [1,2,3] = %v, %v, want true", v, err)
	}
}
