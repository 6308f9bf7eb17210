// Package eval implements the tree-walking evaluator: a straight type
// switch over pkg/ast nodes against a binding Env and a function.Table,
// with no double dispatch through the Visitor pattern (pkg/ast.Visitor
// exists for printers and analyzers, not for this walk).
package eval

import (
	"fmt"
	"strings"

	"github.com/libdbm/libcel/pkg/ast"
	"github.com/libdbm/libcel/pkg/function"
	"github.com/libdbm/libcel/pkg/value"
)

// Error is an evaluation-time failure: undefined identifier, unknown
// function, wrong argument kind or arity, division by zero, an
// out-of-bounds index, a missing map key, an operator type mismatch, a
// non-list macro receiver, or a malformed macro argument.
type Error struct {
	Pos ast.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func errAt(pos ast.Position, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Evaluator walks an AST against an Env and a function.Table.
type Evaluator struct {
	Table function.Table
}

// New builds an Evaluator. A nil table defaults to the standard library.
func New(table function.Table) *Evaluator {
	if table == nil {
		table = function.NewStandard()
	}
	return &Evaluator{Table: table}
}

// Eval evaluates expr against env, returning its value or an *Error.
func (ev *Evaluator) Eval(expr ast.Expr, env *Env) (value.Value, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Identifier:
		v, ok := env.lookup(n.Name)
		if !ok {
			return value.Value{}, errAt(n.Position, "undefined variable %q", n.Name)
		}
		return v, nil
	case *ast.Select:
		return ev.evalSelect(n, env)
	case *ast.Index:
		return ev.evalIndex(n, env)
	case *ast.Unary:
		return ev.evalUnary(n, env)
	case *ast.Binary:
		return ev.evalBinary(n, env)
	case *ast.Conditional:
		return ev.evalConditional(n, env)
	case *ast.List:
		return ev.evalList(n, env)
	case *ast.Map:
		return ev.evalMap(n, env)
	case *ast.Struct:
		return ev.evalStruct(n, env)
	case *ast.Call:
		return ev.evalCall(n, env)
	default:
		return value.Value{}, errAt(expr.Pos(), "unsupported expression node %T", expr)
	}
}

func (ev *Evaluator) evalSelect(n *ast.Select, env *Env) (value.Value, error) {
	operand, err := ev.Eval(n.Operand, env)
	if err != nil {
		return value.Value{}, err
	}
	switch operand.Kind() {
	case value.KindMap:
		v, ok := operand.Lookup(value.String(n.Field))
		if !ok {
			if n.IsTest {
				return value.Bool(false), nil
			}
			return value.Value{}, errAt(n.Position, "no such key %q", n.Field)
		}
		return v, nil
	case value.KindNull:
		if n.IsTest {
			return value.Bool(false), nil
		}
		return value.Value{}, errAt(n.Position, "cannot select field %q of null", n.Field)
	default:
		return value.Value{}, errAt(n.Position, "cannot select field %q of a %s", n.Field, operand.Kind())
	}
}

func (ev *Evaluator) evalIndex(n *ast.Index, env *Env) (value.Value, error) {
	operand, err := ev.Eval(n.Operand, env)
	if err != nil {
		return value.Value{}, err
	}
	idx, err := ev.Eval(n.Index, env)
	if err != nil {
		return value.Value{}, err
	}
	switch operand.Kind() {
	case value.KindList:
		i, err := requireIndex(n.Position, idx)
		if err != nil {
			return value.Value{}, err
		}
		list := operand.AsList()
		if i < 0 || i >= len(list) {
			return value.Value{}, errAt(n.Position, "list index %d out of bounds (length %d)", i, len(list))
		}
		return list[i], nil
	case value.KindMap:
		v, ok := operand.Lookup(idx)
		if !ok {
			return value.Value{}, errAt(n.Position, "no such key %s in map", value.ToDisplayString(idx))
		}
		return v, nil
	case value.KindString:
		i, err := requireIndex(n.Position, idx)
		if err != nil {
			return value.Value{}, err
		}
		s, ok := value.Utf16At(operand.AsString(), i)
		if !ok {
			return value.Value{}, errAt(n.Position, "string index %d out of bounds", i)
		}
		return value.String(s), nil
	case value.KindNull:
		return value.Value{}, errAt(n.Position, "cannot index null")
	default:
		return value.Value{}, errAt(n.Position, "cannot index a %s", operand.Kind())
	}
}

func requireIndex(pos ast.Position, idx value.Value) (int, error) {
	if idx.Kind() != value.KindInt {
		return 0, errAt(pos, "index must be an int, got %s", idx.Kind())
	}
	return int(idx.AsInt()), nil
}

func (ev *Evaluator) evalUnary(n *ast.Unary, env *Env) (value.Value, error) {
	operand, err := ev.Eval(n.Operand, env)
	if err != nil {
		return value.Value{}, err
	}
	switch n.Op {
	case ast.OpNot:
		if operand.Kind() != value.KindBool {
			return value.Value{}, errAt(n.Position, "! requires bool, got %s", operand.Kind())
		}
		return value.Bool(!operand.AsBool()), nil
	case ast.OpNegate:
		switch operand.Kind() {
		case value.KindInt:
			return value.Int(-operand.AsInt()), nil
		case value.KindDouble:
			return value.Double(-operand.AsDouble()), nil
		default:
			return value.Value{}, errAt(n.Position, "- requires a number, got %s", operand.Kind())
		}
	default:
		return value.Value{}, errAt(n.Position, "unknown unary operator")
	}
}

func (ev *Evaluator) evalConditional(n *ast.Conditional, env *Env) (value.Value, error) {
	cond, err := ev.Eval(n.Cond, env)
	if err != nil {
		return value.Value{}, err
	}
	if cond.Kind() != value.KindBool {
		return value.Value{}, errAt(n.Position, "condition must be bool, got %s", cond.Kind())
	}
	if cond.AsBool() {
		return ev.Eval(n.Then, env)
	}
	return ev.Eval(n.Else, env)
}

func (ev *Evaluator) evalList(n *ast.List, env *Env) (value.Value, error) {
	elems := make([]value.Value, len(n.Elements))
	for i, e := range n.Elements {
		v, err := ev.Eval(e, env)
		if err != nil {
			return value.Value{}, err
		}
		elems[i] = v
	}
	return value.List(elems), nil
}

func (ev *Evaluator) evalMap(n *ast.Map, env *Env) (value.Value, error) {
	entries := make([]value.Entry, len(n.Entries))
	for i, e := range n.Entries {
		k, err := ev.Eval(e.Key, env)
		if err != nil {
			return value.Value{}, err
		}
		v, err := ev.Eval(e.Val, env)
		if err != nil {
			return value.Value{}, err
		}
		entries[i] = value.Entry{Key: k, Val: v}
	}
	return value.Map(entries), nil
}

// evalStruct evaluates a `Type{field: expr, ...}` literal. This core has no
// message-type registry, so it produces a plain map keyed by field name;
// Struct.Type is preserved on the AST for diagnostics only.
func (ev *Evaluator) evalStruct(n *ast.Struct, env *Env) (value.Value, error) {
	entries := make([]value.Entry, len(n.Fields))
	for i, f := range n.Fields {
		v, err := ev.Eval(f.Val, env)
		if err != nil {
			return value.Value{}, err
		}
		entries[i] = value.Entry{Key: value.String(f.Name), Val: v}
	}
	return value.Map(entries), nil
}

func (ev *Evaluator) evalCall(n *ast.Call, env *Env) (value.Value, error) {
	if n.IsMacro {
		return ev.evalMacro(n, env)
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	if n.Target == nil {
		v, err := ev.Table.Call(n.Name, args)
		if err != nil {
			return value.Value{}, errAt(n.Position, "%s", err)
		}
		return v, nil
	}

	receiver, err := ev.Eval(n.Target, env)
	if err != nil {
		return value.Value{}, err
	}
	v, err := ev.Table.CallMethod(receiver, n.Name, args)
	if err != nil {
		return value.Value{}, errAt(n.Position, "%s", err)
	}
	return v, nil
}

// evalMacro implements the five list-comprehension macros. Arguments are
// never evaluated by evalCall's normal left-to-right walk: the first arg is
// the iteration variable name (captured, not evaluated), and the second is
// a sub-expression re-evaluated once per element with that name transiently
// bound. Binding is restored on every exit path, success or error.
func (ev *Evaluator) evalMacro(n *ast.Call, env *Env) (value.Value, error) {
	receiver, err := ev.Eval(n.Target, env)
	if err != nil {
		return value.Value{}, err
	}
	if receiver.Kind() != value.KindList {
		return value.Value{}, errAt(n.Position, "%s: receiver must be a list, got %s", n.Name, receiver.Kind())
	}

	iterVar, ok := n.Args[0].(*ast.Identifier)
	if !ok {
		return value.Value{}, errAt(n.Position, "%s: first argument must be a bare identifier", n.Name)
	}
	body := n.Args[1]
	elements := receiver.AsList()

	switch n.Name {
	case "map":
		out := make([]value.Value, len(elements))
		for i, elem := range elements {
			v, err := ev.evalMacroBody(iterVar.Name, elem, body, env)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = v
		}
		return value.List(out), nil

	case "filter":
		var out []value.Value
		for _, elem := range elements {
			v, err := ev.evalMacroBody(iterVar.Name, elem, body, env)
			if err != nil {
				return value.Value{}, err
			}
			if v.Kind() == value.KindBool && v.AsBool() {
				out = append(out, elem)
			}
		}
		return value.List(out), nil

	case "all":
		for _, elem := range elements {
			v, err := ev.evalMacroBody(iterVar.Name, elem, body, env)
			if err != nil {
				return value.Value{}, err
			}
			if !(v.Kind() == value.KindBool && v.AsBool()) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil

	case "exists":
		for _, elem := range elements {
			v, err := ev.evalMacroBody(iterVar.Name, elem, body, env)
			if err != nil {
				return value.Value{}, err
			}
			if v.Kind() == value.KindBool && v.AsBool() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil

	case "existsOne":
		count := 0
		for _, elem := range elements {
			v, err := ev.evalMacroBody(iterVar.Name, elem, body, env)
			if err != nil {
				return value.Value{}, err
			}
			if v.Kind() == value.KindBool && v.AsBool() {
				count++
				if count > 1 {
					return value.Bool(false), nil
				}
			}
		}
		return value.Bool(count == 1), nil

	default:
		return value.Value{}, errAt(n.Position, "unknown macro %q", n.Name)
	}
}

// evalMacroBody binds name to elem for the duration of evaluating body,
// restoring whatever was previously bound (or clearing the name) before
// returning, on both the success and the error path.
func (ev *Evaluator) evalMacroBody(name string, elem value.Value, body ast.Expr, env *Env) (value.Value, error) {
	s := env.shadow(name, elem)
	defer env.restore(s)
	return ev.Eval(body, env)
}

func (ev *Evaluator) evalBinary(n *ast.Binary, env *Env) (value.Value, error) {
	switch n.Op {
	case ast.OpLogicalAnd:
		return ev.evalLogicalAnd(n, env)
	case ast.OpLogicalOr:
		return ev.evalLogicalOr(n, env)
	}

	left, err := ev.Eval(n.Left, env)
	if err != nil {
		return value.Value{}, err
	}
	right, err := ev.Eval(n.Right, env)
	if err != nil {
		return value.Value{}, err
	}

	switch n.Op {
	case ast.OpAdd:
		return evalAdd(n.Position, left, right)
	case ast.OpSubtract:
		return evalArithmetic(n.Position, "-", left, right, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case ast.OpMultiply:
		return evalMultiply(n.Position, left, right)
	case ast.OpDivide:
		return evalDivide(n.Position, left, right)
	case ast.OpModulo:
		return evalModulo(n.Position, left, right)
	case ast.OpEqual:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNotEqual:
		return value.Bool(!value.Equal(left, right)), nil
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		return evalOrdering(n.Position, n.Op, left, right)
	case ast.OpIn:
		return evalIn(n.Position, left, right)
	default:
		return value.Value{}, errAt(n.Position, "unknown binary operator")
	}
}

func (ev *Evaluator) evalLogicalAnd(n *ast.Binary, env *Env) (value.Value, error) {
	left, err := ev.Eval(n.Left, env)
	if err != nil {
		return value.Value{}, err
	}
	if left.Kind() != value.KindBool {
		return value.Value{}, errAt(n.Position, "&& requires bool operands, left was %s", left.Kind())
	}
	if !left.AsBool() {
		return value.Bool(false), nil
	}
	right, err := ev.Eval(n.Right, env)
	if err != nil {
		return value.Value{}, err
	}
	if right.Kind() != value.KindBool {
		return value.Value{}, errAt(n.Position, "&& requires bool operands, right was %s", right.Kind())
	}
	return right, nil
}

func (ev *Evaluator) evalLogicalOr(n *ast.Binary, env *Env) (value.Value, error) {
	left, err := ev.Eval(n.Left, env)
	if err != nil {
		return value.Value{}, err
	}
	if left.Kind() != value.KindBool {
		return value.Value{}, errAt(n.Position, "|| requires bool operands, left was %s", left.Kind())
	}
	if left.AsBool() {
		return value.Bool(true), nil
	}
	right, err := ev.Eval(n.Right, env)
	if err != nil {
		return value.Value{}, err
	}
	if right.Kind() != value.KindBool {
		return value.Value{}, errAt(n.Position, "|| requires bool operands, right was %s", right.Kind())
	}
	return right, nil
}

// evalAdd implements `+`: numeric addition, list concatenation, and string
// concatenation (the non-string side is stringified) when either side is a
// string.
func evalAdd(pos ast.Position, left, right value.Value) (value.Value, error) {
	if left.IsNumeric() && right.IsNumeric() {
		return evalArithmetic(pos, "+", left, right, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
	}
	if left.Kind() == value.KindList && right.Kind() == value.KindList {
		return value.List(append(append([]value.Value{}, left.AsList()...), right.AsList()...)), nil
	}
	if left.Kind() == value.KindString || right.Kind() == value.KindString {
		return value.String(value.ToDisplayString(left) + value.ToDisplayString(right)), nil
	}
	return value.Value{}, errAt(pos, "+ is undefined for %s and %s", left.Kind(), right.Kind())
}

// evalArithmetic implements numeric +, -, *: both numeric, widening to double when
// either operand is a double, otherwise matching int/uint kinds.
func evalArithmetic(pos ast.Position, op string, left, right value.Value, intOp func(a, b int64) int64, floatOp func(a, b float64) float64) (value.Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return value.Value{}, errAt(pos, "%s requires numeric operands, got %s and %s", op, left.Kind(), right.Kind())
	}
	if left.Kind() == value.KindDouble || right.Kind() == value.KindDouble {
		return value.Double(floatOp(left.Float(), right.Float())), nil
	}
	if left.Kind() == value.KindUint && right.Kind() == value.KindUint {
		return value.Uint(uint64(intOp(int64(left.AsUint()), int64(right.AsUint())))), nil
	}
	return value.Int(intOp(left.AsInt(), right.AsInt())), nil
}

// evalMultiply implements `*`: numeric multiplication, plus string/list
// repetition by a non-negative integer count.
func evalMultiply(pos ast.Position, left, right value.Value) (value.Value, error) {
	if left.IsNumeric() && right.IsNumeric() {
		return evalArithmetic(pos, "*", left, right, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
	}
	if left.Kind() == value.KindString && isNonNegativeInt(right) {
		return value.String(strings.Repeat(left.AsString(), int(right.AsInt()))), nil
	}
	if left.Kind() == value.KindList && isNonNegativeInt(right) {
		return value.List(repeatList(left.AsList(), int(right.AsInt()))), nil
	}
	return value.Value{}, errAt(pos, "* is undefined for %s and %s", left.Kind(), right.Kind())
}

func isNonNegativeInt(v value.Value) bool {
	return v.Kind() == value.KindInt && v.AsInt() >= 0
}

func repeatList(list []value.Value, n int) []value.Value {
	out := make([]value.Value, 0, len(list)*n)
	for i := 0; i < n; i++ {
		out = append(out, list...)
	}
	return out
}

// evalDivide implements `/`: always produces a double, even for two ints —
// this core's division never truncates, matching the system it was ported
// from.
func evalDivide(pos ast.Position, left, right value.Value) (value.Value, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return value.Value{}, errAt(pos, "/ requires numeric operands, got %s and %s", left.Kind(), right.Kind())
	}
	if right.Float() == 0 {
		return value.Value{}, errAt(pos, "division by zero")
	}
	return value.Double(left.Float() / right.Float()), nil
}

// evalModulo implements `%`: integer modulo only.
func evalModulo(pos ast.Position, left, right value.Value) (value.Value, error) {
	switch {
	case left.Kind() == value.KindInt && right.Kind() == value.KindInt:
		if right.AsInt() == 0 {
			return value.Value{}, errAt(pos, "modulo by zero")
		}
		return value.Int(left.AsInt() % right.AsInt()), nil
	case left.Kind() == value.KindUint && right.Kind() == value.KindUint:
		if right.AsUint() == 0 {
			return value.Value{}, errAt(pos, "modulo by zero")
		}
		return value.Uint(left.AsUint() % right.AsUint()), nil
	default:
		return value.Value{}, errAt(pos, "%% requires integer operands, got %s and %s", left.Kind(), right.Kind())
	}
}

func evalOrdering(pos ast.Position, op ast.BinaryOp, left, right value.Value) (value.Value, error) {
	c, err := value.Compare(left, right)
	if err != nil {
		return value.Value{}, errAt(pos, "%s", err)
	}
	switch op {
	case ast.OpLess:
		return value.Bool(c < 0), nil
	case ast.OpLessEqual:
		return value.Bool(c <= 0), nil
	case ast.OpGreater:
		return value.Bool(c > 0), nil
	case ast.OpGreaterEqual:
		return value.Bool(c >= 0), nil
	default:
		return value.Value{}, errAt(pos, "unknown ordering operator")
	}
}

// evalIn implements `in`: list membership by structural equality, map key
// presence, or string substring search.
func evalIn(pos ast.Position, left, right value.Value) (value.Value, error) {
	switch right.Kind() {
	case value.KindList:
		for _, elem := range right.AsList() {
			if value.Equal(elem, left) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.KindMap:
		_, ok := right.Lookup(left)
		return value.Bool(ok), nil
	case value.KindString:
		if left.Kind() != value.KindString {
			return value.Value{}, errAt(pos, "in: left operand must be a string when searching a string")
		}
		return value.Bool(strings.Contains(right.AsString(), left.AsString())), nil
	default:
		return value.Value{}, errAt(pos, "in: right operand must be a list, map, or string, got %s", right.Kind())
	}
}
