// Package function defines the dispatch surface the evaluator calls
// through for every non-macro Call node, plus the standard library that
// backs it by default.
package function

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/libdbm/libcel/pkg/value"
)

// Table is the function-table contract: a global-call dispatch and a
// method-call dispatch. An embedder wanting custom functions implements
// Table itself, typically delegating unrecognised names to NewStandard().
type Table interface {
	Call(name string, args []value.Value) (value.Value, error)
	CallMethod(receiver value.Value, name string, args []value.Value) (value.Value, error)
}

// macroNames mirrors pkg/parser's list: the standard table refuses these
// names outright, because the evaluator is supposed to intercept a macro
// call before it ever reaches the function table.
var macroNames = map[string]bool{
	"map": true, "filter": true, "all": true, "exists": true, "existsOne": true,
}

// Standard is the default Table implementing CEL's built-in catalogue.
type Standard struct{}

// NewStandard returns the standard function table.
func NewStandard() *Standard { return &Standard{} }

func argErr(name string, want int, got int) error {
	return fmt.Errorf("%s: expected %d argument(s), got %d", name, want, got)
}

func kindErr(name string, v value.Value) error {
	return fmt.Errorf("%s: unsupported argument kind %s", name, v.Kind())
}

// Call dispatches a global function by name.
func (s *Standard) Call(name string, args []value.Value) (value.Value, error) {
	if macroNames[name] {
		return value.Value{}, fmt.Errorf("%s is a macro and must be intercepted by the evaluator, not dispatched", name)
	}
	switch name {
	case "size":
		return callSize(args)
	case "int":
		return callInt(args)
	case "uint":
		return callUint(args)
	case "double":
		return callDouble(args)
	case "string":
		return callString(args)
	case "bool":
		return callBool(args)
	case "type":
		return callType(args)
	case "has":
		return callHas(args)
	case "matches":
		return callMatches(args)
	case "max":
		return callFold(name, args, 1)
	case "min":
		return callFold(name, args, -1)
	case "timestamp", "duration", "getDate", "getMonth", "getFullYear",
		"getHours", "getMinutes", "getSeconds":
		return callDateTimePlaceholder(name, args)
	default:
		return value.Value{}, fmt.Errorf("unknown function %q", name)
	}
}

// CallMethod dispatches a method call on a receiver value.
func (s *Standard) CallMethod(receiver value.Value, name string, args []value.Value) (value.Value, error) {
	if macroNames[name] {
		return value.Value{}, fmt.Errorf("%s is a macro and must be intercepted by the evaluator, not dispatched", name)
	}
	switch name {
	case "size":
		return callSize(append([]value.Value{receiver}, args...))
	case "contains":
		return methodContains(receiver, args)
	case "startsWith":
		return methodStartsWith(receiver, args)
	case "endsWith":
		return methodEndsWith(receiver, args)
	case "toLowerCase":
		return methodToLowerCase(receiver, args)
	case "toUpperCase":
		return methodToUpperCase(receiver, args)
	case "trim":
		return methodTrim(receiver, args)
	case "replace":
		return methodReplace(receiver, args)
	case "split":
		return methodSplit(receiver, args)
	default:
		return value.Value{}, fmt.Errorf("unknown method %q on %s", name, receiver.Kind())
	}
}

func callSize(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("size", 1, len(args))
	}
	n, err := value.Size(args[0])
	if err != nil {
		return value.Value{}, err
	}
	return value.Int(int64(n)), nil
}

func callInt(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("int", 1, len(args))
	}
	v := args[0]
	switch v.Kind() {
	case value.KindInt:
		return v, nil
	case value.KindUint:
		return value.Int(int64(v.AsUint())), nil
	case value.KindDouble:
		return value.Int(int64(v.AsDouble())), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		i, err := cast.ToInt64E(v.AsString())
		if err != nil {
			return value.Value{}, fmt.Errorf("int: cannot parse %q as an integer", v.AsString())
		}
		return value.Int(i), nil
	default:
		return value.Value{}, kindErr("int", v)
	}
}

func callUint(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("uint", 1, len(args))
	}
	v := args[0]
	switch v.Kind() {
	case value.KindUint:
		return v, nil
	case value.KindInt:
		if v.AsInt() < 0 {
			return value.Value{}, fmt.Errorf("uint: cannot convert negative int %d", v.AsInt())
		}
		return value.Uint(uint64(v.AsInt())), nil
	case value.KindDouble:
		if v.AsDouble() < 0 {
			return value.Value{}, fmt.Errorf("uint: cannot convert negative double %v", v.AsDouble())
		}
		return value.Uint(uint64(v.AsDouble())), nil
	case value.KindBool:
		if v.AsBool() {
			return value.Uint(1), nil
		}
		return value.Uint(0), nil
	case value.KindString:
		u, err := cast.ToUint64E(v.AsString())
		if err != nil {
			return value.Value{}, fmt.Errorf("uint: cannot parse %q as an unsigned integer", v.AsString())
		}
		return value.Uint(u), nil
	default:
		return value.Value{}, kindErr("uint", v)
	}
}

func callDouble(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("double", 1, len(args))
	}
	v := args[0]
	switch v.Kind() {
	case value.KindDouble:
		return v, nil
	case value.KindInt, value.KindUint:
		return value.Double(v.Float()), nil
	case value.KindString:
		d, err := cast.ToFloat64E(v.AsString())
		if err != nil {
			return value.Value{}, fmt.Errorf("double: cannot parse %q as a double", v.AsString())
		}
		return value.Double(d), nil
	default:
		return value.Value{}, kindErr("double", v)
	}
}

func callString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("string", 1, len(args))
	}
	return value.String(value.ToDisplayString(args[0])), nil
}

func callBool(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("bool", 1, len(args))
	}
	v := args[0]
	if v.Kind() == value.KindBool {
		return v, nil
	}
	return value.Bool(v.Truthy()), nil
}

func callType(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("type", 1, len(args))
	}
	switch args[0].Kind() {
	case value.KindNull:
		return value.String("null"), nil
	case value.KindBool:
		return value.String("bool"), nil
	case value.KindInt:
		return value.String("int"), nil
	case value.KindUint:
		return value.String("uint"), nil
	case value.KindDouble:
		return value.String("double"), nil
	case value.KindString:
		return value.String("string"), nil
	case value.KindBytes:
		return value.String("bytes"), nil
	case value.KindList:
		return value.String("list"), nil
	case value.KindMap:
		return value.String("map"), nil
	default:
		return value.Value{}, fmt.Errorf("type: unrecognised kind")
	}
}

// callHas implements has(m, k): never errors, false on anything but "map
// containing key k".
func callHas(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, argErr("has", 2, len(args))
	}
	m := args[0]
	if m.Kind() != value.KindMap {
		return value.Bool(false), nil
	}
	_, ok := m.Lookup(args[1])
	return value.Bool(ok), nil
}

func callMatches(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, argErr("matches", 2, len(args))
	}
	if args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Value{}, kindErr("matches", args[0])
	}
	re, err := regexp.Compile(args[1].AsString())
	if err != nil {
		return value.Value{}, fmt.Errorf("matches: invalid pattern: %w", err)
	}
	return value.Bool(re.MatchString(args[0].AsString())), nil
}

// callFold implements max/min by folding value.Compare across args. sign is
// +1 for max (keep the larger), -1 for min (keep the smaller).
func callFold(name string, args []value.Value, sign int) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, argErr(name, 1, len(args))
	}
	best := args[0]
	for _, v := range args[1:] {
		c, err := value.Compare(v, best)
		if err != nil {
			return value.Value{}, fmt.Errorf("%s: %w", name, err)
		}
		if c*sign > 0 {
			best = v
		}
	}
	return best, nil
}

// callDateTimePlaceholder covers the date/time primitives the core spec
// treats as placeholders: constructing a timestamp/duration or asking a
// field of one. Full date/time semantics are out of scope for this core;
// these exist so expressions that mention them fail with a clear error
// rather than an unknown-function one.
func callDateTimePlaceholder(name string, _ []value.Value) (value.Value, error) {
	return value.Value{}, fmt.Errorf("%s: date/time primitives are not implemented in this core", name)
}

func methodContains(receiver value.Value, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Value{}, argErr("contains", 1, len(args))
	}
	switch receiver.Kind() {
	case value.KindString:
		if args[0].Kind() != value.KindString {
			return value.Value{}, kindErr("contains", args[0])
		}
		return value.Bool(strings.Contains(receiver.AsString(), args[0].AsString())), nil
	case value.KindList:
		found := lo.ContainsBy(receiver.AsList(), func(item value.Value) bool {
			return value.Equal(item, args[0])
		})
		return value.Bool(found), nil
	default:
		return value.Value{}, kindErr("contains", receiver)
	}
}

func methodStartsWith(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 1 || args[0].Kind() != value.KindString {
		return value.Value{}, kindErr("startsWith", receiver)
	}
	return value.Bool(strings.HasPrefix(receiver.AsString(), args[0].AsString())), nil
}

func methodEndsWith(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 1 || args[0].Kind() != value.KindString {
		return value.Value{}, kindErr("endsWith", receiver)
	}
	return value.Bool(strings.HasSuffix(receiver.AsString(), args[0].AsString())), nil
}

func methodToLowerCase(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 0 {
		return value.Value{}, kindErr("toLowerCase", receiver)
	}
	return value.String(strings.ToLower(receiver.AsString())), nil
}

func methodToUpperCase(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 0 {
		return value.Value{}, kindErr("toUpperCase", receiver)
	}
	return value.String(strings.ToUpper(receiver.AsString())), nil
}

func methodTrim(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 0 {
		return value.Value{}, kindErr("trim", receiver)
	}
	return value.String(strings.TrimSpace(receiver.AsString())), nil
}

func methodReplace(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 2 ||
		args[0].Kind() != value.KindString || args[1].Kind() != value.KindString {
		return value.Value{}, kindErr("replace", receiver)
	}
	return value.String(strings.ReplaceAll(receiver.AsString(), args[0].AsString(), args[1].AsString())), nil
}

func methodSplit(receiver value.Value, args []value.Value) (value.Value, error) {
	if receiver.Kind() != value.KindString || len(args) != 1 || args[0].Kind() != value.KindString {
		return value.Value{}, kindErr("split", receiver)
	}
	parts := strings.Split(receiver.AsString(), args[0].AsString())
	elems := make([]value.Value, len(parts))
	for i, p := range parts {
		elems[i] = value.String(p)
	}
	return value.List(elems), nil
}
