package parser

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/libdbm/libcel/pkg/ast"
	"github.com/libdbm/libcel/pkg/value"
)

// macroNames are the Call.Name values the transform flags as IsMacro when
// the argument shape matches (receiver method call, bare identifier loop
// variable, exactly two arguments).
var macroNames = map[string]bool{
	"map": true, "filter": true, "all": true, "exists": true, "existsOne": true,
}

func toPos(p lexer.Position) ast.Position {
	return ast.Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func toLexPos(p ast.Position) lexer.Position {
	return lexer.Position{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func toExpr(n *conditionalExpr) (ast.Expr, error) {
	cond, err := orToExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	if n.Tail == nil {
		return cond, nil
	}
	thenExpr, err := toExpr(n.Tail.Then)
	if err != nil {
		return nil, err
	}
	elseExpr, err := toExpr(n.Tail.Else)
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Position: toPos(n.Pos), Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}

func orToExpr(n *orExpr) (ast.Expr, error) {
	left, err := andToExpr(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := andToExpr(r.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Position: left.Pos(), Op: ast.OpLogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func andToExpr(n *andExpr) (ast.Expr, error) {
	left, err := relToExpr(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := relToExpr(r.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Position: left.Pos(), Op: ast.OpLogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

var relOpTable = map[string]ast.BinaryOp{
	"==": ast.OpEqual, "!=": ast.OpNotEqual,
	"<": ast.OpLess, "<=": ast.OpLessEqual,
	">": ast.OpGreater, ">=": ast.OpGreaterEqual,
	"in": ast.OpIn,
}

func relToExpr(n *relExpr) (ast.Expr, error) {
	left, err := addToExpr(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := addToExpr(r.Right)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Position: left.Pos(), Op: relOpTable[r.Op], Left: left, Right: right}
	}
	return left, nil
}

func addToExpr(n *addExpr) (ast.Expr, error) {
	left, err := mulToExpr(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := mulToExpr(r.Right)
		if err != nil {
			return nil, err
		}
		op := ast.OpAdd
		if r.Op == "-" {
			op = ast.OpSubtract
		}
		left = &ast.Binary{Position: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func mulToExpr(n *mulExpr) (ast.Expr, error) {
	left, err := unaryToExpr(n.Left)
	if err != nil {
		return nil, err
	}
	for _, r := range n.Rest {
		right, err := unaryToExpr(r.Right)
		if err != nil {
			return nil, err
		}
		var op ast.BinaryOp
		switch r.Op {
		case "*":
			op = ast.OpMultiply
		case "/":
			op = ast.OpDivide
		case "%":
			op = ast.OpModulo
		}
		left = &ast.Binary{Position: left.Pos(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

// unaryToExpr folds a run of prefix operators from innermost (closest to
// the operand) outward, so "!!x" becomes Unary(Not, Unary(Not, x)). A
// literal uint can never be negated — CEL has no negative uint literal.
func unaryToExpr(n *unaryExpr) (ast.Expr, error) {
	operand, err := postfixToExpr(n.Postfix)
	if err != nil {
		return nil, err
	}
	for i := len(n.Ops) - 1; i >= 0; i-- {
		start := toPos(n.Pos)
		if n.Ops[i] == "-" {
			if lit, ok := operand.(*ast.Literal); ok && lit.Kind == ast.LitUint {
				return nil, &Error{Pos: toLexPos(lit.Position), Msg: "cannot negate a uint literal"}
			}
			operand = &ast.Unary{Position: start, Op: ast.OpNegate, Operand: operand}
			continue
		}
		operand = &ast.Unary{Position: start, Op: ast.OpNot, Operand: operand}
	}
	return operand, nil
}

func postfixToExpr(n *postfixExpr) (ast.Expr, error) {
	expr, err := primaryToExpr(n.Base)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		start := expr.Pos()
		switch {
		case op.Select != nil:
			name := op.Select.Name
			if op.Select.Call != nil {
				args, err := argsToExprs(op.Select.Call)
				if err != nil {
					return nil, err
				}
				expr = &ast.Call{
					Position: start, Target: expr, Name: name, Args: args,
					IsMacro: macroNames[name] && len(args) == 2 && isBareIdent(args[0]),
				}
				continue
			}
			expr = &ast.Select{Position: start, Operand: expr, Field: name}
		case op.Index != nil:
			idx, err := toExpr(op.Index.Index)
			if err != nil {
				return nil, err
			}
			expr = &ast.Index{Position: start, Operand: expr, Index: idx}
		}
	}
	return expr, nil
}

func isBareIdent(e ast.Expr) bool {
	_, ok := e.(*ast.Identifier)
	return ok
}

func argsToExprs(a *argList) ([]ast.Expr, error) {
	var out []ast.Expr
	for _, arg := range a.Args {
		e, err := toExpr(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func primaryToExpr(n *primaryExpr) (ast.Expr, error) {
	start := toPos(n.Pos)
	switch {
	case n.Number != "":
		return numberToLiteral(start, n.Number)
	case n.Str != nil:
		return stringToLiteral(start, n.Str)
	case n.True:
		return &ast.Literal{Position: start, Value: value.Bool(true), Kind: ast.LitBool}, nil
	case n.False:
		return &ast.Literal{Position: start, Value: value.Bool(false), Kind: ast.LitBool}, nil
	case n.Null:
		return &ast.Literal{Position: start, Value: value.Null, Kind: ast.LitNull}, nil
	case n.Paren != nil:
		return toExpr(n.Paren)
	case n.List != nil:
		return listToExpr(start, n.List)
	case n.Map != nil:
		return mapToExpr(start, n.Map)
	case n.LeadingDotIdent != nil:
		return &ast.Identifier{Position: start, Name: strings.Join(n.LeadingDotIdent.Parts, ".")}, nil
	case n.Primary != nil:
		return identPrimaryToExpr(start, n.Primary)
	}
	return nil, &Error{Pos: n.Pos, Msg: "empty primary expression"}
}

func identPrimaryToExpr(start ast.Position, n *identPrimary) (ast.Expr, error) {
	switch {
	case n.Call != nil:
		args, err := argsToExprs(n.Call)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Position: start, Target: nil, Name: n.Name, Args: args}, nil
	case n.Struct != nil:
		return structToExpr(start, n.Name, n.Struct)
	default:
		return &ast.Identifier{Position: start, Name: n.Name}, nil
	}
}

func listToExpr(start ast.Position, n *listLit) (ast.Expr, error) {
	var elems []ast.Expr
	for _, el := range n.Elements {
		e, err := toExpr(el)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &ast.List{Position: start, Elements: elems}, nil
}

func mapToExpr(start ast.Position, n *mapLit) (ast.Expr, error) {
	var entries []ast.MapEntry
	for _, e := range n.Entries {
		key, err := toExpr(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := toExpr(e.Val)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: key, Val: val})
	}
	return &ast.Map{Position: start, Entries: entries}, nil
}

func structToExpr(start ast.Position, typeName string, n *structLit) (ast.Expr, error) {
	var fields []ast.StructField
	for _, f := range n.Fields {
		val, err := toExpr(f.Val)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Name: f.Name, Val: val})
	}
	return &ast.Struct{Position: start, Type: typeName, Fields: fields}, nil
}

// numberToLiteral classifies a Number token's text into int, uint, or
// double, mirroring the precedence the old hand-written scanner used: a
// 0x/0X prefix is always hex (optionally unsigned), otherwise a '.' or
// exponent marks a double, and a trailing u/U marks an unsigned decimal.
func numberToLiteral(start ast.Position, text string) (ast.Expr, error) {
	if len(text) > 1 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		digits := text[2:]
		unsigned := false
		if len(digits) > 0 && (digits[len(digits)-1] == 'u' || digits[len(digits)-1] == 'U') {
			unsigned = true
			digits = digits[:len(digits)-1]
		}
		u, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return nil, &Error{Pos: toLexPos(start), Msg: "malformed hex literal: " + text}
		}
		if unsigned {
			return &ast.Literal{Position: start, Value: value.Uint(u), Kind: ast.LitUint}, nil
		}
		return &ast.Literal{Position: start, Value: value.Int(int64(u)), Kind: ast.LitInt}, nil
	}

	if strings.ContainsAny(text, ".eE") {
		d, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, &Error{Pos: toLexPos(start), Msg: "malformed double literal: " + text}
		}
		return &ast.Literal{Position: start, Value: value.Double(d), Kind: ast.LitDouble}, nil
	}

	if text[len(text)-1] == 'u' || text[len(text)-1] == 'U' {
		digits := text[:len(text)-1]
		u, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, &Error{Pos: toLexPos(start), Msg: "malformed uint literal: " + text}
		}
		return &ast.Literal{Position: start, Value: value.Uint(u), Kind: ast.LitUint}, nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &Error{Pos: toLexPos(start), Msg: "malformed integer literal: " + text}
	}
	return &ast.Literal{Position: start, Value: value.Int(i), Kind: ast.LitInt}, nil
}

// stringToLiteral decodes a stringLit's raw Content tokens, which are the
// exact source substring between the delimiters (participle's stateful
// lexer reconstructs it without stripping anything). Open carries the
// optional r/b prefix, which selects raw vs escaped decoding and
// string-vs-bytes result kind.
func stringToLiteral(start ast.Position, n *stringLit) (ast.Expr, error) {
	prefix := byte(0)
	if len(n.Open) > 0 && (n.Open[0] == 'r' || n.Open[0] == 'R' || n.Open[0] == 'b' || n.Open[0] == 'B') {
		prefix = n.Open[0]
	}
	isRaw := prefix == 'r' || prefix == 'R'
	isBytes := prefix == 'b' || prefix == 'B'

	raw := strings.Join(n.Content, "")
	decoded, err := decodeContent(raw, isRaw, isBytes)
	if err != nil {
		return nil, &Error{Pos: toLexPos(start), Msg: err.Error()}
	}

	if isBytes {
		return &ast.Literal{Position: start, Value: value.BytesString(decoded), Kind: ast.LitBytes}, nil
	}
	return &ast.Literal{Position: start, Value: value.String(decoded), Kind: ast.LitString}, nil
}

type decodeError struct{ msg string }

func (e *decodeError) Error() string { return e.msg }

// decodeContent walks raw source text between quote delimiters, expanding
// backslash escapes unless isRaw (in which case backslashes are kept
// literal, exactly as the hand-written scanner's raw mode did: it writes
// the backslash itself and lets the following rune be written verbatim on
// the next iteration).
func decodeContent(raw string, isRaw, isBytes bool) (string, error) {
	var buf strings.Builder
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch != '\\' {
			buf.WriteRune(ch)
			i++
			continue
		}
		if isRaw {
			buf.WriteRune(ch)
			i++
			continue
		}
		i++
		if i >= len(runes) {
			return "", &decodeError{"unterminated escape sequence"}
		}
		n, err := decodeEscape(runes, i, &buf, isBytes)
		if err != nil {
			return "", err
		}
		i = n
	}
	return buf.String(), nil
}

// decodeEscape consumes the escape body starting at runes[i] (the
// character right after the backslash) and returns the index just past it.
func decodeEscape(runes []rune, i int, buf *strings.Builder, isBytes bool) (int, error) {
	c := runes[i]
	i++
	switch c {
	case '\\':
		buf.WriteByte('\\')
	case '"':
		buf.WriteByte('"')
	case '\'':
		buf.WriteByte('\'')
	case '`':
		buf.WriteByte('`')
	case '?':
		buf.WriteByte('?')
	case 'a':
		buf.WriteByte(0x07)
	case 'b':
		buf.WriteByte(0x08)
	case 'f':
		buf.WriteByte(0x0C)
	case 'n':
		buf.WriteByte(0x0A)
	case 'r':
		buf.WriteByte(0x0D)
	case 't':
		buf.WriteByte(0x09)
	case 'v':
		buf.WriteByte(0x0B)
	case 'x', 'X':
		hex, next, err := takeHex(runes, i, 2)
		if err != nil {
			return 0, err
		}
		v, _ := strconv.ParseUint(hex, 16, 16)
		if isBytes {
			buf.WriteByte(byte(v))
		} else {
			buf.WriteRune(rune(v))
		}
		i = next
	case 'u':
		hex, next, err := takeHex(runes, i, 4)
		if err != nil {
			return 0, err
		}
		v, _ := strconv.ParseUint(hex, 16, 32)
		buf.WriteRune(rune(v))
		i = next
	case 'U':
		hex, next, err := takeHex(runes, i, 8)
		if err != nil {
			return 0, err
		}
		v, _ := strconv.ParseUint(hex, 16, 32)
		buf.WriteRune(rune(v))
		i = next
	case '0', '1', '2', '3':
		if i >= len(runes) || !isOctalDigit(runes[i]) {
			return 0, &decodeError{"malformed octal escape sequence"}
		}
		d2 := runes[i]
		i++
		if i >= len(runes) || !isOctalDigit(runes[i]) {
			return 0, &decodeError{"malformed octal escape sequence"}
		}
		d3 := runes[i]
		i++
		val := (c-'0')*64 + (d2-'0')*8 + (d3 - '0')
		if isBytes {
			buf.WriteByte(byte(val))
		} else {
			buf.WriteRune(val)
		}
	default:
		return 0, &decodeError{"unknown escape sequence '\\" + string(c) + "'"}
	}
	return i, nil
}

func isOctalDigit(ch rune) bool { return ch >= '0' && ch <= '7' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func takeHex(runes []rune, i, n int) (string, int, error) {
	if i+n > len(runes) {
		return "", 0, &decodeError{"malformed hex escape sequence, expected " + strconv.Itoa(n) + " hex digits"}
	}
	for _, r := range runes[i : i+n] {
		if !isHexDigit(r) {
			return "", 0, &decodeError{"malformed hex escape sequence, expected " + strconv.Itoa(n) + " hex digits"}
		}
	}
	return string(runes[i : i+n]), i + n, nil
}
