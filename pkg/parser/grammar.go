package parser

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// celLexer tokenises CEL source text, in the same stateful style the
// teacher's own pkg/parser used for its backtick template literals:
// Push/Pop states express "content runs until a delimiter run" without
// needing a lookahead-capable regex engine. CEL needs four such states —
// one per quote style — since the closing delimiter (one quote rune, or
// three in a row) differs between them.
var celLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Whitespace", `\s+`, nil},
		{"TDQOpen", `[rRbB]?"""`, lexer.Push("TDQ")},
		{"TSQOpen", `[rRbB]?'''`, lexer.Push("TSQ")},
		{"DQOpen", `[rRbB]?"`, lexer.Push("DQ")},
		{"SQOpen", `[rRbB]?'`, lexer.Push("SQ")},
		// Ordered longest-first: a dotted or exponent form is always a
		// double and never takes a u/U suffix (CEL has no unsigned
		// double), so those alternatives must be tried before the plain
		// integer form or Go's leftmost-first regexp match would stop
		// after the leading digits and strand the rest as a Dot token.
		{"Number", `0[xX][0-9a-fA-F]+[uU]?|[0-9]+\.[0-9]+(?:[eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+|[0-9]+[uU]?`, nil},
		{"True", `\btrue\b`, nil},
		{"False", `\bfalse\b`, nil},
		{"Null", `\bnull\b`, nil},
		{"In", `\bin\b`, nil},
		{"Reserved", `\b(as|break|const|continue|else|for|function|if|import|let|loop|package|namespace|return|var|void|while)\b`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Eq", `==`, nil},
		{"Ne", `!=`, nil},
		{"Le", `<=`, nil},
		{"Ge", `>=`, nil},
		{"AndAnd", `&&`, nil},
		{"OrOr", `\|\|`, nil},
		{"Plus", `\+`, nil},
		{"Minus", `-`, nil},
		{"Star", `\*`, nil},
		{"Slash", `/`, nil},
		{"Percent", `%`, nil},
		{"Not", `!`, nil},
		{"Lt", `<`, nil},
		{"Gt", `>`, nil},
		{"Question", `\?`, nil},
		{"Colon", `:`, nil},
		{"Dot", `\.`, nil},
		{"Comma", `,`, nil},
		{"LParen", `\(`, nil},
		{"RParen", `\)`, nil},
		{"LBrace", `\{`, nil},
		{"RBrace", `\}`, nil},
		{"LBracket", `\[`, nil},
		{"RBracket", `\]`, nil},
	},
	"TDQ": {
		{"TDQClose", `"""`, lexer.Pop()},
		{"TDQContent", `\\.|[^"\\]+|"`, nil},
	},
	"TSQ": {
		{"TSQClose", `'''`, lexer.Pop()},
		{"TSQContent", `\\.|[^'\\]+|'`, nil},
	},
	"DQ": {
		{"DQClose", `"`, lexer.Pop()},
		{"DQContent", `\\.|[^"\\\n]+`, nil},
	},
	"SQ": {
		{"SQClose", `'`, lexer.Pop()},
		{"SQContent", `\\.|[^'\\\n]+`, nil},
	},
})

// The grammar below is a struct-tag description of CEL's precedence chain
// (conditional → || → && → relational → additive → multiplicative → unary
// → postfix → primary), built the way the teacher drives participle: each
// level is a struct with a `Left` capture and a repeated `Rest` of
// operator/operand pairs, rather than a hand-written loop per level.

type conditionalExpr struct {
	Pos  lexer.Position
	Cond *orExpr      `@@`
	Tail *ternaryTail `@@?`
}

type ternaryTail struct {
	Then *conditionalExpr `"?" @@`
	Else *conditionalExpr `":" @@`
}

type orExpr struct {
	Pos  lexer.Position
	Left *andExpr `@@`
	Rest []*orRhs `@@*`
}

type orRhs struct {
	Right *andExpr `"||" @@`
}

type andExpr struct {
	Pos  lexer.Position
	Left *relExpr  `@@`
	Rest []*andRhs `@@*`
}

type andRhs struct {
	Right *relExpr `"&&" @@`
}

type relExpr struct {
	Pos  lexer.Position
	Left *addExpr  `@@`
	Rest []*relRhs `@@*`
}

type relRhs struct {
	Op    string   `@("=="|"!="|"<="|">="|"<"|">"|In)`
	Right *addExpr `@@`
}

type addExpr struct {
	Pos  lexer.Position
	Left *mulExpr  `@@`
	Rest []*addRhs `@@*`
}

type addRhs struct {
	Op    string   `@("+"|"-")`
	Right *mulExpr `@@`
}

type mulExpr struct {
	Pos  lexer.Position
	Left *unaryExpr `@@`
	Rest []*mulRhs  `@@*`
}

type mulRhs struct {
	Op    string     `@("*"|"/"|"%")`
	Right *unaryExpr `@@`
}

// unaryExpr collects every prefix !/- in source order; Postfix is the
// operand they apply to. `!!x` captures Ops = ["!", "!"].
type unaryExpr struct {
	Pos     lexer.Position
	Ops     []string     `@("!"|"-")*`
	Postfix *postfixExpr `@@`
}

// postfixExpr is a primary expression followed by any number of chained
// field selects, method/function calls, and index operations: a.b, a[i],
// a.b(x), a(x)[i].b.
type postfixExpr struct {
	Pos  lexer.Position
	Base *primaryExpr `@@`
	Ops  []*postfixOp `@@*`
}

type postfixOp struct {
	Select *selectOp `  @@`
	Index  *indexOp  `| @@`
}

type selectOp struct {
	Name string   `"." @Ident`
	Call *argList `@@?`
}

type indexOp struct {
	Index *conditionalExpr `"[" @@ "]"`
}

type argList struct {
	Args []*conditionalExpr `"(" (@@ ("," @@)* ","?)? ")"`
}

// primaryExpr is a union: exactly one of these fields is populated,
// depending on which alternative participle matched.
type primaryExpr struct {
	Pos             lexer.Position
	Number          string           `  @Number`
	Str             *stringLit       `| @@`
	True            bool             `| @True`
	False           bool             `| @False`
	Null            bool             `| @Null`
	Paren           *conditionalExpr `| "(" @@ ")"`
	List            *listLit         `| @@`
	Map             *mapLit          `| @@`
	LeadingDotIdent *dottedIdent     `| @@`
	Primary         *identPrimary    `| @@`
}

// stringLit unifies all four quote styles ("...", '...', """...""",
// '''...'''): Open carries the optional r/b prefix plus the opening
// delimiter, Content the raw (not yet escape-decoded) text between the
// delimiters, Close the matching end.
type stringLit struct {
	Pos     lexer.Position
	Open    string   `@(TDQOpen|TSQOpen|DQOpen|SQOpen)`
	Content []string `@(TDQContent|TSQContent|DQContent|SQContent)*`
	Close   string   `@(TDQClose|TSQClose|DQClose|SQClose)`
}

type listLit struct {
	Pos      lexer.Position
	Elements []*conditionalExpr `"[" (@@ ("," @@)* ","?)? "]"`
}

type mapEntry struct {
	Pos lexer.Position
	Key *conditionalExpr `@@`
	Val *conditionalExpr `":" @@`
}

type mapLit struct {
	Pos     lexer.Position
	Entries []*mapEntry `"{" (@@ ("," @@)* ","?)? "}"`
}

// dottedIdent is a leading-dot qualified identifier, e.g. .google.protobuf.Any.
type dottedIdent struct {
	Pos   lexer.Position
	Parts []string `"." @Ident ("." @Ident)*`
}

// identPrimary disambiguates a bare identifier from a function call (name
// directly followed by '(') and a struct literal (name directly followed
// by '{').
type identPrimary struct {
	Pos    lexer.Position
	Name   string     `@Ident`
	Call   *argList   `( @@`
	Struct *structLit `| @@ )?`
}

type structField struct {
	Pos  lexer.Position
	Name string           `@Ident`
	Val  *conditionalExpr `":" @@`
}

type structLit struct {
	Pos    lexer.Position
	Fields []*structField `"{" (@@ ("," @@)* ","?)? "}"`
}
