// Package ast defines the Abstract Syntax Tree produced by the CEL parser.
//
// The node set is closed: every expression the parser can produce is one of
// the types declared below. Nodes are plain data, created once by the parser
// and never mutated afterwards — a compiled program can share its AST across
// any number of concurrent evaluations.
package ast

import "github.com/libdbm/libcel/pkg/value"

// Position records where in the source text a node began, for error messages.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based
}

// Expr is implemented by every AST node.
type Expr interface {
	Pos() Position
	Accept(v Visitor) interface{}
	exprNode()
}

// LiteralKind distinguishes how a Literal's value was spelled in source,
// which the evaluator does not need but printers and analyzers find useful.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitUint
	LitDouble
	LitString
	LitBytes
)

// Value is an alias so the ast package does not need its own copy of the
// dynamic value representation; literals evaluate to exactly this.
type Value = value.Value

// Literal is a constant baked in by the parser.
type Literal struct {
	Position
	Value Value
	Kind  LiteralKind
}

// Identifier is a bare name reference, resolved against the binding
// environment at evaluation time.
type Identifier struct {
	Position
	Name string
}

// Select is field/member access: Operand.Field.
//
// IsTest marks a has()-style membership test: missing fields return false
// instead of erroring.
type Select struct {
	Position
	Operand Expr
	Field   string
	IsTest  bool
}

// Call is a function or method invocation. Target is nil for a global
// function call (`size(x)`); non-nil for a method call (`x.size()`).
//
// IsMacro is set by the parser when Name is one of the recognised macro
// names (map, filter, all, exists, existsOne), Target is non-nil, and there
// are exactly two arguments of which the first is a bare identifier — the
// evaluator special-cases these rather than dispatching through the
// function table, per the macro argument-capture rules. A macro-named call
// of any other shape is left unflagged and goes to the function table.
type Call struct {
	Position
	Target  Expr // receiver, nil for a plain function call
	Name    string
	Args    []Expr
	IsMacro bool
}

// List is a list literal; elements are evaluated left to right.
type List struct {
	Position
	Elements []Expr
}

// MapEntry is one key:value pair of a map literal.
type MapEntry struct {
	Key Expr
	Val Expr
}

// Map is a map literal.
type Map struct {
	Position
	Entries []MapEntry
}

// StructField is one field:value initializer of a struct literal.
type StructField struct {
	Name string
	Val  Expr
}

// Struct is a `Type{field: expr, ...}` literal. This core has no
// message-type registry, so it evaluates to a map keyed by field name;
// Type is carried through for diagnostics and printers only.
type Struct struct {
	Position
	Type   string
	Fields []StructField
}

// UnaryOp enumerates the two unary operators.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
)

// Unary is a prefix `!` or `-` application; chained unary operators are
// nested Unary nodes, so `!!x` parses as Unary(Not, Unary(Not, x)).
type Unary struct {
	Position
	Op      UnaryOp
	Operand Expr
}

// BinaryOp enumerates every binary operator CEL recognises.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpLogicalAnd
	OpLogicalOr
	OpIn
)

// Binary is a two-operand operator application.
type Binary struct {
	Position
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Conditional is the ternary `cond ? then : else`.
type Conditional struct {
	Position
	Cond Expr
	Then Expr
	Else Expr
}

// Index is `operand[index]`, used for list, map, and string subscripting.
type Index struct {
	Position
	Operand Expr
	Index   Expr
}

// Comprehension is the desugared shape of a list-comprehension macro.
// Nothing in the parser builds this directly (see Call.IsMacro); printers
// and analyzers that want to describe a macro in its expanded form convert
// a Call to this shape, so the field names mirror the spec's vocabulary.
type Comprehension struct {
	Position
	IterVar   string
	IterRange Expr
	AccuVar   string
	AccuInit  Expr
	LoopCond  Expr
	LoopStep  Expr
	Result    Expr
}

func (n *Literal) exprNode()       {}
func (n *Identifier) exprNode()    {}
func (n *Select) exprNode()        {}
func (n *Call) exprNode()          {}
func (n *List) exprNode()          {}
func (n *Map) exprNode()           {}
func (n *Struct) exprNode()        {}
func (n *Unary) exprNode()         {}
func (n *Binary) exprNode()        {}
func (n *Conditional) exprNode()   {}
func (n *Index) exprNode()         {}
func (n *Comprehension) exprNode() {}

func (n *Literal) Pos() Position       { return n.Position }
func (n *Identifier) Pos() Position    { return n.Position }
func (n *Select) Pos() Position        { return n.Position }
func (n *Call) Pos() Position          { return n.Position }
func (n *List) Pos() Position          { return n.Position }
func (n *Map) Pos() Position           { return n.Position }
func (n *Struct) Pos() Position        { return n.Position }
func (n *Unary) Pos() Position         { return n.Position }
func (n *Binary) Pos() Position        { return n.Position }
func (n *Conditional) Pos() Position   { return n.Position }
func (n *Index) Pos() Position         { return n.Position }
func (n *Comprehension) Pos() Position { return n.Position }

// Accept methods wire each node into the Visitor pattern used by the debug
// printer and semantic analyzer (see pkg/visitors). The evaluator itself
// does NOT use this double dispatch — it switches on node type directly,
// which is both faster and easier to follow for a straight tree walk.
func (n *Literal) Accept(v Visitor) interface{}       { return v.VisitLiteral(n) }
func (n *Identifier) Accept(v Visitor) interface{}    { return v.VisitIdentifier(n) }
func (n *Select) Accept(v Visitor) interface{}        { return v.VisitSelect(n) }
func (n *Call) Accept(v Visitor) interface{}          { return v.VisitCall(n) }
func (n *List) Accept(v Visitor) interface{}          { return v.VisitList(n) }
func (n *Map) Accept(v Visitor) interface{}           { return v.VisitMap(n) }
func (n *Struct) Accept(v Visitor) interface{}        { return v.VisitStruct(n) }
func (n *Unary) Accept(v Visitor) interface{}         { return v.VisitUnary(n) }
func (n *Binary) Accept(v Visitor) interface{}        { return v.VisitBinary(n) }
func (n *Conditional) Accept(v Visitor) interface{}   { return v.VisitConditional(n) }
func (n *Index) Accept(v Visitor) interface{}         { return v.VisitIndex(n) }
func (n *Comprehension) Accept(v Visitor) interface{} { return v.VisitComprehension(n) }
