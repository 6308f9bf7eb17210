// Package ast defines the Abstract Syntax Tree produced by the CEL parser.
package ast

// Visitor defines one method per AST node type. Implementations can
// traverse and analyze the AST by implementing these methods; the return
// type is interface{} so a visitor can return whatever its pass produces
// (a formatted string, a list of errors, nothing at all).
//
// This interface exists for tooling (pkg/visitors' debug printer and
// semantic analyzer) — the evaluator walks the tree with a direct type
// switch instead, since a tree walk that must short-circuit, thread
// errors, and transiently rebind the environment is simpler to read as
// one switch than as a constellation of Visit methods.
type Visitor interface {
	VisitLiteral(*Literal) interface{}
	VisitIdentifier(*Identifier) interface{}
	VisitSelect(*Select) interface{}
	VisitCall(*Call) interface{}
	VisitList(*List) interface{}
	VisitMap(*Map) interface{}
	VisitStruct(*Struct) interface{}
	VisitUnary(*Unary) interface{}
	VisitBinary(*Binary) interface{}
	VisitConditional(*Conditional) interface{}
	VisitIndex(*Index) interface{}
	VisitComprehension(*Comprehension) interface{}
}

// Node is implemented by every AST node.
type Node interface {
	Accept(v Visitor) interface{}
}
