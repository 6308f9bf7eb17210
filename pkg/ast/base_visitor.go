// Package ast defines the Abstract Syntax Tree produced by the CEL parser.
package ast

// BaseVisitor provides default traversal for every node type: it visits
// all children and returns nil. Visitors embed this struct and override
// only the methods they care about. The children are visited with the
// BaseVisitor itself as the visitor, so below a node whose method an
// embedding visitor does not override, that visitor's overrides are not
// called.
type BaseVisitor struct{}

var _ Visitor = (*BaseVisitor)(nil)

func (v *BaseVisitor) VisitLiteral(node *Literal) interface{} {
	return nil
}

func (v *BaseVisitor) VisitIdentifier(node *Identifier) interface{} {
	return nil
}

func (v *BaseVisitor) VisitSelect(node *Select) interface{} {
	if node.Operand != nil {
		node.Operand.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitCall(node *Call) interface{} {
	if node.Target != nil {
		node.Target.Accept(v)
	}
	for _, arg := range node.Args {
		arg.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitList(node *List) interface{} {
	for _, elem := range node.Elements {
		elem.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitMap(node *Map) interface{} {
	for _, entry := range node.Entries {
		entry.Key.Accept(v)
		entry.Val.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitStruct(node *Struct) interface{} {
	for _, field := range node.Fields {
		field.Val.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitUnary(node *Unary) interface{} {
	if node.Operand != nil {
		node.Operand.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitBinary(node *Binary) interface{} {
	if node.Left != nil {
		node.Left.Accept(v)
	}
	if node.Right != nil {
		node.Right.Accept(v)
	}
	return nil
}

func (v *BaseVisitor) VisitConditional(node *Conditional) interface{} {
	node.Cond.Accept(v)
	node.Then.Accept(v)
	node.Else.Accept(v)
	return nil
}

func (v *BaseVisitor) VisitIndex(node *Index) interface{} {
	node.Operand.Accept(v)
	node.Index.Accept(v)
	return nil
}

func (v *BaseVisitor) VisitComprehension(node *Comprehension) interface{} {
	if node.IterRange != nil {
		node.IterRange.Accept(v)
	}
	if node.AccuInit != nil {
		node.AccuInit.Accept(v)
	}
	if node.LoopCond != nil {
		node.LoopCond.Accept(v)
	}
	if node.LoopStep != nil {
		node.LoopStep.Accept(v)
	}
	if node.Result != nil {
		node.Result.Accept(v)
	}
	return nil
}

