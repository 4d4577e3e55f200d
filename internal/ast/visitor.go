package ast

// Visitor dispatches over every concrete node kind, exactly the shape the
// teacher's own ast.Visitor uses. internal/evaluator is the sole production
// implementation (CreatePatterns/Evaluate/Execute all flow through it).
type Visitor interface {
	VisitProgram(p *Program)
	VisitIdentifier(i *Identifier)

	VisitLiteralExpr(l *LiteralExpr)
	VisitRvalue(r *Rvalue)
	VisitLValueAssignment(a *LValueAssignment)
	VisitMathematicalExpression(m *MathematicalExpression)
	VisitCast(c *Cast)
	VisitTernaryExpression(t *TernaryExpression)
	VisitFunctionCall(f *FunctionCall)
	VisitMatchExpression(m *MatchExpression)
	VisitRangeExpr(r *RangeExpr)
	VisitAlternationExpr(a *AlternationExpr)

	VisitTypeDecl(t *TypeDecl)
	VisitStructDecl(s *StructDecl)
	VisitUnionDecl(u *UnionDecl)
	VisitEnumDecl(e *EnumDecl)
	VisitBitfieldDecl(b *BitfieldDecl)
	VisitVariableDecl(d *VariableDecl)
	VisitArrayVariableDecl(d *ArrayVariableDecl)
	VisitPointerVariableDecl(d *PointerVariableDecl)
	VisitFunctionDefinition(f *FunctionDefinition)
	VisitUsingDecl(u *UsingDecl)

	VisitExpressionStatement(s *ExpressionStatement)
	VisitConditionalStatement(s *ConditionalStatement)
	VisitWhileStatement(s *WhileStatement)
	VisitForStatement(s *ForStatement)
	VisitTryCatchStatement(s *TryCatchStatement)
	VisitControlFlowStatement(s *ControlFlowStatement)
}
