package evaluator

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/diagnostics"
)

// Execute runs a statement list for effect (§4.4), stopping early once a
// break/continue/return control signal is pending -- the caller (a loop
// body, a function body, Run itself) is the one that consumes it.
func (e *Evaluator) Execute(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := e.executeOne(stmt); err != nil {
			return err
		}
		if e.control != nil {
			return nil
		}
	}
	return nil
}

func (e *Evaluator) executeOne(stmt ast.Statement) error {
	guard, err := e.updateRuntime(stmt)
	if err != nil {
		return err
	}
	defer guard()

	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := e.Evaluate(s.Expr)
		return err
	case *ast.ConditionalStatement:
		return e.execConditional(s)
	case *ast.WhileStatement:
		return e.execWhile(s)
	case *ast.ForStatement:
		return e.execFor(s)
	case *ast.TryCatchStatement:
		return e.execTryCatch(s)
	case *ast.ControlFlowStatement:
		return e.execControlFlow(s)
	case *ast.VariableDecl:
		_, err := e.createVariable(s)
		return err
	case *ast.ArrayVariableDecl:
		_, err := e.createArrayVariable(s)
		return err
	case *ast.PointerVariableDecl:
		_, err := e.createPointerVariable(s)
		return err
	case *ast.StructDecl, *ast.UnionDecl, *ast.EnumDecl, *ast.BitfieldDecl, *ast.FunctionDefinition, *ast.UsingDecl:
		// declarations are hoisted by registerDeclarations; nothing to do
		// when encountered inline (e.g. inside a function body).
		return nil
	default:
		return diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, stmt.GetToken(), "unsupported statement")
	}
}

func (e *Evaluator) execConditional(s *ast.ConditionalStatement) error {
	cond, err := e.Evaluate(s.Condition)
	if err != nil {
		return err
	}
	if cond.ToBool() {
		return e.Execute(s.Then)
	}
	return e.Execute(s.Else)
}

func (e *Evaluator) execWhile(s *ast.WhileStatement) error {
	iterations := uint64(0)
	for {
		cond, err := e.Evaluate(s.Condition)
		if err != nil {
			return err
		}
		if !cond.ToBool() {
			return nil
		}
		iterations++
		if e.Limits.MaxLoopIterations > 0 && iterations > e.Limits.MaxLoopIterations {
			return diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, s.Tok, "loop iteration", e.Limits.MaxLoopIterations)
		}
		if err := e.Execute(s.Body); err != nil {
			return err
		}
		if stop, err := e.consumeLoopSignal(); stop || err != nil {
			return err
		}
	}
}

func (e *Evaluator) execFor(s *ast.ForStatement) error {
	if s.Init != nil {
		if err := e.executeOne(s.Init); err != nil {
			return err
		}
	}
	iterations := uint64(0)
	for {
		if s.Condition != nil {
			cond, err := e.Evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !cond.ToBool() {
				return nil
			}
		}
		iterations++
		if e.Limits.MaxLoopIterations > 0 && iterations > e.Limits.MaxLoopIterations {
			return diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, s.Tok, "loop iteration", e.Limits.MaxLoopIterations)
		}
		if err := e.Execute(s.Body); err != nil {
			return err
		}
		stop, err := e.consumeLoopSignal()
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		if s.Advance != nil {
			if err := e.executeOne(s.Advance); err != nil {
				return err
			}
		}
	}
}

// consumeLoopSignal inspects a pending control signal after a loop body
// runs: BREAK stops the loop (signal cleared), CONTINUE just clears the
// signal and lets the loop proceed, and RETURN is left untouched so it
// keeps propagating to the enclosing function call.
func (e *Evaluator) consumeLoopSignal() (stop bool, err error) {
	if e.control == nil {
		return false, nil
	}
	switch e.control.kind {
	case ast.CFBreak:
		e.control = nil
		return true, nil
	case ast.CFContinue:
		e.control = nil
		return false, nil
	default: // CFReturn
		return true, nil
	}
}

// execTryCatch runs Body, and on an eval-phase error runs Handler instead
// of propagating it (§4.4: "try/catch traps raised evaluator errors, not
// Go panics" -- this evaluator never panics for ordinary control flow, so
// there is nothing else for try/catch to recover).
func (e *Evaluator) execTryCatch(s *ast.TryCatchStatement) error {
	if err := e.Execute(s.Body); err != nil {
		if e.isAborted() {
			return err
		}
		return e.Execute(s.Handler)
	}
	return nil
}

func (e *Evaluator) execControlFlow(s *ast.ControlFlowStatement) error {
	sig := &controlSignal{kind: s.Kind}
	if s.Value != nil {
		val, err := e.Evaluate(s.Value)
		if err != nil {
			return err
		}
		sig.value = val
	}
	e.control = sig
	return nil
}
