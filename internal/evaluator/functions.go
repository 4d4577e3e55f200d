package evaluator

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/literal"
)

// callUserFunction binds params by position, runs the body in a fresh
// scope, and returns whatever CFReturn value (if any) the body leaves
// behind. The last parameter being variadic collects any extra trailing
// arguments into a pack a body can index positionally (§4.3: "auto ...args"
// parameter packs), mirroring the scope stack's own packValues slot.
func (e *Evaluator) callUserFunction(fn *ast.FunctionDefinition, args []literal.Literal) (literal.Literal, error) {
	guard, err := e.updateRuntime(fn)
	if err != nil {
		return literal.Literal{}, err
	}
	defer guard()

	e.scopes.push(nil, 0)
	defer e.scopes.pop()

	variadic := len(fn.Params) > 0 && fn.Params[len(fn.Params)-1].Variadic
	fixed := len(fn.Params)
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) > fixed) {
		return literal.Literal{}, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE003, fn.Tok, "wrong argument count calling "+fn.Name)
	}
	for i := 0; i < fixed; i++ {
		e.scopes.declare(fn.Params[i].Name, &localVar{value: args[i]})
	}
	if variadic {
		pack := fn.Params[fixed]
		top := e.scopes.top()
		top.packName = pack.Name
		top.packValues = append([]literal.Literal{}, args[fixed:]...)
	}

	if err := e.Execute(fn.Body); err != nil {
		return literal.Literal{}, err
	}
	if e.control != nil && e.control.kind == ast.CFReturn {
		v := e.control.value
		e.control = nil
		return v, nil
	}
	return literal.Literal{}, nil
}
