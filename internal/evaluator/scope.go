package evaluator

import (
	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
)

// scope is one entry of the scope stack (§3.4): the enclosing composite
// pattern a struct/union/function body is building members into, the
// ordered sequence new top-level patterns append to, an optional
// parameter-pack binding for `auto ...args`, and the heap length recorded
// at entry so popping truncates the heap back to it.
type scope struct {
	parent        pattern.Pattern // nil at global scope
	patterns      []pattern.Pattern
	locals        map[string]*localVar
	packName      string
	packValues    []literal.Literal
	heapStartSize int
}

// localVar is one scope-local variable binding: either a primitive value
// held inline, or a composite held in the heap at heapIndex (§3.4: "each
// local variable maps to either a slot on the operand stack (primitives)
// or an index into the heap (composites)").
type localVar struct {
	value     literal.Literal
	pat       pattern.Pattern // non-nil for composite locals (backed by heap)
	heapIndex int             // valid only when pat != nil
	isComposite bool
}

func newScope(parent pattern.Pattern, heapSize int) *scope {
	return &scope{parent: parent, locals: make(map[string]*localVar), heapStartSize: heapSize}
}

// scopeStack is a vector-backed stack of scopes (Design Notes §9: "back the
// scope stack with a vector").
type scopeStack struct {
	frames []*scope
}

func newScopeStack() *scopeStack {
	s := &scopeStack{}
	s.frames = append(s.frames, newScope(nil, 0))
	return s
}

func (s *scopeStack) top() *scope { return s.frames[len(s.frames)-1] }

func (s *scopeStack) depth() int { return len(s.frames) }

func (s *scopeStack) push(parent pattern.Pattern, heapSize int) {
	s.frames = append(s.frames, newScope(parent, heapSize))
}

// pop removes the top frame and returns the heap size recorded at its
// entry, so the caller can truncate the heap.
func (s *scopeStack) pop() int {
	n := len(s.frames)
	top := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return top.heapStartSize
}

// lookup walks the scope chain from innermost to outermost (global) scope,
// returning the first binding found.
func (s *scopeStack) lookup(name string) (*localVar, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].locals[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// declare creates a new binding in the current (innermost) scope. The
// special name "_" is a no-op sink (§4.4) and is never actually stored.
func (s *scopeStack) declare(name string, v *localVar) bool {
	if name == "_" {
		return true
	}
	top := s.top()
	if _, exists := top.locals[name]; exists {
		return false
	}
	top.locals[name] = v
	return true
}

// templateFrame binds one templated `using` instantiation's formal
// parameters (§3.5): auto-value parameters resolve like locals, type
// parameters substitute for a type name wherever the templated type's body
// references it.
type templateFrame struct {
	values map[string]literal.Literal
	types  map[string]*ast.TypeDecl
}

func newTemplateFrame() *templateFrame {
	return &templateFrame{values: map[string]literal.Literal{}, types: map[string]*ast.TypeDecl{}}
}
