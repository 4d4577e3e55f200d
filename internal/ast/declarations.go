package ast

import "github.com/werwolv/patternlang/internal/token"

// TypeDecl names a type: a builtin name or a reference by name to a
// struct/union/enum/bitfield/using declaration. The parser leaves Resolved
// nil; the evaluator looks the name up in its type table at use time, so a
// type may be referenced before it is declared.
type TypeDecl struct {
	Tok      token.Token
	Name     string
	Builtin  bool
	Resolved Node // *StructDecl / *UnionDecl / *EnumDecl / *BitfieldDecl; set only through Complete
	Pointer  *TypeDecl
	ArrayLen Expression // non-nil for `type[N]`/`type[]`

	// Endian is "", "be", or "le" -- the §6.3 endianness prefix on a type
	// reference ("be E v @ 0x8;"). Empty means "use the evaluator's
	// ambient default" (little, unless overridden by a host setting).
	Endian string

	// TemplateArgs is non-empty for a reference to a templated `using`
	// declaration instantiated at this use site, e.g. `ArrayOf<u32, 4>`.
	TemplateArgs []TemplateArg
}

// TemplateArg is one argument in a templated type instantiation: either a
// type name (bound to a `T`-style template parameter) or a value expression
// (bound to an `auto N`-style parameter).
type TemplateArg struct {
	TypeArg  *TypeDecl
	ValueArg Expression
}

func (t *TypeDecl) Accept(v Visitor)      { v.VisitTypeDecl(t) }
func (t *TypeDecl) TokenLiteral() string  { return t.Tok.Lexeme }
func (t *TypeDecl) GetToken() token.Token { return t.Tok }

// Complete resolves a forward declaration in place once its target is
// known, so every existing TypeDecl pointer into the still-unresolved name
// sees the real declaration without needing to be replaced.
func (t *TypeDecl) Complete(resolved Node) { t.Resolved = resolved }

// Member is one field of a Struct/Union declaration.
type Member struct {
	Tok        token.Token
	Name       string
	Type       *TypeDecl
	Attrs      []*Attribute
	Condition  Expression // non-nil for `if (cond) type name;`
	Placement  Expression // non-nil for `type name @ addr;`
	WhileCond  Expression // non-nil for `type name[while(cond)];`
	DocComment string     // not filled by the parser: the lexer discards /// and /** */ comments
}

// StructDecl declares a struct type: a fixed ordered set of members, with
// optional inheritance splicing members from one or more base structs
// before its own (supplemented from original_source; the spec's struct
// §3.3 doesn't mention inheritance, but original_source's inheritance
// tests show member order is base-first, derived-second).
type StructDecl struct {
	Tok      token.Token
	Name     string
	Inherits []*TypeDecl
	Members  []*Member
	Attrs    []*Attribute
}

func (s *StructDecl) Accept(v Visitor)      { v.VisitStructDecl(s) }
func (s *StructDecl) statementNode()        {}
func (s *StructDecl) TokenLiteral() string  { return s.Tok.Lexeme }
func (s *StructDecl) GetToken() token.Token { return s.Tok }

// UnionDecl declares a union type: members all start at offset 0.
type UnionDecl struct {
	Tok     token.Token
	Name    string
	Members []*Member
	Attrs   []*Attribute
}

func (u *UnionDecl) Accept(v Visitor)      { v.VisitUnionDecl(u) }
func (u *UnionDecl) statementNode()        {}
func (u *UnionDecl) TokenLiteral() string  { return u.Tok.Lexeme }
func (u *UnionDecl) GetToken() token.Token { return u.Tok }

// EnumDecl declares a named integer enumeration: an underlying type plus
// an ordered list of `Name = value` or `Name = min...max` entries.
type EnumDecl struct {
	Tok         token.Token
	Name        string
	Underlying  *TypeDecl
	EntryNames  []string
	EntryMin    []Expression
	EntryMax    []Expression // == EntryMin[i] when the entry is a single value
	Attrs       []*Attribute
}

func (e *EnumDecl) Accept(v Visitor)      { v.VisitEnumDecl(e) }
func (e *EnumDecl) statementNode()        {}
func (e *EnumDecl) TokenLiteral() string  { return e.Tok.Lexeme }
func (e *EnumDecl) GetToken() token.Token { return e.Tok }

// BitfieldDecl declares a bitfield container type: an ordered list of
// named bit-sized fields (and anonymous bit-sized padding runs).
type BitfieldDecl struct {
	Tok       token.Token
	Name      string
	Fields    []*BitfieldFieldDecl
	Attrs     []*Attribute
}

type BitfieldFieldDecl struct {
	Tok      token.Token
	Name     string // "" for anonymous padding
	BitSize  Expression
	Signed   bool
	Attrs    []*Attribute

	// Type and ArrayLen are set instead of BitSize for a member nested by
	// a named bitfield type (`NestedBitfield c;`, or `NestedBitfield
	// f[n];` when ArrayLen is also set) rather than an inline `: bits`
	// field.
	Type     *TypeDecl
	ArrayLen Expression
}

func (b *BitfieldDecl) Accept(v Visitor)      { v.VisitBitfieldDecl(b) }
func (b *BitfieldDecl) statementNode()        {}
func (b *BitfieldDecl) TokenLiteral() string  { return b.Tok.Lexeme }
func (b *BitfieldDecl) GetToken() token.Token { return b.Tok }

// VariableDecl is `type name;` at struct/global scope, or `type name = value;`
// for an in-place scope-local computed variable.
type VariableDecl struct {
	Tok   token.Token
	Name  string
	Type  *TypeDecl
	Attrs []*Attribute
	// InVariable/OutVariable mark a parameter passed into/out of a function
	// via the `in`/`out` qualifiers rather than placed in the pattern tree.
	InVariable  bool
	OutVariable bool

	// Placement is the `@ expr` offset expression placing this variable in
	// a section rather than on the scope's stack/heap; nil for a local.
	Placement Expression
	// PlacementSection is the `in expr` section-id expression accompanying
	// Placement; nil means the Main section.
	PlacementSection Expression
	// Init is the `= expr` initializer of a local (non-placed) variable.
	Init Expression
}

func (d *VariableDecl) Accept(v Visitor)      { v.VisitVariableDecl(d) }
func (d *VariableDecl) statementNode()        {}
func (d *VariableDecl) TokenLiteral() string  { return d.Tok.Lexeme }
func (d *VariableDecl) GetToken() token.Token { return d.Tok }

// ArrayVariableDecl is `type name[len];` (static, len is a constant
// expression) or `type name[];`/`type name[while(cond)];` (dynamic).
type ArrayVariableDecl struct {
	Tok       token.Token
	Name      string
	Type      *TypeDecl
	Length    Expression // nil => dynamic
	WhileCond Expression // non-nil => read until cond is false
	Attrs     []*Attribute

	Placement        Expression // non-nil => `@ expr`
	PlacementSection Expression // non-nil => `in expr`
}

func (d *ArrayVariableDecl) Accept(v Visitor)      { v.VisitArrayVariableDecl(d) }
func (d *ArrayVariableDecl) statementNode()        {}
func (d *ArrayVariableDecl) TokenLiteral() string  { return d.Tok.Lexeme }
func (d *ArrayVariableDecl) GetToken() token.Token { return d.Tok }

// PointerVariableDecl is `type *name : addressType;`.
type PointerVariableDecl struct {
	Tok         token.Token
	Name        string
	Type        *TypeDecl
	AddressType *TypeDecl
	Attrs       []*Attribute

	Placement        Expression // non-nil => `@ expr`
	PlacementSection Expression // non-nil => `in expr`
}

func (d *PointerVariableDecl) Accept(v Visitor)      { v.VisitPointerVariableDecl(d) }
func (d *PointerVariableDecl) statementNode()        {}
func (d *PointerVariableDecl) TokenLiteral() string  { return d.Tok.Lexeme }
func (d *PointerVariableDecl) GetToken() token.Token { return d.Tok }

// FunctionDefinition is `fn name(params) { body }`.
type FunctionDefinition struct {
	Tok    token.Token
	Name   string
	Params []FunctionParam
	Body   []Statement
}

type FunctionParam struct {
	Name     string
	Type     *TypeDecl // nil => untyped/auto parameter
	Variadic bool
}

func (f *FunctionDefinition) Accept(v Visitor)      { v.VisitFunctionDefinition(f) }
func (f *FunctionDefinition) statementNode()        {}
func (f *FunctionDefinition) TokenLiteral() string  { return f.Tok.Lexeme }
func (f *FunctionDefinition) GetToken() token.Token { return f.Tok }

// UsingDecl is a `using Alias = Type;` type alias, optionally templated:
// `using Alias<T, auto N> = Type;` (§3.5/§4.3). A non-templated alias is
// the Params == nil special case of the same struct.
type UsingDecl struct {
	Tok    token.Token
	Name   string
	Params []TemplateParam
	Type   *TypeDecl
}

// TemplateParam is one `T` (type) or `auto N` (value) formal parameter of
// a templated `using` declaration.
type TemplateParam struct {
	Name   string
	IsAuto bool
}

func (u *UsingDecl) Accept(v Visitor)      { v.VisitUsingDecl(u) }
func (u *UsingDecl) statementNode()        {}
func (u *UsingDecl) TokenLiteral() string  { return u.Tok.Lexeme }
func (u *UsingDecl) GetToken() token.Token { return u.Tok }
