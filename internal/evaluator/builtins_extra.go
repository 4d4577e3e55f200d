package evaluator

import (
	"github.com/google/uuid"

	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/persist"
)

// registerExtraBuiltins installs the two builtins §6.5/§6.4's SQLite
// export adds on top of the §6.2 core std:: library: an identifier
// generator and the one owned persisted form this repository ships.
func registerExtraBuiltins(e *Evaluator) {
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "uuid", Arity: Exactly(0), Fn: builtinUUID})
	registerBuiltin(e, BuiltinFunction{Namespace: "std", Name: "export_sqlite", Arity: Exactly(1), Dangerous: true, Fn: builtinExportSQLite})
}

// builtinUUID implements std::uuid() (§6.5), reduced to the single
// generation entry point the pattern language's flat Literal model can
// represent: a v4-random UUID rendered as its standard string form,
// grounded on the teacher's builtins_uuid.go uuidNew/uuidToString pair
// (PL has no 128-bit-plus binary value type a fuller Uuid object model
// would need, so there's no namespace/v5/parse surface to carry over).
func builtinUUID(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return literal.Literal{}, err
	}
	return literal.String(id.String()), nil
}

// builtinExportSQLite implements std::export_sqlite(path) (§6.4/§6.5): a
// dangerous builtin writing every pattern placed so far (e.Forest) into a
// fresh SQLite database at path.
func builtinExportSQLite(e *Evaluator, args []literal.Literal) (literal.Literal, error) {
	path := args[0].ToStringValue(false)
	if err := persist.ExportSQLite(e.Forest, path); err != nil {
		return literal.Literal{}, err
	}
	return literal.Bool(true), nil
}
