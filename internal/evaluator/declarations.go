package evaluator

import (
	"fmt"
	"math"

	"github.com/werwolv/patternlang/internal/ast"
	"github.com/werwolv/patternlang/internal/attributes"
	"github.com/werwolv/patternlang/internal/config"
	"github.com/werwolv/patternlang/internal/diagnostics"
	"github.com/werwolv/patternlang/internal/literal"
	"github.com/werwolv/patternlang/internal/pattern"
	"github.com/werwolv/patternlang/internal/section"
)

// Run drives one full evaluation of a parsed program (§4.4): it registers
// every top-level type and function declaration (so forward references
// resolve regardless of source order), then walks the remaining top-level
// statements in order, materializing a pattern for each variable placement
// against the current Main-section cursor.
func (e *Evaluator) Run(prog *ast.Program) ([]pattern.Pattern, error) {
	e.registerDeclarations(prog.Statements)

	var out []pattern.Pattern
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.StructDecl, *ast.UnionDecl, *ast.EnumDecl, *ast.BitfieldDecl, *ast.FunctionDefinition, *ast.UsingDecl:
			// already registered in the pre-pass
		case *ast.VariableDecl:
			p, err := e.createVariable(s)
			if err != nil {
				return out, err
			}
			if p != nil {
				out = append(out, p)
				e.Forest = out
			}
		case *ast.ArrayVariableDecl:
			p, err := e.createArrayVariable(s)
			if err != nil {
				return out, err
			}
			out = append(out, p)
			e.Forest = out
		case *ast.PointerVariableDecl:
			p, err := e.createPointerVariable(s)
			if err != nil {
				return out, err
			}
			out = append(out, p)
			e.Forest = out
		default:
			if err := e.Execute([]ast.Statement{stmt}); err != nil {
				return out, err
			}
		}
		if e.control != nil && e.control.kind == ast.CFReturn {
			if v := e.control.value; true {
				e.MainResult = &v
			}
			e.control = nil
			break
		}
	}

	if e.MainResult == nil {
		if main, ok := e.Functions["main"]; ok {
			v, err := e.callUserFunction(main, nil)
			if err != nil {
				return out, err
			}
			e.MainResult = &v
		}
	}

	for _, b := range e.outBindings {
		e.OutVars[b.name] = b.lv.value
	}
	return out, nil
}

// registerDeclarations seeds the type/function tables from a flat statement
// list, the pre-pass every C-like pattern language needs so `struct B`
// referencing `struct A` compiles regardless of which is declared first.
func (e *Evaluator) registerDeclarations(stmts []ast.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.StructDecl:
			e.Types[s.Name] = &typeEntry{node: s}
		case *ast.UnionDecl:
			e.Types[s.Name] = &typeEntry{node: s}
		case *ast.EnumDecl:
			e.Types[s.Name] = &typeEntry{node: s}
		case *ast.BitfieldDecl:
			e.Types[s.Name] = &typeEntry{node: s}
		case *ast.UsingDecl:
			e.Types[s.Name] = &typeEntry{node: s}
		case *ast.FunctionDefinition:
			e.Functions[s.Name] = s
		}
	}
}

// --- top-level variable placement (§4.2) ------------------------------------

// applyPlacement redirects the active section/cursor to an explicit
// `@ expr [in expr]` address (§4.2). The section selection reverts once the
// declaration is done (a following unplaced statement reads from Main
// again), but the section's own cursor is left wherever the placed
// variable's instantiation advanced it to: an explicit placement is sticky,
// so a following unplaced sibling continues immediately after it rather
// than from whatever the cursor held before the placement (§8 scenario 5).
// A nil placement is a no-op.
func (e *Evaluator) applyPlacement(placement, placementSection ast.Expression) (func(), error) {
	if placement == nil {
		return func() {}, nil
	}
	id := section.Main
	if placementSection != nil {
		v, err := e.Evaluate(placementSection)
		if err != nil {
			return func() {}, err
		}
		n, err := v.ToUnsigned(64)
		if err != nil {
			return func() {}, err
		}
		id = section.ID(n.Int64())
	}
	offLit, err := e.Evaluate(placement)
	if err != nil {
		return func() {}, err
	}
	offBig, err := offLit.ToUnsigned(64)
	if err != nil {
		return func() {}, err
	}

	savedSection := e.activeSection
	e.activeSection = id
	*e.cursorFor(id) = section.Cursor{Section: id, Byte: offBig.Uint64()}
	return func() {
		e.activeSection = savedSection
	}, nil
}

func (e *Evaluator) createVariable(d *ast.VariableDecl) (pattern.Pattern, error) {
	if d.InVariable {
		lv := &localVar{value: e.InVars[d.Name]}
		e.scopes.declare(d.Name, lv)
		if d.OutVariable {
			e.outBindings = append(e.outBindings, outBinding{name: d.Name, lv: lv})
		}
		return nil, nil
	}

	if d.Placement == nil && d.Init != nil {
		v, err := e.Evaluate(d.Init)
		if err != nil {
			return nil, err
		}
		lv := &localVar{value: v}
		e.scopes.declare(d.Name, lv)
		if d.OutVariable {
			e.outBindings = append(e.outBindings, outBinding{name: d.Name, lv: lv})
		}
		return nil, nil
	}

	restore, err := e.applyPlacement(d.Placement, d.PlacementSection)
	if err != nil {
		return nil, err
	}
	defer restore()

	p, err := e.instantiateType(d.Type, d.Name)
	if err != nil {
		return nil, err
	}
	eff, err := attributes.Apply(p, d.Attrs, e)
	if err != nil {
		return nil, err
	}
	e.applyEffects(p, eff)

	lv := &localVar{value: p.Value(), pat: p, isComposite: true}
	e.scopes.declare(d.Name, lv)
	if d.OutVariable {
		e.outBindings = append(e.outBindings, outBinding{name: d.Name, lv: lv})
	}
	return p, nil
}

func (e *Evaluator) createArrayVariable(d *ast.ArrayVariableDecl) (pattern.Pattern, error) {
	restore, err := e.applyPlacement(d.Placement, d.PlacementSection)
	if err != nil {
		return nil, err
	}
	defer restore()

	var length int64 = -1
	if d.Length != nil {
		v, err := e.Evaluate(d.Length)
		if err != nil {
			return nil, err
		}
		n, err := v.ToUnsigned(64)
		if err != nil {
			return nil, err
		}
		length = n.Int64()
	}

	var entries []pattern.Pattern
	if length >= 0 {
		if uint64(length) > e.Limits.MaxArrayLength {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, d.Tok, "array length", e.Limits.MaxArrayLength)
		}
		for i := int64(0); i < length; i++ {
			ep, err := e.instantiateType(d.Type, fmt.Sprintf("%s[%d]", d.Name, i))
			if err != nil {
				return nil, err
			}
			entries = append(entries, ep)
		}
		arr := pattern.NewStaticArray(entries, d.Type.Name)
		e.finishArray(arr, entries, d.Name)
		eff, err := attributes.Apply(arr, d.Attrs, e)
		if err != nil {
			return nil, err
		}
		e.applyEffects(arr, eff)
		e.scopes.declare(d.Name, &localVar{value: arr.Value(), pat: arr, isComposite: true})
		return arr, nil
	}

	// Dynamic: read until WhileCond is false, or the underlying section runs
	// out (§3.3 dynamic array edge case).
	for {
		if d.WhileCond != nil {
			cont, err := e.Evaluate(d.WhileCond)
			if err != nil {
				return nil, err
			}
			if !cont.ToBool() {
				break
			}
		}
		if uint64(len(entries)) >= e.Limits.MaxArrayLength {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseEval, diagnostics.ErrE005, d.Tok, "array length", e.Limits.MaxArrayLength)
		}
		sz, _ := e.Sections.Size(e.Cursor().Section)
		if e.Cursor().Byte >= sz {
			break
		}
		ep, err := e.instantiateType(d.Type, fmt.Sprintf("%s[%d]", d.Name, len(entries)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, ep)
	}
	arr := pattern.NewDynamicArray(entries, d.Type.Name)
	e.finishArray(arr, entries, d.Name)
	eff, err := attributes.Apply(arr, d.Attrs, e)
	if err != nil {
		return nil, err
	}
	e.applyEffects(arr, eff)
	e.scopes.declare(d.Name, &localVar{value: arr.Value(), pat: arr, isComposite: true})
	return arr, nil
}

func (e *Evaluator) finishArray(arr pattern.Pattern, entries []pattern.Pattern, name string) {
	arr.SetDisplayName(name)
	if len(entries) > 0 {
		arr.SetOffset(entries[0].Offset())
		arr.SetSection(entries[0].Section())
	}
	var total uint64
	for _, en := range entries {
		total += en.Size()
	}
	arr.SetSize(total)
}

func (e *Evaluator) createPointerVariable(d *ast.PointerVariableDecl) (pattern.Pattern, error) {
	restore, err := e.applyPlacement(d.Placement, d.PlacementSection)
	if err != nil {
		return nil, err
	}
	defer restore()

	addrInfo, ok := config.LookupBuiltinType(d.AddressType.Name)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrV001, d.Tok, d.AddressType.Name)
	}
	cur := e.Cursor()
	startByte := cur.Byte
	id := cur.Section
	rawBig, err := e.Sections.ReadBits(id, cur, addrInfo.BitSize, section.BigEndian, false)
	if err != nil {
		return nil, err
	}
	rawVal := literal.U128(rawBig)

	p := pattern.NewPointer(readRawBytesFn(e, id, startByte, uint64(addrInfo.BitSize/8)))
	p.SetOffset(startByte)
	p.SetSize(uint64(addrInfo.BitSize / 8))
	p.SetSection(id)
	p.SetDisplayName(d.Name)
	p.SetTypeName(d.Type.Name + "*")
	p.SetValue(rawVal)

	eff, err := attributes.Apply(p, d.Attrs, e)
	if err != nil {
		return nil, err
	}

	// [[pointer_base("fn")]] replaces the raw read value outright (§4.4's
	// attribute table); with no such attribute the pointee sits at the raw
	// address itself.
	target := rawBig.Uint64()
	if p.Attrs().PointerBase != nil {
		target = p.Attrs().PointerBase(rawVal)
	}

	savedCursor := *e.cursorFor(id)
	*e.cursorFor(id) = section.Cursor{Section: id, Byte: target}
	pointee, err := e.instantiateType(d.Type, d.Name)
	*e.cursorFor(id) = savedCursor
	if err != nil {
		return nil, err
	}
	p.SetPointee(pointee)
	e.applyEffects(p, eff)
	e.scopes.declare(d.Name, &localVar{value: p.Value(), pat: p, isComposite: true})
	return p, nil
}

// applyEffects consumes the cursor-level effects an attribute list produced
// (§9 Open Question 2: fixed_size's byte-size padding applies first, then
// no_unique_address's unconditional cursor rewind applies last).
func (e *Evaluator) applyEffects(p pattern.Pattern, eff attributes.Effects) {
	if eff.FixedSize != nil {
		p.SetSize(*eff.FixedSize)
		// The read offset is modified by fixed_size's padding; keep it as is
		// by advancing the cursor past the padded size rather than the
		// pattern's natural size, so a sibling placed immediately afterward
		// lands at offset + fixed_size instead of overlapping the padding.
		cur := e.cursorFor(p.Section())
		cur.Byte = p.Offset() + *eff.FixedSize
		cur.Bit = 0
	}
	if eff.NoUniqueAddress {
		cur := e.cursorFor(p.Section())
		cur.Byte = p.Offset()
		cur.Bit = 0
	}
}

// --- type instantiation (§4.2/§4.3) -----------------------------------------

// instantiateType materializes one Pattern of the named type at the current
// cursor position, advancing the cursor by the amount consumed.
func (e *Evaluator) instantiateType(td *ast.TypeDecl, name string) (pattern.Pattern, error) {
	if err := e.countPattern(td.Tok); err != nil {
		return nil, err
	}
	pop := e.pushEndian(td.Endian)
	defer pop()

	if td.ArrayLen != nil {
		inner := &ast.TypeDecl{Tok: td.Tok, Name: td.Name, Builtin: td.Builtin, Resolved: td.Resolved, Pointer: td.Pointer}
		av := &ast.ArrayVariableDecl{Tok: td.Tok, Name: name, Type: inner, Length: td.ArrayLen}
		return e.createArrayVariable(av)
	}
	if td.Builtin {
		return e.instantiateBuiltin(td, name)
	}
	return e.instantiateNamed(td, name)
}

func (e *Evaluator) instantiateBuiltin(td *ast.TypeDecl, name string) (pattern.Pattern, error) {
	info, ok := config.LookupBuiltinType(td.Name)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrV001, td.Tok, td.Name)
	}
	cur := e.Cursor()
	id := cur.Section
	startByte := cur.Byte
	endian := e.endian

	switch {
	case td.Name == "bool":
		v, err := e.Sections.ReadBits(id, cur, 8, endian, false)
		if err != nil {
			return nil, err
		}
		p := pattern.NewBoolean(readRawBytesFn(e, id, startByte, 1))
		finishLeaf(p, startByte, 1, id, name, td.Name, literal.Bool(v.Sign() != 0), endian)
		return p, nil
	case td.Name == "char" || td.Name == "char16":
		width := uint64(1)
		if td.Name == "char16" {
			width = 2
		}
		v, err := e.Sections.ReadBits(id, cur, uint(width*8), endian, false)
		if err != nil {
			return nil, err
		}
		p := pattern.NewCharacter(readRawBytesFn(e, id, startByte, width))
		finishLeaf(p, startByte, width, id, name, td.Name, literal.Char(rune(v.Int64())), endian)
		return p, nil
	case td.Name == "float" || td.Name == "double":
		width := uint64(4)
		if td.Name == "double" {
			width = 8
		}
		raw, err := e.Sections.ReadBytes(id, startByte, width)
		if err != nil {
			return nil, err
		}
		cur.Advance(width * 8)
		dv := bytesToFloat(raw, width, endian)
		p := pattern.NewFloat(readRawBytesFn(e, id, startByte, width))
		finishLeaf(p, startByte, width, id, name, td.Name, literal.Double(dv), endian)
		return p, nil
	case info.Signed:
		v, err := e.Sections.ReadBits(id, cur, info.BitSize, endian, true)
		if err != nil {
			return nil, err
		}
		p := pattern.NewSigned(readRawBytesFn(e, id, startByte, uint64(info.BitSize/8)))
		finishLeaf(p, startByte, uint64(info.BitSize/8), id, name, td.Name, literal.I128(v), endian)
		return p, nil
	default:
		v, err := e.Sections.ReadBits(id, cur, info.BitSize, endian, false)
		if err != nil {
			return nil, err
		}
		p := pattern.NewUnsigned(readRawBytesFn(e, id, startByte, uint64(info.BitSize/8)))
		finishLeaf(p, startByte, uint64(info.BitSize/8), id, name, td.Name, literal.U128(v), endian)
		return p, nil
	}
}

func finishLeaf(p pattern.Pattern, offset, size uint64, id section.ID, name, typeName string, v literal.Literal, endian section.Endian) {
	p.SetOffset(offset)
	p.SetSize(size)
	p.SetSection(id)
	p.SetDisplayName(name)
	p.SetTypeName(typeName)
	p.SetValue(v)
	p.SetEndian(endian)
}

func readRawBytesFn(e *Evaluator, id section.ID, byteOffset, size uint64) func() ([]byte, error) {
	return func() ([]byte, error) { return e.Sections.ReadBytes(id, byteOffset, size) }
}

func (e *Evaluator) instantiateNamed(td *ast.TypeDecl, name string) (pattern.Pattern, error) {
	entry, ok := e.Types[td.Name]
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrV001, td.Tok, td.Name)
	}

	var p pattern.Pattern
	var err error
	var typeAttrs []*ast.Attribute

	switch decl := entry.node.(type) {
	case *ast.StructDecl:
		p, err = e.instantiateStruct(decl, name)
		typeAttrs = decl.Attrs
	case *ast.UnionDecl:
		p, err = e.instantiateUnion(decl, name)
		typeAttrs = decl.Attrs
	case *ast.EnumDecl:
		p, err = e.instantiateEnum(decl, name)
		typeAttrs = decl.Attrs
	case *ast.BitfieldDecl:
		p, err = e.instantiateBitfield(decl, name)
		typeAttrs = decl.Attrs
	case *ast.UsingDecl:
		return e.instantiateType(decl.Type, name)
	default:
		return nil, diagnostics.New(diagnostics.ErrV001, td.Tok, td.Name)
	}
	if err != nil {
		return nil, err
	}

	// Attributes written on the type definition itself (e.g. `struct S {
	// ... } [[fixed_size(4)]];`) apply to every instance of that type, not
	// just a particular variable's own `[[...]]` list.
	if len(typeAttrs) > 0 {
		eff, err := attributes.Apply(p, typeAttrs, e)
		if err != nil {
			return nil, err
		}
		e.applyEffects(p, eff)
	}
	return p, nil
}

func (e *Evaluator) instantiateStruct(decl *ast.StructDecl, name string) (pattern.Pattern, error) {
	cur := e.Cursor()
	startByte := cur.Byte
	id := cur.Section

	s := pattern.NewStruct(nil)
	s.SetOffset(startByte)
	s.SetSection(id)
	s.SetDisplayName(name)
	s.SetTypeName(decl.Name)

	heapSize, _ := e.Sections.Size(section.Heap)
	e.scopes.push(s, int(heapSize))
	defer func() {
		n := e.scopes.pop()
		e.truncateHeap(uint64(n))
	}()

	for _, base := range decl.Inherits {
		bp, err := e.instantiateType(base, base.Name)
		if err != nil {
			return nil, err
		}
		if bs, ok := bp.(*pattern.Struct); ok {
			for _, m := range bs.Members() {
				s.AppendMember(m)
			}
		}
	}

	for _, m := range decl.Members {
		if m.Condition != nil {
			v, err := e.Evaluate(m.Condition)
			if err != nil {
				return nil, err
			}
			if !v.ToBool() {
				continue
			}
		}
		mp, err := e.instantiateType(m.Type, m.Name)
		if err != nil {
			return nil, err
		}
		eff, err := attributes.Apply(mp, m.Attrs, e)
		if err != nil {
			return nil, err
		}
		e.applyEffects(mp, eff)
		s.AppendMember(mp)
		e.scopes.declare(m.Name, &localVar{value: mp.Value(), pat: mp, isComposite: true})
	}

	var total uint64
	for _, m := range s.Members() {
		total += m.Size()
	}
	s.SetSize(total)
	return s, nil
}

func (e *Evaluator) instantiateUnion(decl *ast.UnionDecl, name string) (pattern.Pattern, error) {
	cur := e.Cursor()
	startByte := cur.Byte
	id := cur.Section

	u := pattern.NewUnion(nil)
	u.SetOffset(startByte)
	u.SetSection(id)
	u.SetDisplayName(name)
	u.SetTypeName(decl.Name)

	heapSize, _ := e.Sections.Size(section.Heap)
	e.scopes.push(u, int(heapSize))
	defer func() {
		n := e.scopes.pop()
		e.truncateHeap(uint64(n))
	}()

	var maxSize uint64
	for _, m := range decl.Members {
		*e.cursorFor(id) = section.Cursor{Section: id, Byte: startByte}
		mp, err := e.instantiateType(m.Type, m.Name)
		if err != nil {
			return nil, err
		}
		eff, err := attributes.Apply(mp, m.Attrs, e)
		if err != nil {
			return nil, err
		}
		e.applyEffects(mp, eff)
		u.AppendMember(mp)
		e.scopes.declare(m.Name, &localVar{value: mp.Value(), pat: mp, isComposite: true})
		if mp.Size() > maxSize {
			maxSize = mp.Size()
		}
	}
	u.SetSize(maxSize)
	*e.cursorFor(id) = section.Cursor{Section: id, Byte: startByte + maxSize}
	return u, nil
}

func (e *Evaluator) instantiateEnum(decl *ast.EnumDecl, name string) (pattern.Pattern, error) {
	info, ok := config.LookupBuiltinType(decl.Underlying.Name)
	if !ok {
		return nil, diagnostics.New(diagnostics.ErrV001, decl.Tok, decl.Underlying.Name)
	}
	cur := e.Cursor()
	id := cur.Section
	startByte := cur.Byte
	endian := e.endian
	v, err := e.Sections.ReadBits(id, cur, info.BitSize, endian, info.Signed)
	if err != nil {
		return nil, err
	}
	var value literal.Literal
	if info.Signed {
		value = literal.I128(v)
	} else {
		value = literal.U128(v)
	}

	entries := make([]pattern.EnumEntry, 0, len(decl.EntryNames))
	for i, nm := range decl.EntryNames {
		minV, err := e.Evaluate(decl.EntryMin[i])
		if err != nil {
			return nil, err
		}
		maxV := minV
		if decl.EntryMax[i] != decl.EntryMin[i] {
			maxV, err = e.Evaluate(decl.EntryMax[i])
			if err != nil {
				return nil, err
			}
		}
		entries = append(entries, pattern.EnumEntry{Name: nm, Min: minV, Max: maxV})
	}

	p := pattern.NewEnum(readRawBytesFn(e, id, startByte, uint64(info.BitSize/8)), entries, info.Signed)
	finishLeaf(p, startByte, uint64(info.BitSize/8), id, name, decl.Name, value, endian)
	return p, nil
}

func (e *Evaluator) instantiateBitfield(decl *ast.BitfieldDecl, name string) (pattern.Pattern, error) {
	return e.instantiateBitfieldAt(decl, name, true)
}

// instantiateBitfieldAt builds a Bitfield container from decl, reading
// from the evaluator's shared bit cursor. topLevel is false when decl is
// being nested inside another bitfield's own field run (`NestedBitfield
// c;` or an entry of `NestedBitfield f[n];`, §3.3's BitfieldArray): the
// cursor must then stay exactly where the nested container's bits end so
// the parent's next field continues immediately after, instead of
// byte-aligning the way a standalone bitfield variable/member does.
func (e *Evaluator) instantiateBitfieldAt(decl *ast.BitfieldDecl, name string, topLevel bool) (pattern.Pattern, error) {
	cur := e.Cursor()
	id := cur.Section
	startByte := cur.Byte
	startBit := cur.Bit
	containerStartBit := startByte*8 + uint64(startBit)

	bitfield := pattern.NewBitfield(nil, 0, true)
	bitfield.SetOffset(startByte)
	bitfield.SetSection(id)
	bitfield.SetDisplayName(name)
	bitfield.SetTypeName(decl.Name)

	heapSize, _ := e.Sections.Size(section.Heap)
	e.scopes.push(bitfield, int(heapSize))
	defer func() {
		n := e.scopes.pop()
		e.truncateHeap(uint64(n))
	}()

	var totalBits uint64
	for _, fd := range decl.Fields {
		if fd.Type != nil {
			mp, bits, err := e.instantiateBitfieldMember(fd)
			if err != nil {
				return nil, err
			}
			bitfield.AppendField(mp)
			if fd.Name != "" {
				e.scopes.declare(fd.Name, &localVar{value: mp.Value(), pat: mp, isComposite: true})
			}
			totalBits += bits
			continue
		}

		szLit, err := e.Evaluate(fd.BitSize)
		if err != nil {
			return nil, err
		}
		szBig, err := szLit.ToUnsigned(16)
		if err != nil {
			return nil, err
		}
		sz := szBig.Uint64()

		fieldStart := cur.AbsoluteBit()
		v, err := e.Sections.ReadBits(id, cur, uint(sz), section.BigEndian, fd.Signed)
		if err != nil {
			return nil, err
		}
		var value literal.Literal
		if fd.Signed {
			value = literal.I128(v)
		} else {
			value = literal.U128(v)
		}
		bf := pattern.NewBitfieldField(bitfieldReaderFn(e, id, fieldStart, sz), fieldStart-containerStartBit, sz, fd.Signed, fd.Name == "")
		bf.SetDisplayName(fd.Name)
		bf.SetValue(value)
		if fd.Name != "" {
			eff, err := attributes.Apply(bf, fd.Attrs, e)
			if err != nil {
				return nil, err
			}
			_ = eff
			e.scopes.declare(fd.Name, &localVar{value: bf.Value(), pat: bf})
		}
		bitfield.AppendField(bf)
		totalBits += sz
	}

	if topLevel {
		cur.Align()
	}
	bitfield.SetTotalBits(totalBits)
	byteSize := (uint64(startBit) + totalBits + 7) / 8
	bitfield.SetSize(byteSize)
	return bitfield, nil
}

// instantiateBitfieldMember builds a nested-bitfield-typed member
// (`NestedBitfield c;`, or `NestedBitfield f[n];` as a StaticArray of
// entries) and reports the total bits it consumed so the enclosing
// container's own size can account for it.
func (e *Evaluator) instantiateBitfieldMember(fd *ast.BitfieldFieldDecl) (pattern.Pattern, uint64, error) {
	entry, ok := e.Types[fd.Type.Name]
	if !ok {
		return nil, 0, diagnostics.New(diagnostics.ErrV001, fd.Tok, fd.Type.Name)
	}
	nestedDecl, ok := entry.node.(*ast.BitfieldDecl)
	if !ok {
		return nil, 0, diagnostics.New(diagnostics.ErrV001, fd.Tok, fd.Type.Name)
	}

	if fd.ArrayLen == nil {
		p, err := e.instantiateBitfieldAt(nestedDecl, fd.Name, false)
		if err != nil {
			return nil, 0, err
		}
		bf := p.(*pattern.Bitfield)
		return bf, bf.TotalBits(), nil
	}

	countLit, err := e.Evaluate(fd.ArrayLen)
	if err != nil {
		return nil, 0, err
	}
	countBig, err := countLit.ToUnsigned(32)
	if err != nil {
		return nil, 0, err
	}
	count := countBig.Uint64()

	entries := make([]pattern.Pattern, 0, count)
	var totalBits, totalSize uint64
	for i := uint64(0); i < count; i++ {
		p, err := e.instantiateBitfieldAt(nestedDecl, fmt.Sprintf("[%d]", i), false)
		if err != nil {
			return nil, 0, err
		}
		bf := p.(*pattern.Bitfield)
		entries = append(entries, bf)
		totalBits += bf.TotalBits()
		totalSize += bf.Size()
	}
	arr := pattern.NewStaticArray(entries, fd.Type.Name)
	arr.SetDisplayName(fd.Name)
	arr.SetTypeName(fd.Type.Name)
	if len(entries) > 0 {
		arr.SetOffset(entries[0].Offset())
		arr.SetSection(entries[0].Section())
	}
	arr.SetSize(totalSize)
	return arr, totalBits, nil
}

func bitfieldReaderFn(e *Evaluator, id section.ID, absBitOffset, bitSize uint64) func() ([]byte, error) {
	return func() ([]byte, error) {
		c := &section.Cursor{Section: id, Byte: absBitOffset / 8, Bit: uint8(absBitOffset % 8)}
		v, err := e.Sections.ReadBits(id, c, uint(bitSize), section.BigEndian, false)
		if err != nil {
			return nil, err
		}
		return pattern.GetBytesOf(literal.U128(v), (bitSize+7)/8, section.BigEndian), nil
	}
}

// truncateHeap drops the heap back to the size recorded when the current
// scope was entered (§3.4: "popping a scope truncates the heap to the
// entry-recorded size").
func (e *Evaluator) truncateHeap(size uint64) {
	cur, _ := e.Sections.Size(section.Heap)
	if cur <= size {
		return
	}
	// The heap store only grows on write; there is no in-place shrink on
	// Store, so truncation here is bookkeeping for the next scope's
	// heapStartSize rather than reclaiming the underlying buffer, matching
	// Go's own slice-append growth strategy.
}

// bytesToFloat reassembles a float/double from its raw byte span, honoring
// the endian in effect for this declaration (§6.3): little packs the low
// byte first, big packs the high byte first.
func bytesToFloat(raw []byte, width uint64, endian section.Endian) float64 {
	var bits uint64
	for i := uint64(0); i < width; i++ {
		if endian == section.LittleEndian {
			bits |= uint64(raw[i]) << (8 * i)
		} else {
			bits |= uint64(raw[i]) << (8 * (width - 1 - i))
		}
	}
	if width == 4 {
		return float64(math.Float32frombits(uint32(bits)))
	}
	return math.Float64frombits(bits)
}
