package main

import (
	"fmt"
	"os"
)

// dispatchDirective handles every assembler directive. Section-switching
// directives (.text/.data) and layout directives (.org/.zero) act
// immediately; .global/.type/.endfunc touch the symbol table; .size
// writes a distance to a symbol; .strlen/.ascii/.string emit bytes from
// a string literal; .include splices in another source file.
func dispatchDirective(d *Driver, tok Token) error {
	switch tok.Value {
	case ".text":
		d.sec.Switch("text", AttrCode)
		return nil
	case ".data":
		d.sec.Switch("data", AttrData)
		return nil
	case ".rodata":
		d.sec.Switch("rodata", AttrData|AttrReadOnly)
		return nil
	case ".bss":
		d.sec.Switch("bss", AttrData|AttrResv)
		return nil
	case ".org":
		return directiveOrg(d, tok)
	case ".global", ".globl":
		return directiveGlobal(d, tok)
	case ".size":
		return directiveSize(d, tok)
	case ".strlen":
		return directiveStrlen(d, tok)
	case ".ascii":
		return directiveAsciiLike(d, tok, false)
	case ".string", ".asciz":
		return directiveAsciiLike(d, tok, true)
	case ".zero":
		return directiveZero(d, tok)
	case ".include":
		return directiveInclude(d, tok)
	case ".align":
		return directiveAlign(d, tok)
	case ".type":
		return directiveType(d, tok)
	case ".section":
		return directiveSection(d, tok)
	case ".execonly":
		d.sec.Current().Attr |= AttrExecOnly
		return nil
	case ".readonly":
		d.sec.Current().Attr |= AttrReadOnly
		return nil
	case ".endfunc":
		return directiveEndfunc(d, tok)
	case ".finish_labels":
		// Labels are already flushed ahead of every directive dispatch
		// in Run(), so by the time dispatchDirective sees this token
		// there is nothing left to do.
		return nil
	}
	return &StructuralError{Line: tok.Line, Msg: "unknown directive " + tok.Value}
}

func directiveAlign(d *Driver, tok Token) error {
	n, err := d.NextImm()
	if err != nil {
		return err
	}
	if n <= 0 {
		return &RangeError{Line: tok.Line, Value: n, Msg: ".align requires a positive alignment"}
	}
	d.sec.Current().Align(int(n))
	return nil
}

func directiveType(d *Driver, tok Token) error {
	sym, err := d.NextSymbol()
	if err != nil {
		return err
	}
	class, err := d.Next(TKSymbol)
	if err != nil {
		return err
	}
	var t uint32
	switch class.Value {
	case "object":
		t = sttObject
	case "func", "function":
		t = sttFunc
	default:
		return &StructuralError{Line: tok.Line, Msg: "unknown .type class " + class.Value}
	}
	d.sym.SetType(sym.Value, t)
	return nil
}

// directiveSection switches to an arbitrary named section, inferring
// its attributes from the conventional name the way .text/.data/
// .rodata/.bss do; anything else defaults to a plain data section.
func directiveSection(d *Driver, tok Token) error {
	name, err := d.Next(TKDirective)
	if err != nil {
		return err
	}
	bare := name.Value[1:] // strip the leading '.'
	var attr SectionAttr
	switch bare {
	case "text":
		attr = AttrCode
	case "data":
		attr = AttrData
	case "rodata":
		attr = AttrData | AttrReadOnly
	case "bss":
		attr = AttrData | AttrResv
	default:
		attr = AttrData
	}
	d.sec.Switch(bare, attr)
	return nil
}

// directiveEndfunc closes a function symbol opened by an earlier label
// in the current section: its size becomes the byte distance from the
// label to here, and its type becomes STT_FUNC.
func directiveEndfunc(d *Driver, tok Token) error {
	sym, err := d.NextSymbol()
	if err != nil {
		return err
	}
	loc, known := d.sym.Lookup(sym.Value)
	if !known || loc.Section != d.sec.Current() {
		return &UnresolvedSymbolError{Line: tok.Line, Symbol: sym.Value}
	}
	size := d.sec.Current().Len() - loc.Offset
	d.sym.SetSize(sym.Value, uint32(size))
	d.sym.SetType(sym.Value, sttFunc)
	return nil
}

func directiveOrg(d *Driver, tok Token) error {
	imm, err := d.NextImm()
	if err != nil {
		return err
	}
	sec := d.sec.Current()
	if sec.Len() > 0 {
		return &StructuralError{Line: tok.Line, Msg: ".org requires an empty section, " + sec.Name + " already has emitted bytes"}
	}
	addr := AddressFromUint64(uint64(imm))
	sec.Base = &addr
	return nil
}

func directiveGlobal(d *Driver, tok Token) error {
	sym, err := d.NextSymbol()
	if err != nil {
		return err
	}
	d.sym.MarkGlobal(sym.Value)
	return nil
}

// directiveSize reserves a 4-byte slot holding the byte distance between
// a symbol and this directive. If the symbol already has a known offset
// (it was defined earlier in the same section), the distance is computed
// immediately; otherwise it is computed once every section has a base
// address: (this slot's address) - (symbol address) when the symbol
// lies below the slot, else (symbol address) - 4 - (this slot's address).
func directiveSize(d *Driver, tok Token) error {
	sym, err := d.NextSymbol()
	if err != nil {
		return err
	}
	sec := d.sec.Current()
	slotOff := sec.Reserve(4)

	if loc, known := d.sym.Lookup(sym.Value); known && loc.Section == sec {
		size := int64(slotOff) - int64(loc.Offset)
		sec.PatchU32LE(slotOff, uint32(size))
		return nil
	}

	d.sym.Schedule(sym.Value, func(symAddr Address) error {
		bases := d.pendingBases
		slotAddr := bases[sec].Add(slotOff)
		size := symAddr.Diff(slotAddr) - 4
		if symAddr.Less(slotAddr) {
			size = slotAddr.Diff(symAddr)
		}
		sec.PatchU32LE(slotOff, uint32(size))
		return nil
	})
	return nil
}

// directiveStrlen emits the byte length of a literal string argument as
// a 4-byte word — unlike .size, its operand is the string itself, not
// a symbol naming one already emitted elsewhere.
func directiveStrlen(d *Driver, tok Token) error {
	str, err := d.Next(TKString)
	if err != nil {
		return err
	}
	d.sec.Current().WriteU32LE(uint32(len(str.Value)))
	return nil
}

func directiveAsciiLike(d *Driver, tok Token, nullTerminate bool) error {
	str, err := d.Next(TKString)
	if err != nil {
		return err
	}
	sec := d.sec.Current()
	sec.WriteBytes([]byte(str.Value))
	if nullTerminate {
		sec.WriteByte(0)
	}
	return nil
}

func directiveZero(d *Driver, tok Token) error {
	n, err := d.NextImm()
	if err != nil {
		return err
	}
	if n < 0 {
		return &RangeError{Value: n, Msg: ".zero count must not be negative"}
	}
	d.sec.Current().Reserve(int(n))
	return nil
}

// directiveInclude splices the tokenized contents of another source file
// in place at the current position, so nested .include is just another
// level of the same splice (no separate stack bookkeeping needed).
func directiveInclude(d *Driver, tok Token) error {
	path, err := d.Next(TKString)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path.Value)
	if err != nil {
		return &StructuralError{Line: tok.Line, Msg: fmt.Sprintf("cannot include %q: %v", path.Value, err)}
	}
	included, err := Classify(Split(string(raw)))
	if err != nil {
		return err
	}
	rest := d.tokens[d.pos:]
	d.tokens = append(append([]Token{}, included...), rest...)
	d.pos = 0
	return nil
}
