package main

import "fmt"

// Load/store opcodes all share one operand order: loads take the base
// (address) register first, then the destination register, then an
// optional immediate offset (default 0); stores take the value register
// first, then the base register, then an optional immediate offset.
// rs1 is always the base/address register regardless of which operand
// position supplied it — see SPEC_FULL.md's resolution of the lq/sq
// operand-order open question.

var widthFunct3 = map[string]uint32{
	"b": 0x0, "h": 0x1, "w": 0x2, "d": 0x3, "q": 0x4,
}

// unsignedLoadFunct3 gives the zero-extending load variants distinct
// funct3 encodings from their signed counterparts; 0x4 is already taken
// by the nonstandard 128-bit "lq".
var unsignedLoadFunct3 = map[string]uint32{
	"bu": 0x5, "hu": 0x6, "wu": 0x7,
}

func makeLoadOpcode(name string, funct3 uint32) *Opcode {
	return &Opcode{Name: name, Handler: func(d *Driver) error {
		base, err := d.NextRegister()
		if err != nil {
			return err
		}
		dst, err := d.NextRegister()
		if err != nil {
			return err
		}
		offset, err := optionalImm(d)
		if err != nil {
			return err
		}
		if !fitsI12(offset) {
			return &RangeError{Value: offset, Msg: fmt.Sprintf("%s offset must fit in 12 bits", name)}
		}
		d.Emit32(encodeIType(opLOAD, funct3, uint32(dst), uint32(base), int32(offset)))
		return nil
	}}
}

func makeStoreOpcode(name, width string) *Opcode {
	funct3 := widthFunct3[width]
	return &Opcode{Name: name, Handler: func(d *Driver) error {
		value, err := d.NextRegister()
		if err != nil {
			return err
		}
		base, err := d.NextRegister()
		if err != nil {
			return err
		}
		offset, err := optionalImm(d)
		if err != nil {
			return err
		}
		if !fitsI12(offset) {
			return &RangeError{Value: offset, Msg: fmt.Sprintf("%s offset must fit in 12 bits", name)}
		}
		d.Emit32(encodeSType(opSTORE, funct3, uint32(base), uint32(value), int32(offset)))
		return nil
	}}
}

// optionalImm consumes a trailing constant-chain immediate if the next
// token looks like one (constant, symbol, or any operator word);
// otherwise it returns 0 without consuming anything, since the offset
// on a load/store is optional and defaults to 0.
func optionalImm(d *Driver) (int64, error) {
	tok, ok := d.peek()
	if !ok {
		return 0, nil
	}
	switch tok.Type {
	case TKConstant, TKSymbol:
		return d.NextImm()
	}
	if isOperatorWord(tok.Value) {
		return d.NextImm()
	}
	return 0, nil
}

func registerMemOpcodes(tbl map[string]*Opcode) {
	for _, w := range []string{"b", "h", "w", "d", "q"} {
		tbl["l"+w] = makeLoadOpcode("l"+w, widthFunct3[w])
		tbl["s"+w] = makeStoreOpcode("s"+w, w)
	}
	for _, w := range []string{"bu", "hu", "wu"} {
		tbl["l"+w] = makeLoadOpcode("l"+w, unsignedLoadFunct3[w])
	}
}
