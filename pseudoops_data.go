package main

import "os"

// Data pseudo-ops emit or reserve raw bytes at a given natural width,
// aligning the section to that width first, mirroring the original's
// pseudo_ops.cpp db/dh/dw/dd/dq/resb/resh/resw/resd/resq/incbin family.
var dataWidths = map[string]int{
	"b": 1, "h": 2, "w": 4, "d": 8, "q": 16,
}

func registerDataEmitters(tbl map[string]*PseudoOp) {
	for suffix, width := range dataWidths {
		width := width
		tbl["d"+suffix] = &PseudoOp{Name: "d" + suffix, Handler: func(d *Driver) error {
			v, err := d.NextImm()
			if err != nil {
				return err
			}
			sec := d.sec.Current()
			sec.Align(width)
			writeLEWidth(sec, uint64(v), width)
			return nil
		}}
		tbl["res"+suffix] = &PseudoOp{Name: "res" + suffix, Handler: func(d *Driver) error {
			n, err := d.NextImm()
			if err != nil {
				return err
			}
			if n < 0 {
				return &RangeError{Value: n, Msg: "res" + suffix + " count must not be negative"}
			}
			sec := d.sec.Current()
			sec.Align(width)
			sec.Reserve(int(n) * width)
			return nil
		}}
	}

	tbl["incbin"] = &PseudoOp{Name: "incbin", Handler: func(d *Driver) error {
		path, err := d.Next(TKString)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(path.Value)
		if err != nil {
			return &StructuralError{Line: path.Line, Msg: "cannot incbin " + path.Value + ": " + err.Error()}
		}
		d.sec.Current().WriteBytes(raw)
		return nil
	}}
}

// writeLEWidth writes v's low width bytes, little-endian. width is one
// of 1, 2, 4, 8, or 16 (the upper 64 bits of a 16-byte write are always
// zero: this assembler's constant folder only ever produces a 64-bit
// result).
func writeLEWidth(sec *Section, v uint64, width int) {
	for i := 0; i < width && i < 8; i++ {
		sec.WriteByte(byte(v >> (8 * uint(i))))
	}
	for i := 8; i < width; i++ {
		sec.WriteByte(0)
	}
}
