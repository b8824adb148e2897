package main

// Branch and direct-jump opcodes. A branch/jump to a forward label is
// emitted with a zero placeholder immediate and a fix-up is scheduled;
// per SPEC_FULL.md's resolved open questions, branch fix-ups apply no
// bounds check (silently truncating an out-of-range diff into the
// B-type sub-fields) while JAL-based fix-ups (jmp/call) do check the
// signed 21-bit range and fail with a RangeError when exceeded.

func makeBranchOpcode(name string, funct3 uint32) *Opcode {
	return &Opcode{Name: name, Handler: func(d *Driver) error {
		rs1, err := d.NextRegister()
		if err != nil {
			return err
		}
		rs2, err := d.NextRegister()
		if err != nil {
			return err
		}
		target, err := d.NextSymbol()
		if err != nil {
			return err
		}
		sec := d.Sections().Current()
		instrOff := sec.Len()
		d.Emit32(encodeBType(opBRANCH, funct3, uint32(rs1), uint32(rs2), 0))

		d.Symbols().Schedule(target.Value, branchFixup(sec, instrOff, funct3, rs1, rs2, d))
		return nil
	}}
}

// branchFixup returns a closure over (section, offset) — not a raw
// pointer — so it keeps working even if the section's backing array is
// reallocated by further appends before Finish runs.
func branchFixup(sec *Section, instrOff uint64, funct3 uint32, rs1, rs2 uint8, d *Driver) func(Address) error {
	return func(targetAddr Address) error {
		bases := d.pendingBases
		instrAddr := bases[sec].Add(instrOff)
		diff := targetAddr.Diff(instrAddr)
		sec.PatchU32LE(instrOff, encodeBType(opBRANCH, funct3, uint32(rs1), uint32(rs2), int32(diff)))
		return nil
	}
}

func jalFixup(sec *Section, instrOff uint64, rd uint8, d *Driver, name string) func(Address) error {
	return func(targetAddr Address) error {
		bases := d.pendingBases
		instrAddr := bases[sec].Add(instrOff)
		diff := targetAddr.Diff(instrAddr)
		if diff < jimmMin || diff > jimmMax {
			return &RangeError{Value: diff, Msg: name + " target out of range for a 21-bit JAL offset"}
		}
		sec.PatchU32LE(instrOff, encodeJType(opJAL, uint32(rd), int32(diff)))
		return nil
	}
}

func registerBranchOpcodes(tbl map[string]*Opcode) {
	tbl["beq"] = makeBranchOpcode("beq", 0x0)
	tbl["bne"] = makeBranchOpcode("bne", 0x1)
	tbl["blt"] = makeBranchOpcode("blt", 0x4)
	tbl["bge"] = makeBranchOpcode("bge", 0x5)
	tbl["bltu"] = makeBranchOpcode("bltu", 0x6)
	tbl["bgeu"] = makeBranchOpcode("bgeu", 0x7)

	tbl["jal"] = &Opcode{Name: "jal", Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
		if err != nil {
			return err
		}
		target, err := d.NextSymbol()
		if err != nil {
			return err
		}
		sec := d.Sections().Current()
		instrOff := sec.Len()
		d.Emit32(encodeJType(opJAL, uint32(rd), 0))
		d.Symbols().Schedule(target.Value, jalFixup(sec, instrOff, rd, d, "jal"))
		return nil
	}}

	tbl["jalr"] = &Opcode{Name: "jalr", Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
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
			return &RangeError{Value: offset, Msg: "jalr offset must fit in 12 bits"}
		}
		d.Emit32(encodeIType(opJALR, 0x0, uint32(rd), uint32(base), int32(offset)))
		return nil
	}}

	tbl["ecall"] = &Opcode{Name: "ecall", Handler: func(d *Driver) error {
		d.Emit32(encodeIType(opSYSTEM, 0x0, 0, 0, 0))
		return nil
	}}
	tbl["ebreak"] = &Opcode{Name: "ebreak", Handler: func(d *Driver) error {
		d.Emit32(encodeIType(opSYSTEM, 0x0, 0, 0, 1))
		return nil
	}}
}
