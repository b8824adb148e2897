package main

// System-call and privileged-instruction opcodes. ecall/ebreak are
// plain raw SYSTEM encodings; syscall is the Linux-style convenience
// wrapper that loads the call number into a7 first.

func registerSystemOpcodes(tbl map[string]*Opcode) {
	tbl["syscall"] = &Opcode{Name: "syscall", Handler: func(d *Driver) error {
		imm, err := d.NextImm()
		if err != nil {
			return err
		}
		d.Emit32(encodeIType(opIMM, 0x0, 17, regZero, int32(imm))) // addi a7, x0, imm
		d.Emit32(encodeIType(opSYSTEM, 0x0, 0, 0, 0))              // ecall
		return nil
	}}

	tbl["system"] = &Opcode{Name: "system", Handler: func(d *Driver) error {
		f3, err := d.NextImm()
		if err != nil {
			return err
		}
		imm, err := d.NextImm()
		if err != nil {
			return err
		}
		d.Emit32(encodeIType(opSYSTEM, uint32(f3), 0, 0, int32(imm)))
		return nil
	}}

	tbl["wfi"] = &Opcode{Name: "wfi", Handler: func(d *Driver) error {
		d.Emit32(encodeIType(opSYSTEM, 0x0, 0, 0, 0x105))
		return nil
	}}
}
