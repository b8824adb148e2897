package main

// Register-register and register-immediate ALU opcodes, in both the
// full 64-bit form (add, addi, ...) and the RV64-only word-width form
// that operates on the low 32 bits and sign-extends the result (addw,
// addiw, ...).

type rTypeSpec struct {
	name           string
	funct3, funct7 uint32
}

var rTypeOps = []rTypeSpec{
	{"add", 0x0, 0x00},
	{"sub", 0x0, 0x20},
	{"sll", 0x1, 0x00},
	{"slt", 0x2, 0x00},
	{"sltu", 0x3, 0x00},
	{"xor", 0x4, 0x00},
	{"srl", 0x5, 0x00},
	{"sra", 0x5, 0x20},
	{"or", 0x6, 0x00},
	{"and", 0x7, 0x00},
}

var rTypeWordOps = []rTypeSpec{
	{"addw", 0x0, 0x00},
	{"subw", 0x0, 0x20},
	{"sllw", 0x1, 0x00},
	{"srlw", 0x5, 0x00},
	{"sraw", 0x5, 0x20},
}

// mulDivOps is the RV32M/RV64M standard extension: same R-type shape,
// funct7 fixed at 0x01.
var mulDivOps = []rTypeSpec{
	{"mul", 0x0, 0x01},
	{"mulh", 0x1, 0x01},
	{"mulhsu", 0x2, 0x01},
	{"mulhu", 0x3, 0x01},
	{"div", 0x4, 0x01},
	{"divu", 0x5, 0x01},
	{"rem", 0x6, 0x01},
	{"remu", 0x7, 0x01},
}

var mulDivWordOps = []rTypeSpec{
	{"mulw", 0x0, 0x01},
	{"divw", 0x4, 0x01},
	{"divuw", 0x5, 0x01},
	{"remw", 0x6, 0x01},
	{"remuw", 0x7, 0x01},
}

func makeRTypeOpcode(spec rTypeSpec, baseOpcode uint32) *Opcode {
	return &Opcode{Name: spec.name, Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
		if err != nil {
			return err
		}
		rs1, err := d.NextRegister()
		if err != nil {
			return err
		}
		rs2, err := d.NextRegister()
		if err != nil {
			return err
		}
		d.Emit32(encodeRType(baseOpcode, spec.funct3, spec.funct7, uint32(rd), uint32(rs1), uint32(rs2)))
		return nil
	}}
}

type iTypeSpec struct {
	name    string
	funct3  uint32
	shift   bool // slli/srli/srai: immediate is a 6-bit shift amount, top bits hold funct7-style variant
	variant uint32
}

var iTypeOps = []iTypeSpec{
	{name: "addi", funct3: 0x0},
	{name: "slti", funct3: 0x2},
	{name: "sltiu", funct3: 0x3},
	{name: "xori", funct3: 0x4},
	{name: "ori", funct3: 0x6},
	{name: "andi", funct3: 0x7},
	{name: "slli", funct3: 0x1, shift: true, variant: 0x00},
	{name: "srli", funct3: 0x5, shift: true, variant: 0x00},
	{name: "srai", funct3: 0x5, shift: true, variant: 0x20},
}

var iTypeWordOps = []iTypeSpec{
	{name: "addiw", funct3: 0x0},
	{name: "slliw", funct3: 0x1, shift: true, variant: 0x00},
	{name: "srliw", funct3: 0x5, shift: true, variant: 0x00},
	{name: "sraiw", funct3: 0x5, shift: true, variant: 0x20},
}

func makeITypeOpcode(spec iTypeSpec, baseOpcode uint32, wordWidth bool) *Opcode {
	return &Opcode{Name: spec.name, Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
		if err != nil {
			return err
		}
		rs1, err := d.NextRegister()
		if err != nil {
			return err
		}
		imm, err := d.NextImm()
		if err != nil {
			return err
		}
		if spec.shift {
			shamtBits := 6
			if wordWidth {
				shamtBits = 5
			}
			max := int64(1<<uint(shamtBits)) - 1
			if imm < 0 || imm > max {
				return &RangeError{Value: imm, Msg: spec.name + " shift amount out of range"}
			}
			packed := int32(spec.variant<<5) | int32(imm)
			d.Emit32(encodeIType(baseOpcode, spec.funct3, uint32(rd), uint32(rs1), packed))
			return nil
		}
		if !fitsI12(imm) {
			return &RangeError{Value: imm, Msg: spec.name + " immediate must fit in 12 bits"}
		}
		d.Emit32(encodeIType(baseOpcode, spec.funct3, uint32(rd), uint32(rs1), int32(imm)))
		return nil
	}}
}

func registerArithOpcodes(tbl map[string]*Opcode) {
	for _, spec := range rTypeOps {
		tbl[spec.name] = makeRTypeOpcode(spec, opOP)
	}
	for _, spec := range rTypeWordOps {
		tbl[spec.name] = makeRTypeOpcode(spec, opOP32)
	}
	for _, spec := range mulDivOps {
		tbl[spec.name] = makeRTypeOpcode(spec, opOP)
	}
	for _, spec := range mulDivWordOps {
		tbl[spec.name] = makeRTypeOpcode(spec, opOP32)
	}
	for _, spec := range iTypeOps {
		tbl[spec.name] = makeITypeOpcode(spec, opIMM, false)
	}
	for _, spec := range iTypeWordOps {
		tbl[spec.name] = makeITypeOpcode(spec, opIMM32, true)
	}

	tbl["lui"] = &Opcode{Name: "lui", Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
		if err != nil {
			return err
		}
		imm, err := d.NextImm()
		if err != nil {
			return err
		}
		d.Emit32(encodeUType(opLUI, uint32(rd), uint32(imm)))
		return nil
	}}
	tbl["auipc"] = &Opcode{Name: "auipc", Handler: func(d *Driver) error {
		rd, err := d.NextRegister()
		if err != nil {
			return err
		}
		imm, err := d.NextImm()
		if err != nil {
			return err
		}
		d.Emit32(encodeUType(opAUIPC, uint32(rd), uint32(imm)))
		return nil
	}}
}
