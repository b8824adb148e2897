package main

// opcodeTable and pseudoOpTable are built once at package init time from
// each opcode family's registerXxxOpcodes/registerPseudoOps function, and
// looked up by name during classification (see classifier.go).
var opcodeTable = buildOpcodeTable()
var pseudoOpTable = buildPseudoOpTable()

func buildOpcodeTable() map[string]*Opcode {
	tbl := make(map[string]*Opcode)
	registerMemOpcodes(tbl)
	registerBranchOpcodes(tbl)
	registerArithOpcodes(tbl)
	registerSystemOpcodes(tbl)
	return tbl
}

func buildPseudoOpTable() map[string]*PseudoOp {
	tbl := make(map[string]*PseudoOp)
	registerPseudoOps(tbl)
	registerDataEmitters(tbl)
	return tbl
}
