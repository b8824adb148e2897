package main

import "strconv"

// registerByName mirrors the original assembler's Registers::to_reg
// table, extended per SPEC_FULL.md with the "fp" alias for s0 (the
// frame-pointer name used in function prologues) and, in
// lookupRegister, the "x0".."x31" numeric forms.
var registerByName = map[string]uint8{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3,
	"tp": 4, "t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13,
	"a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21,
	"s6": 22, "s7": 23, "s8": 24, "s9": 25,
	"s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// lookupRegister resolves a canonical/alias ABI name first, then falls
// back to the numeric "x0".."x31" form.
func lookupRegister(name string) (uint8, bool) {
	if n, ok := registerByName[name]; ok {
		return n, true
	}
	if len(name) < 2 || name[0] != 'x' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 0 || n > 31 {
		return 0, false
	}
	return uint8(n), true
}
