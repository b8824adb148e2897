package main

import "testing"

func TestLiSmallValueIsSingleAddi(t *testing.T) {
	d := assembleOne(t, "li a0, 5")
	out := d.Sections().Current().Output
	if len(out) != 4 {
		t.Fatalf("expected a single instruction for a 12-bit value, got %d bytes", len(out))
	}
}

func TestLiLargeValueExpandsToMultipleInstructions(t *testing.T) {
	d := assembleOne(t, "li a0, 0x123456789")
	out := d.Sections().Current().Output
	if len(out) <= 4 {
		t.Fatalf("expected more than one instruction for a wide constant, got %d bytes", len(out))
	}
	if len(out)%4 != 0 {
		t.Fatalf("instruction stream must be word-aligned, got %d bytes", len(out))
	}
}

func TestLaForwardReferencePatchesReservedWindow(t *testing.T) {
	d := assembleOne(t, "la a0, target\ntarget:\nebreak")
	resolved, err := d.Finish(AddressFromUint64(0x1000), false)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, ok := resolved["target"]; !ok {
		t.Fatalf("expected target to resolve")
	}
	out := d.Sections().Current().Output
	if len(out) != 2*4+4 { // la's fixed 2-word window + ebreak
		t.Fatalf("got %d bytes, want %d", len(out), 2*4+4)
	}
	word0 := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	if word0&0x7f != opAUIPC {
		t.Fatalf("expected a nearby forward label to resolve via auipc, got opcode %#x", word0&0x7f)
	}
}

func TestSetSmallValueIsSameAsLi(t *testing.T) {
	d := assembleOne(t, "set a0, t0, 5")
	out := d.Sections().Current().Output
	if len(out) != 4 {
		t.Fatalf("expected a single instruction for a 12-bit value, got %d bytes", len(out))
	}
}

func TestSetWideValueUnpacksFourLimbs(t *testing.T) {
	d := assembleOne(t, "set a0, t0, 0x123456789abcdef0")
	out := d.Sections().Current().Output
	if len(out)%4 != 0 {
		t.Fatalf("instruction stream must be word-aligned, got %d bytes", len(out))
	}
	if len(out) <= 4 {
		t.Fatalf("expected a multi-limb expansion for a 64-bit value, got %d bytes", len(out))
	}
}

func TestFarcallEmitsLuiJalrPair(t *testing.T) {
	d := assembleOne(t, "farcall t1, target\ntarget:\nebreak")
	if _, err := d.Finish(AddressFromUint64(0x1000), false); err != nil {
		t.Fatalf("finish: %v", err)
	}
	out := d.Sections().Current().Output
	word0 := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	word1 := uint32(out[4]) | uint32(out[5])<<8 | uint32(out[6])<<16 | uint32(out[7])<<24
	if word0&0x7f != opLUI {
		t.Fatalf("farcall must start with lui, got opcode %#x", word0&0x7f)
	}
	if word1&0x7f != opJALR {
		t.Fatalf("farcall's second word must be jalr, got opcode %#x", word1&0x7f)
	}
}

func TestJmpForwardBranchResolves(t *testing.T) {
	d := assembleOne(t, "jmp done\nadd a0, a0, a0\ndone:\nebreak")
	if _, err := d.Finish(AddressFromUint64(0x1000), false); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestRetIsJalrRaZero(t *testing.T) {
	d := assembleOne(t, "ret")
	out := d.Sections().Current().Output
	word := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	if word&0x7f != opJALR {
		t.Fatalf("ret must encode a jalr")
	}
	rd := (word >> 7) & 0x1f
	rs1 := (word >> 15) & 0x1f
	if rd != regZero || rs1 != regRA {
		t.Fatalf("ret must be jalr zero, ra, 0, got rd=%d rs1=%d", rd, rs1)
	}
}
