package main

import "testing"

func TestAddressAddSub(t *testing.T) {
	a := AddressFromUint64(0x1000)
	b := a.Add(0x500)
	if b.Uint64() != 0x1500 {
		t.Fatalf("got %#x, want 0x1500", b.Uint64())
	}
	if b.Sub(0x500).Uint64() != a.Uint64() {
		t.Fatalf("sub did not invert add")
	}
}

func TestAddressDiffForwardAndBackward(t *testing.T) {
	a := AddressFromUint64(0x2000)
	b := AddressFromUint64(0x2010)
	if b.Diff(a) != 0x10 {
		t.Fatalf("forward diff: got %d, want 16", b.Diff(a))
	}
	if a.Diff(b) != -0x10 {
		t.Fatalf("backward diff: got %d, want -16", a.Diff(b))
	}
}

func TestAddressAlignUp(t *testing.T) {
	cases := []struct{ in, align, want uint64 }{
		{0x1000, 0x1000, 0x1000},
		{0x1001, 0x1000, 0x2000},
		{0x1fff, 0x1000, 0x2000},
		{0, 0x1000, 0},
	}
	for _, c := range cases {
		got := AddressFromUint64(c.in).AlignUp(c.align).Uint64()
		if got != c.want {
			t.Errorf("AlignUp(%#x, %#x) = %#x, want %#x", c.in, c.align, got, c.want)
		}
	}
}

func TestAddressLess(t *testing.T) {
	a := AddressFromUint64(10)
	b := AddressFromUint64(20)
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("Less ordering broken for %v, %v", a, b)
	}
}
