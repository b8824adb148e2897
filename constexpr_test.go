package main

import "testing"

func TestConstFolderLeftAssociativeNoPrecedence(t *testing.T) {
	// 2 + 3 * 4 must fold left-to-right (= 20), not honor * precedence (= 14).
	f := newConstFolder()
	must(t, f.Feed(2))
	must(t, f.Op("+"))
	must(t, f.Feed(3))
	must(t, f.Op("*"))
	must(t, f.Feed(4))
	if got := f.Result(); got != 20 {
		t.Fatalf("got %d, want 20 (left-associative, no precedence)", got)
	}
}

func TestConstFolderTildeIsBitwiseComplement(t *testing.T) {
	f := newConstFolder()
	must(t, f.Op("~"))
	must(t, f.Feed(5))
	if got := f.Result(); got != ^int64(5) {
		t.Fatalf("got %d, want %d", got, ^int64(5))
	}
}

func TestConstFolderLeadingUnaryMinus(t *testing.T) {
	// The splitter always tokenizes a leading '-' as its own operator
	// token, so a source literal like "-5" reaches the folder as the
	// two-token sequence Op("-"), Feed(5), not a single signed literal.
	f := newConstFolder()
	must(t, f.Op("-"))
	must(t, f.Feed(5))
	if got := f.Result(); got != -5 {
		t.Fatalf("got %d, want -5", got)
	}
}

func TestConstFolderSingleValue(t *testing.T) {
	f := newConstFolder()
	must(t, f.Feed(42))
	if got := f.Result(); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestConstFolderShiftOperators(t *testing.T) {
	f := newConstFolder()
	must(t, f.Feed(1))
	must(t, f.Op("<<"))
	must(t, f.Feed(8))
	if got := f.Result(); got != 256 {
		t.Fatalf("got %d, want 256 (1<<8)", got)
	}
}

func TestConstFolderOperatorWithoutOperandFails(t *testing.T) {
	f := newConstFolder()
	must(t, f.Feed(1))
	must(t, f.Op("+"))
	if err := f.Op("*"); err == nil {
		t.Fatalf("expected error for operator following operator with no operand between")
	}
}

func TestConstFolderOperandWithoutOperatorFails(t *testing.T) {
	f := newConstFolder()
	must(t, f.Feed(1))
	if err := f.Feed(2); err == nil {
		t.Fatalf("expected error for operand with no pending operator")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
