package main

import "testing"

func TestDuplicateLabelsLastDefinitionWins(t *testing.T) {
	st := NewSymbolTable(false)
	sec := NewSection("text", AttrCode, 0)
	st.Define("x", SymbolLocation{Section: sec, Offset: 4})
	st.Define("x", SymbolLocation{Section: sec, Offset: 8})
	loc, ok := st.Lookup("x")
	if !ok || loc.Offset != 8 {
		t.Fatalf("expected last definition (offset 8) to win, got %+v", loc)
	}
}

func TestResolveAppliesFixupsInOrder(t *testing.T) {
	st := NewSymbolTable(false)
	sec := NewSection("text", AttrCode, 0)
	st.Define("target", SymbolLocation{Section: sec, Offset: 16})

	var seen []uint64
	st.Schedule("target", func(addr Address) error {
		seen = append(seen, addr.Uint64())
		return nil
	})
	st.Schedule("target", func(addr Address) error {
		seen = append(seen, addr.Uint64()+1)
		return nil
	})

	bases := map[*Section]Address{sec: AddressFromUint64(0x1000)}
	resolved, err := st.Resolve(bases)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved["target"].Uint64() != 0x1010 {
		t.Fatalf("got %#x, want 0x1010", resolved["target"].Uint64())
	}
	if len(seen) != 2 || seen[0] != 0x1010 || seen[1] != 0x1011 {
		t.Fatalf("fixups did not run in schedule order: %v", seen)
	}
}

func TestResolveUnknownSymbolIsUnresolvedError(t *testing.T) {
	st := NewSymbolTable(false)
	st.Schedule("missing", func(Address) error { return nil })
	_, err := st.Resolve(map[*Section]Address{})
	if _, ok := err.(*UnresolvedSymbolError); !ok {
		t.Fatalf("expected *UnresolvedSymbolError, got %v", err)
	}
}
