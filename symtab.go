package main

import "log"

// SymbolLocation is where a symbol was defined: a section plus a byte
// offset within it, resolved to an absolute Address only once section
// base addresses are assigned in the finisher.
type SymbolLocation struct {
	Section *Section
	Offset  uint64
	Line    uint32
	Global  bool
	Type    uint32 // STT_NOTYPE/STT_OBJECT/STT_FUNC, set by .type/.endfunc
	Size    uint32 // set by .endfunc
}

// ScheduledOp is a deferred fix-up: once every symbol's address is
// known, Apply patches the bytes it captured by (section, offset) at
// schedule time rather than holding a raw pointer, so it stays valid
// even though the section's backing slice may have been reallocated
// meanwhile.
type ScheduledOp struct {
	Symbol string
	Apply  func(addr Address) error
}

// SymbolTable owns every label/symbol definition and the queue of
// fix-ups waiting on one of them to resolve.
type SymbolTable struct {
	locations map[string]SymbolLocation
	fixups    []ScheduledOp
	verbose   bool
}

func NewSymbolTable(verbose bool) *SymbolTable {
	return &SymbolTable{locations: make(map[string]SymbolLocation), verbose: verbose}
}

// Define overwrites any prior definition of name, except that a Global
// flag set earlier by MarkGlobal (e.g. ".global foo" appearing before
// "foo:") and a Type/Size set earlier by .type/.endfunc are
// preserved rather than clobbered. Duplicate labels are never
// diagnosed (matches the original's unimplemented duplicate check);
// the last definition otherwise wins.
func (st *SymbolTable) Define(name string, loc SymbolLocation) {
	if st.verbose {
		log.Printf("label %s at %s off 0x%x", name, loc.Section.Name, loc.Offset)
	}
	if prev, ok := st.locations[name]; ok {
		if prev.Global {
			loc.Global = true
		}
		if prev.Type != 0 {
			loc.Type = prev.Type
		}
		if prev.Size != 0 {
			loc.Size = prev.Size
		}
	}
	st.locations[name] = loc
}

func (st *SymbolTable) MarkGlobal(name string) {
	loc, ok := st.locations[name]
	if !ok {
		st.locations[name] = SymbolLocation{Global: true}
		return
	}
	loc.Global = true
	st.locations[name] = loc
}

// SetType records a symbol's ELF type (STT_OBJECT/STT_FUNC/...),
// creating a placeholder entry if the symbol hasn't been defined yet
// (e.g. ".type foo, function" appearing before "foo:").
func (st *SymbolTable) SetType(name string, t uint32) {
	loc := st.locations[name]
	loc.Type = t
	st.locations[name] = loc
}

// SetSize records a symbol's byte size directly (as opposed to
// directiveSize's deferred-distance computation).
func (st *SymbolTable) SetSize(name string, size uint32) {
	loc := st.locations[name]
	loc.Size = size
	st.locations[name] = loc
}

func (st *SymbolTable) Lookup(name string) (SymbolLocation, bool) {
	loc, ok := st.locations[name]
	return loc, ok
}

func (st *SymbolTable) Known(name string) bool {
	_, ok := st.locations[name]
	return ok
}

// Schedule defers resolution of symbol to the finisher.
func (st *SymbolTable) Schedule(symbol string, apply func(addr Address) error) {
	st.fixups = append(st.fixups, ScheduledOp{Symbol: symbol, Apply: apply})
}

// Resolve computes the absolute address of every defined symbol given
// each section's assigned base, then applies every scheduled fix-up in
// the order it was registered.
func (st *SymbolTable) Resolve(bases map[*Section]Address) (map[string]Address, error) {
	resolved := make(map[string]Address, len(st.locations))
	for name, loc := range st.locations {
		if loc.Section == nil {
			continue // extern/global-only declaration with no definition
		}
		base, ok := bases[loc.Section]
		if !ok {
			return nil, &StructuralError{Line: loc.Line, Msg: "symbol " + name + " defined in an unassigned section"}
		}
		resolved[name] = base.Add(loc.Offset)
	}
	for _, fix := range st.fixups {
		addr, ok := resolved[fix.Symbol]
		if !ok {
			return nil, &UnresolvedSymbolError{Symbol: fix.Symbol}
		}
		if err := fix.Apply(addr); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func (st *SymbolTable) Names() []string {
	names := make([]string, 0, len(st.locations))
	for name := range st.locations {
		names = append(names, name)
	}
	return names
}
