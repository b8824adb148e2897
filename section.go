package main

import (
	"fmt"
	"log"
)

// SectionAttr are the attribute bits a section can carry. They drive the
// page-separation policy and the ELF program header flags.
type SectionAttr int

const (
	AttrCode SectionAttr = 1 << iota
	AttrData
	AttrResv
	AttrReadOnly
	AttrExecOnly
)

func (a SectionAttr) Executable() bool { return a&(AttrCode|AttrExecOnly) != 0 }
func (a SectionAttr) Writable() bool   { return a&(AttrReadOnly|AttrExecOnly) == 0 }

// pendingLabel is a label seen but not yet bound to an offset; the
// driver binds it to the section's current length ahead of the next
// directive, opcode or pseudo-op, or in Finish.
type pendingLabel struct {
	name string
	line uint32
}

// Section is a named, growable byte buffer with an insertion-order index,
// optional explicit base address (.org), and a queue of labels waiting
// to be bound to the next emitted byte.
type Section struct {
	Name    string
	Attr    SectionAttr
	Index   int
	Output  []byte
	Base    *Address // non-nil once .org is used
	pending []pendingLabel
}

func NewSection(name string, attr SectionAttr, index int) *Section {
	return &Section{Name: name, Attr: attr, Index: index}
}

func (s *Section) Len() uint64 { return uint64(len(s.Output)) }

// QueueLabel defers a label until the driver next flushes labels, per the
// "label-before-instruction addressing" testable property: a label
// immediately preceding an instruction must resolve to that
// instruction's address, not the byte after it.
func (s *Section) QueueLabel(name string, line uint32) {
	s.pending = append(s.pending, pendingLabel{name, line})
}

// FlushLabels empties the label queue and returns the queued labels; the
// caller binds them to an offset in the SymbolTable.
func (s *Section) FlushLabels() []pendingLabel {
	if len(s.pending) == 0 {
		return nil
	}
	out := s.pending
	s.pending = nil
	return out
}

func (s *Section) WriteByte(b byte) {
	s.Output = append(s.Output, b)
}

func (s *Section) WriteBytes(bs []byte) {
	s.Output = append(s.Output, bs...)
}

func (s *Section) WriteU32LE(v uint32) {
	s.Output = append(s.Output, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func (s *Section) PatchU32LE(offset uint64, v uint32) {
	s.Output[offset] = byte(v)
	s.Output[offset+1] = byte(v >> 8)
	s.Output[offset+2] = byte(v >> 16)
	s.Output[offset+3] = byte(v >> 24)
}

// Align pads the section with zero bytes up to the next multiple of a
// (a no-op if a <= 1 or the section is already aligned).
func (s *Section) Align(a int) {
	if a <= 1 {
		return
	}
	for len(s.Output)%a != 0 {
		s.Output = append(s.Output, 0)
	}
}

// Reserve appends n zero bytes and returns the offset they start at,
// used by .size and la for space a later fix-up patches, and by .zero
// and the res* pseudo-ops for plain zero fill.
func (s *Section) Reserve(n int) uint64 {
	off := s.Len()
	for i := 0; i < n; i++ {
		s.Output = append(s.Output, 0)
	}
	return off
}

func (s *Section) String() string {
	return fmt.Sprintf("%s(attr=%v,len=%d)", s.Name, s.Attr, len(s.Output))
}

// SectionSet owns every section in insertion order and the active
// section the driver is currently emitting into.
type SectionSet struct {
	order   []*Section
	byName  map[string]*Section
	current *Section
	verbose bool
}

func NewSectionSet(verbose bool) *SectionSet {
	return &SectionSet{byName: make(map[string]*Section), verbose: verbose}
}

func (ss *SectionSet) Get(name string, attr SectionAttr) *Section {
	if sec, ok := ss.byName[name]; ok {
		return sec
	}
	sec := NewSection(name, attr, len(ss.order))
	ss.order = append(ss.order, sec)
	ss.byName[name] = sec
	return sec
}

func (ss *SectionSet) Switch(name string, attr SectionAttr) *Section {
	sec := ss.Get(name, attr)
	ss.current = sec
	if ss.verbose {
		log.Printf("section: switched to %s", sec)
	}
	return sec
}

func (ss *SectionSet) Current() *Section {
	if ss.current == nil {
		ss.current = ss.Switch("text", AttrCode)
	}
	return ss.current
}

func (ss *SectionSet) All() []*Section { return ss.order }

// AssignBases walks the sections in insertion order, assigning each one
// a base address: sections with an explicit .org keep it; everything
// else stacks after the previous section, page-aligned to 4KiB whenever
// the executable/writable attribute changes from the previous section
// (and pageSeparate is enabled), per the Non-goals-exempt ambient
// placement policy in spec.md §4.6.
func (ss *SectionSet) AssignBases(start Address, pageSeparate bool) map[*Section]Address {
	bases := make(map[*Section]Address)
	cursor := start
	var prev *Section
	for _, sec := range ss.order {
		if sec.Base != nil {
			bases[sec] = *sec.Base
			cursor = sec.Base.Add(sec.Len()).AlignUp(16)
			prev = sec
			continue
		}
		if pageSeparate && prev != nil && attrTransition(prev.Attr, sec.Attr) {
			cursor = cursor.AlignUp(4096)
		}
		bases[sec] = cursor
		cursor = cursor.Add(sec.Len()).AlignUp(16)
		prev = sec
	}
	return bases
}

func attrTransition(prev, next SectionAttr) bool {
	return prev.Executable() != next.Executable() || prev.Writable() != next.Writable()
}
