package main

import "sort"

// ELF object writer. The file layout mirrors the original's ElfData
// struct exactly: ELF header, a FIXED four-entry section-header table
// (NULL, .shstrtab, .symtab, .strtab — real program sections get no
// section-header entry at all, only a program header), one program
// header per real section, then the .shstrtab/.symtab/.strtab payloads,
// then every section's own bytes in insertion order.
const (
	shnUndef = 0

	shtNull   = 0
	shtSymtab = 2
	shtStrtab = 3

	ptLoad = 1
	pfExec = 0x1
	pfWrite = 0x2
	pfRead  = 0x4

	stbLocal  = 0
	stbGlobal = 1

	sttNotype = 0
	sttObject = 1
	sttFunc   = 2
)

// elfBuf is a small little-endian byte-appending buffer, the same
// pattern the teacher's emit helpers used (Write/Write2/Write4/Write8),
// kept local here since this is the only file that still needs it.
type elfBuf struct{ b []byte }

func (w *elfBuf) u8(v byte)    { w.b = append(w.b, v) }
func (w *elfBuf) u16(v uint16) { w.b = append(w.b, byte(v), byte(v>>8)) }
func (w *elfBuf) u32(v uint32) {
	w.b = append(w.b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func (w *elfBuf) u64(v uint64) {
	w.u32(uint32(v))
	w.u32(uint32(v >> 32))
}

// addr writes an Address field: 8 bytes normally, or 16 (lo then hi)
// when the image is the wide 128-bit variant.
func (w *elfBuf) addr(a Address, wide bool) {
	w.u64(a.Uint64())
	if wide {
		w.u64(a.Hi())
	}
}
func (w *elfBuf) pad(n int) {
	for i := 0; i < n; i++ {
		w.u8(0)
	}
}
func (w *elfBuf) bytes(bs []byte) { w.b = append(w.b, bs...) }
func (w *elfBuf) len() uint64     { return uint64(len(w.b)) }

// strtab accumulates null-terminated strings and hands back each one's
// offset, with the mandatory leading NUL entry at offset 0.
type strtab struct {
	buf []byte
}

func newStrtab() *strtab { return &strtab{buf: []byte{0}} }

func (s *strtab) add(name string) uint32 {
	off := uint32(len(s.buf))
	s.buf = append(s.buf, []byte(name)...)
	s.buf = append(s.buf, 0)
	return off
}

const shdrEntSize = 64

// addrWidth is 8 for the standard 64-bit ELF variant, 16 for the wide
// 128-bit one.
func addrWidth(wide bool) uint64 {
	if wide {
		return 16
	}
	return 8
}

func ehdrSize(wide bool) uint64  { return 64 + addrWidth(wide) - 8 }
func phdrEntSize(wide bool) uint64 {
	return 56 + 2*(addrWidth(wide)-8) // p_vaddr, p_paddr widen
}
func symEntSize(wide bool) uint64 {
	return 24 + (addrWidth(wide) - 8) // st_value widens
}

// ObjectImage is everything BuildELF needs: sections in insertion
// order, their assigned base addresses, every resolved symbol plus its
// global/type/size metadata, and the chosen entry point.
type ObjectImage struct {
	Sections []*Section
	Bases    map[*Section]Address
	Symbols  map[string]Address
	Global   map[string]bool
	Types    map[string]uint32
	Sizes    map[string]uint32
	Entry    Address
	OSABI    byte
}

// BuildELF64 renders img as a standard little-endian ELF64 executable
// for RISC-V (e_machine = EM_RISCV = 0xf3).
func BuildELF64(img ObjectImage) []byte {
	return buildELF(img, false)
}

// BuildELF128 is the same ELF-shaped layout as BuildELF64, widened only
// in the address-carrying fields (e_entry, p_vaddr/p_paddr, st_value) so
// a 128-bit address computed by this assembler's Address type
// round-trips without truncation. File-offset and size fields
// (phoff/shoff, p_offset/filesz/memsz, sh_offset/size) stay 8 bytes
// regardless, since no real object this assembler builds needs more
// than 64 bits of file-relative addressing.
func BuildELF128(img ObjectImage) []byte {
	return buildELF(img, true)
}

func buildELF(img ObjectImage, wide bool) []byte {
	names := make([]string, 0, len(img.Symbols))
	for name := range img.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	numLocal := 1 // the mandatory null entry
	for _, name := range names {
		if !img.Global[name] {
			numLocal++
		}
	}

	ehSize := ehdrSize(wide)
	phEntSize := phdrEntSize(wide)
	symSize := symEntSize(wide)

	// .shstrtab, .symtab, .strtab payloads sit right after the program
	// header table and before every section's own bytes; build their
	// contents first so their sizes are known before computing offsets.
	shstr := newStrtab()
	shstrNameOff := shstr.add(".shstrtab")
	symtabNameOff := shstr.add(".symtab")
	strtabNameOff := shstr.add(".strtab")

	strsym := newStrtab()
	symtab := &elfBuf{}
	symtab.pad(int(symSize)) // null symbol table entry
	writeSym := func(name string, global bool) {
		addr := img.Symbols[name]
		bind := byte(stbLocal)
		if global {
			bind = stbGlobal
		}
		typ := img.Types[name]
		symtab.u32(strsym.add(name))
		symtab.u8((bind << 4) | byte(typ&0xf))
		symtab.u8(0)
		symtab.u16(shnUndef)
		symtab.addr(addr, wide)
		symtab.u64(uint64(img.Sizes[name]))
	}
	for _, name := range names {
		if !img.Global[name] {
			writeSym(name, false)
		}
	}
	for _, name := range names {
		if img.Global[name] {
			writeSym(name, true)
		}
	}

	shOff := ehSize
	phOff := shOff + 4*shdrEntSize
	shstrOff := phOff + uint64(len(img.Sections))*phEntSize
	symtabOff := shstrOff + uint64(len(shstr.buf))
	strtabOff := symtabOff + symtab.len()
	payloadOff := strtabOff + uint64(len(strsym.buf))

	offsets := make(map[*Section]uint64, len(img.Sections))
	cursor := payloadOff
	for _, sec := range img.Sections {
		offsets[sec] = cursor
		cursor += sec.Len()
	}

	w := &elfBuf{}
	w.u8(0x7f)
	w.u8('E')
	w.u8('L')
	w.u8('F')
	if wide {
		w.u8(3) // custom: "ELFCLASS128"
	} else {
		w.u8(2) // ELFCLASS64
	}
	w.u8(1) // little endian
	w.u8(1) // EI_VERSION
	w.u8(img.OSABI)
	w.pad(8)
	w.u16(2)    // ET_EXEC
	w.u16(0xf3) // EM_RISCV
	w.u32(1)
	w.addr(img.Entry, wide)
	w.u64(phOff)
	w.u64(shOff)
	w.u32(0) // e_flags
	w.u16(uint16(ehSize))
	w.u16(uint16(phEntSize))
	w.u16(uint16(len(img.Sections)))
	w.u16(shdrEntSize)
	w.u16(4) // e_shnum: fixed NULL + .shstrtab + .symtab + .strtab
	w.u16(1) // e_shstrndx

	// Section-header table: NULL, .shstrtab, .symtab, .strtab. Real
	// program sections get no entry here at all.
	w.pad(shdrEntSize) // SHN_UNDEF

	w.u32(shstrNameOff)
	w.u32(shtStrtab)
	w.u64(0)
	w.u64(0)
	w.u64(shstrOff)
	w.u64(uint64(len(shstr.buf)))
	w.u32(0)
	w.u32(0)
	w.u64(1)
	w.u64(0)

	w.u32(symtabNameOff)
	w.u32(shtSymtab)
	w.u64(0)
	w.u64(0)
	w.u64(symtabOff)
	w.u64(symtab.len())
	w.u32(3) // sh_link -> .strtab's section-header index
	w.u32(uint32(numLocal))
	w.u64(8)
	w.u64(symSize)

	w.u32(strtabNameOff)
	w.u32(shtStrtab)
	w.u64(0)
	w.u64(0)
	w.u64(strtabOff)
	w.u64(uint64(len(strsym.buf)))
	w.u32(0)
	w.u32(0)
	w.u64(1)
	w.u64(0)

	// Program-header table: one PT_LOAD (or 0) entry per real section.
	for _, sec := range img.Sections {
		isCode := sec.Attr&AttrCode != 0
		isDataOrResv := sec.Attr&(AttrData|AttrResv) != 0
		loadable := isCode || sec.Attr&AttrData != 0
		var flags uint32
		if isCode {
			flags |= pfExec
		}
		if !isCode || sec.Attr&AttrExecOnly == 0 {
			if isDataOrResv {
				flags |= pfRead
				if sec.Attr&AttrReadOnly == 0 {
					flags |= pfWrite
				}
			}
		}
		ptype := uint32(0)
		if loadable {
			ptype = ptLoad
		}
		base := img.Bases[sec]
		filesz := sec.Len()
		if sec.Attr&AttrResv != 0 {
			filesz = 0
		}
		w.u32(ptype)
		w.u32(flags)
		w.u64(offsets[sec])
		w.addr(base, wide)
		w.addr(base, wide)
		w.u64(filesz)
		w.u64(sec.Len())
		w.u64(0) // p_align
	}

	w.bytes(shstr.buf)
	w.bytes(symtab.b)
	w.bytes(strsym.buf)
	for _, sec := range img.Sections {
		w.bytes(sec.Output)
	}

	return w.b
}

// BuildRawBin dumps the first code section's bytes with no header at
// all, for callers that just want a flat binary blob (outfile.bin).
func BuildRawBin(img ObjectImage) []byte {
	for _, sec := range img.Sections {
		if sec.Attr.Executable() {
			return append([]byte{}, sec.Output...)
		}
	}
	if len(img.Sections) > 0 {
		return append([]byte{}, img.Sections[0].Output...)
	}
	return nil
}
