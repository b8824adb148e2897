package main

import "testing"

func testImage() (ObjectImage, *Section, *Section) {
	text := NewSection("text", AttrCode, 0)
	text.WriteBytes([]byte{0x13, 0x05, 0x10, 0x00}) // addi a0, x0, 1 (arbitrary bytes)
	data := NewSection("data", AttrData, 1)
	data.WriteBytes([]byte{1, 2, 3, 4})

	bases := map[*Section]Address{
		text: AddressFromUint64(0x100000),
		data: AddressFromUint64(0x101000),
	}
	img := ObjectImage{
		Sections: []*Section{text, data},
		Bases:    bases,
		Symbols: map[string]Address{
			"_start": AddressFromUint64(0x100000),
			"msg":    AddressFromUint64(0x101000),
		},
		Global: map[string]bool{"_start": true},
		Types:  map[string]uint32{"_start": sttFunc, "msg": sttObject},
		Sizes:  map[string]uint32{"msg": 4},
		Entry:  AddressFromUint64(0x100000),
		OSABI:  0,
	}
	return img, text, data
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}
func le32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}
func le64(b []byte, off int) uint64 {
	return uint64(le32(b, off)) | uint64(le32(b, off+4))<<32
}

func TestBuildELF64HeaderShape(t *testing.T) {
	img, _, _ := testImage()
	out := BuildELF64(img)

	if string(out[0:4]) != "\x7fELF" {
		t.Fatalf("bad ELF magic: %v", out[0:4])
	}
	if out[4] != 2 {
		t.Fatalf("expected ELFCLASS64 (2), got %d", out[4])
	}
	if le16(out, 16) != 2 {
		t.Fatalf("expected ET_EXEC (2), got %d", le16(out, 16))
	}
	if le16(out, 18) != 0xf3 {
		t.Fatalf("expected EM_RISCV (0xf3), got %#x", le16(out, 18))
	}
	if le64(out, 24) != 0x100000 {
		t.Fatalf("expected entry 0x100000, got %#x", le64(out, 24))
	}
	ehSize := int(ehdrSize(false))
	if le16(out, ehSize-8) != uint16(len(img.Sections)) {
		t.Fatalf("e_phnum must equal the real section count, got %d", le16(out, ehSize-8))
	}
	if le16(out, ehSize-6) != shdrEntSize {
		t.Fatalf("bad e_shentsize: %d", le16(out, ehSize-6))
	}
	if le16(out, ehSize-4) != 4 {
		t.Fatalf("e_shnum must be fixed at 4 (NULL+shstrtab+symtab+strtab), got %d", le16(out, ehSize-4))
	}
	if le16(out, ehSize-2) != 1 {
		t.Fatalf("e_shstrndx must be fixed at 1, got %d", le16(out, ehSize-2))
	}
}

func TestBuildELF64ProgramHeaderFlags(t *testing.T) {
	img, text, data := testImage()
	out := BuildELF64(img)

	ehSize := ehdrSize(false)
	phOff := le64(out, 32)
	if phOff != ehSize+4*shdrEntSize {
		t.Fatalf("expected phoff right after the fixed 4-entry shdr table, got %#x", phOff)
	}

	phEnt := int(phOff) // text is the first program header
	ptype := le32(out, phEnt)
	flags := le32(out, phEnt+4)
	if ptype != ptLoad {
		t.Fatalf("expected text's p_type == PT_LOAD, got %d", ptype)
	}
	if flags&pfExec == 0 {
		t.Fatalf("expected text's p_flags to include PF_X, got %#x", flags)
	}
	if flags&pfRead != 0 || flags&pfWrite != 0 {
		t.Fatalf("a plain code section gets neither PF_R nor PF_W per the original writer, got %#x", flags)
	}

	dataEnt := phEnt + int(phdrEntSize(false))
	dataFlags := le32(out, dataEnt+4)
	if dataFlags&pfRead == 0 || dataFlags&pfWrite == 0 {
		t.Fatalf("expected data's p_flags to include PF_R and PF_W, got %#x", dataFlags)
	}
	_ = text
	_ = data
}

func TestBuildELF64SymtabEntries(t *testing.T) {
	img, _, _ := testImage()
	out := BuildELF64(img)

	shOff := le64(out, 40)
	symtabShdr := int(shOff) + 2*shdrEntSize // NULL, shstrtab, symtab
	symtabOff := le64(out, symtabShdr+24)
	symtabSize := le64(out, symtabShdr+32)
	if symtabSize%symEntSize(false) != 0 {
		t.Fatalf("symtab size must be a multiple of one entry, got %d", symtabSize)
	}

	// First real entry after the mandatory null one; symbols are sorted
	// locals-then-globals, alphabetically within each group, so "msg"
	// (local) comes before "_start" (global).
	firstSym := int(symtabOff) + int(symEntSize(false))
	shndx := le16(out, firstSym+6)
	if shndx != shnUndef {
		t.Fatalf("expected st_shndx == SHN_UNDEF, got %d", shndx)
	}
	info := out[firstSym+4]
	bind := info >> 4
	typ := info & 0xf
	if bind != stbLocal {
		t.Fatalf("expected msg to be local, got bind %d", bind)
	}
	if typ != sttObject {
		t.Fatalf("expected msg's type to be STT_OBJECT, got %d", typ)
	}
}

func TestBuildELF128WidensAddressFieldsOnly(t *testing.T) {
	img, _, _ := testImage()
	out := BuildELF128(img)

	if out[4] != 3 {
		t.Fatalf("expected the custom ELFCLASS128 marker (3), got %d", out[4])
	}
	wideEhSize := int(ehdrSize(true))
	if le16(out, wideEhSize-4) != 4 || le16(out, wideEhSize-2) != 1 {
		t.Fatalf("the wide variant keeps the same fixed shnum=4/shstrndx=1 shape")
	}
	if phdrEntSize(true) != phdrEntSize(false)+16 {
		t.Fatalf("expected the wide phdr to be exactly 16 bytes larger (p_vaddr+p_paddr), got %d vs %d",
			phdrEntSize(true), phdrEntSize(false))
	}
	if symEntSize(true) != symEntSize(false)+8 {
		t.Fatalf("expected the wide symtab entry to be exactly 8 bytes larger (st_value), got %d vs %d",
			symEntSize(true), symEntSize(false))
	}
}

func TestBuildRawBinPicksExecutableSection(t *testing.T) {
	img, text, _ := testImage()
	out := BuildRawBin(img)
	if string(out) != string(text.Output) {
		t.Fatalf("expected the raw binary to be the code section's bytes verbatim")
	}
}
