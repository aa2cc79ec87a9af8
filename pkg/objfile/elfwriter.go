package objfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/oisee/rvasm/pkg/riscv"
	"github.com/oisee/rvasm/pkg/symtab"
)

// GlobalSymbol is one name declared `.global`/`.globl`, tagged with the
// section it was ultimately found to belong to.
type GlobalSymbol struct {
	Name string
	Sec  symtab.SectionNdx
}

// LabelSymbol is one label defined in `.text`.
type LabelSymbol struct {
	Name   string
	Offset uint64
}

// Input is everything the ElfWriter needs to lay out and emit one object
// file: the finished instruction stream (in .text order), the .data bytes,
// the .bss logical size, every declared global symbol, every text label
// (for `.strtab` content and global symbol values), and the resolved
// relocation list.
type Input struct {
	Instructions []*riscv.Instruction
	Data         *ByteSection
	BssSize      uint64
	Globals      []GlobalSymbol
	Labels       []LabelSymbol
	Relocations  []symtab.Relocation
}

var realSectionOrder = []uint16{shText, shData, shBss, shStrtab, shSymtab, shRelaText}

// localSymCount is the null entry plus one STB_LOCAL/STT_SECTION entry per
// real section — fixed regardless of how many globals or labels exist.
const localSymCount = 1 + 6

// Write lays out and serializes one relocatable ELF64 object for EM_RISCV
// per the two-phase design: phase 1 computes every section's file offset,
// phase 2 walks the cursor from 0 writing each payload with zero-padding
// between sections.
func Write(w io.Writer, in Input) error {
	strtab := buildStrtab(in.Globals, in.Labels)
	shstrtab, names := buildShstrtab()

	var textSize uint64
	for _, instr := range in.Instructions {
		textSize += instr.Size()
	}

	labelOffset := make(map[string]uint64, len(in.Labels))
	for _, l := range in.Labels {
		labelOffset[l.Name] = l.Offset
	}
	nameOffsets := make(map[string]uint32, len(in.Globals))
	for _, g := range in.Globals {
		off, ok := strtab.FindOffset(g.Name)
		if !ok {
			return fmt.Errorf("objfile: global symbol %q missing from .strtab", g.Name)
		}
		nameOffsets[g.Name] = off
	}

	symtabSize := uint64(localSymCount+len(in.Globals)) * elf64SymSize
	relaSize := uint64(len(in.Relocations)) * elf64RelaSize

	// Phase 1: layout.
	offset := uint64(elf64EhdrSize)

	offset = alignUp(offset, 2)
	textOffset := offset
	offset += textSize

	dataOffset := offset
	offset += uint64(in.Data.Len())

	bssOffset := offset // SHT_NOBITS: contributes no file bytes.

	strtabOffset := offset
	offset += uint64(strtab.Len())

	offset = alignUp(offset, 8)
	symtabOffset := offset
	offset += symtabSize

	offset = alignUp(offset, 8)
	relaOffset := offset
	offset += relaSize

	shstrtabOffset := offset
	offset += uint64(shstrtab.Len())

	offset = alignUp(offset, 8)
	shoffOffset := offset

	symIndex := make(map[string]uint32, len(in.Globals))
	for i, g := range in.Globals {
		symIndex[g.Name] = uint32(1 + i)
	}

	symtabBuf := NewByteSection()
	_ = binary.Write(symtabBuf, binary.LittleEndian, Elf64Sym{})
	for _, g := range in.Globals {
		shndx, value := globalShndxValue(g, labelOffset)
		_ = binary.Write(symtabBuf, binary.LittleEndian, Elf64Sym{
			Name:  nameOffsets[g.Name],
			Info:  elfSymInfo(stbGlobal, sttNotype),
			Shndx: shndx,
			Value: value,
		})
	}
	for _, sec := range realSectionOrder {
		_ = binary.Write(symtabBuf, binary.LittleEndian, Elf64Sym{
			Info:  elfSymInfo(stbLocal, sttSection),
			Shndx: sec,
		})
	}

	relaBuf := NewByteSection()
	for _, r := range in.Relocations {
		idx, ok := symIndex[r.Symbol]
		if !ok {
			return fmt.Errorf("objfile: relocation against unknown symbol %q", r.Symbol)
		}
		_ = binary.Write(relaBuf, binary.LittleEndian, Elf64Rela{
			Offset: r.Offset,
			Info:   elfRInfo(idx, uint32(r.Type)),
			Addend: r.Addend,
		})
	}

	shdrs := make([]Elf64Shdr, shCount)
	shdrs[shNull] = Elf64Shdr{}
	shdrs[shText] = Elf64Shdr{
		Name: names.text, Type: shtProgbits, Flags: shfAlloc | shfExecInstr,
		Offset: textOffset, Size: textSize, Addralign: 2,
	}
	shdrs[shData] = Elf64Shdr{
		Name: names.data, Type: shtProgbits, Flags: shfAlloc | shfWrite,
		Offset: dataOffset, Size: uint64(in.Data.Len()), Addralign: 1,
	}
	shdrs[shBss] = Elf64Shdr{
		Name: names.bss, Type: shtNobits, Flags: shfAlloc | shfWrite,
		Offset: bssOffset, Size: in.BssSize, Addralign: 1,
	}
	shdrs[shStrtab] = Elf64Shdr{
		Name: names.strtab, Type: shtStrtab, Offset: strtabOffset, Size: uint64(strtab.Len()), Addralign: 1,
	}
	shdrs[shSymtab] = Elf64Shdr{
		Name: names.symtab, Type: shtSymtab, Offset: symtabOffset, Size: symtabSize,
		Link: shStrtab, Info: localSymCount, Addralign: 8, Entsize: elf64SymSize,
	}
	shdrs[shRelaText] = Elf64Shdr{
		Name: names.rela, Type: shtRela, Flags: shfInfoLink, Offset: relaOffset, Size: relaSize,
		Link: shSymtab, Info: shText, Addralign: 8, Entsize: elf64RelaSize,
	}
	shdrs[shShstrtab] = Elf64Shdr{
		Name: names.shstrtab, Type: shtStrtab, Offset: shstrtabOffset, Size: uint64(shstrtab.Len()), Addralign: 1,
	}

	ehdr := newEhdr()
	ehdr.Shoff = shoffOffset

	// Phase 2: emit.
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ehdr); err != nil {
		return fmt.Errorf("objfile: write ELF header: %w", err)
	}

	padTo(&buf, textOffset)
	for _, instr := range in.Instructions {
		b, err := riscv.EncodeBytes(instr)
		if err != nil {
			return fmt.Errorf("objfile: encode %s: %w", instr.Mnemonic(), err)
		}
		buf.Write(b)
	}

	padTo(&buf, dataOffset)
	buf.Write(in.Data.Bytes())

	padTo(&buf, strtabOffset)
	buf.Write(strtab.Bytes())

	padTo(&buf, symtabOffset)
	buf.Write(symtabBuf.Bytes())

	padTo(&buf, relaOffset)
	buf.Write(relaBuf.Bytes())

	padTo(&buf, shstrtabOffset)
	buf.Write(shstrtab.Bytes())

	padTo(&buf, shoffOffset)
	for _, sh := range shdrs {
		if err := binary.Write(&buf, binary.LittleEndian, sh); err != nil {
			return fmt.Errorf("objfile: write section header: %w", err)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func padTo(buf *bytes.Buffer, target uint64) {
	for uint64(buf.Len()) < target {
		buf.WriteByte(0)
	}
}

func alignUp(off, align uint64) uint64 {
	if rem := off % align; rem != 0 {
		return off + (align - rem)
	}
	return off
}

// buildStrtab matches the .strtab content contract: a leading NUL, then
// every extern/global symbol's name, then every defined text label's name.
func buildStrtab(globals []GlobalSymbol, labels []LabelSymbol) *ByteSection {
	s := NewByteSection()
	s.AppendUint8(0)
	for _, g := range globals {
		s.AppendString(g.Name)
	}
	for _, l := range labels {
		s.AppendString(l.Name)
	}
	return s
}

type shstrtabNames struct {
	text, data, bss, strtab, symtab, rela, shstrtab uint32
}

func buildShstrtab() (*ByteSection, shstrtabNames) {
	s := NewByteSection()
	s.AppendUint8(0)
	var n shstrtabNames
	n.text = s.AppendString(".text")
	n.data = s.AppendString(".data")
	n.bss = s.AppendString(".bss")
	n.strtab = s.AppendString(".strtab")
	n.symtab = s.AppendString(".symtab")
	n.rela = s.AppendString(".rela.text")
	n.shstrtab = s.AppendString(".shstrtab")
	return s, n
}

func globalShndxValue(g GlobalSymbol, labelOffset map[string]uint64) (uint16, uint64) {
	switch g.Sec {
	case symtab.SectionText:
		return shText, labelOffset[g.Name]
	case symtab.SectionData:
		return shData, 0
	case symtab.SectionBss:
		return shBss, 0
	default:
		return 0, 0
	}
}
