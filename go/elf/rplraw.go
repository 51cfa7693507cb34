// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"io"
	"slices"
)

type stringTable struct {
	strings map[string]uint32
	pos     uint32
}

func newStringTable() stringTable {
	return stringTable{strings: make(map[string]uint32)}
}

func (t *stringTable) Add(s string) uint32 {
	if val, ok := t.strings[s]; ok {
		return val
	}
	pos := t.pos
	t.pos += uint32(len(s)) + 1
	t.strings[s] = pos
	return pos
}

func (t *stringTable) ToData() []byte {
	data := make([]byte, t.pos)
	for s, i := range t.strings {
		data = slices.Replace(data, int(i), int(i)+len(s), []byte(s)...)
	}
	return data
}

// ReadRawSections parses an ELF file into its section headers and raw
// section bytes. SYMTAB, STRTAB and REL/RELA sections are kept as
// first-class members of Sections rather than folded into a separate
// symbol/relocation model, so later stages can relocate and resize them
// like any other section.
func ReadRawSections(r io.ReadSeeker) (error, *Elf) {
	e := &Elf{}
	e.symtabIdx = -1
	e.symtabShndxIdx = -1

	if err := e.readElfHeader(r); err != nil {
		return err, nil
	}

	r.Seek(int64(e.secHdrOffset), io.SeekStart)
	for i := 0; i < int(e.secHdrCount); i++ {
		err, hdr := e.readSectionHeader(r)
		if err != nil {
			return err, nil
		}
		e.Sections = append(e.Sections, hdr)
		if hdr.Type == SHT_SYMTAB {
			e.symtabIdx = i
		} else if hdr.Type == SHT_SYMTAB_SHNDX {
			e.symtabShndxIdx = i
		}
	}

	for i := 0; i < int(e.secHdrCount); i++ {
		hdr := e.Sections[i]
		if hdr.Link < SHN_LORESERVE {
			hdr.LinkSection = e.Sections[hdr.Link]
		}
		if hdr.Info < SHN_LORESERVE && hdr.Type.HasSectionInInfo() {
			hdr.InfoSection = e.Sections[hdr.Info]
		}
	}

	if e.secHdrStrIdx != SHN_UNDEF {
		for i := 0; i < int(e.secHdrCount); i++ {
			hdr := e.Sections[i]
			err, s := e.readString(r, int(e.secHdrStrIdx), uint64(hdr.nameOffset))
			if err != nil {
				return err, nil
			}
			hdr.Name = s
		}
	}

	return nil, e
}

// SectionIndex returns the index of the first section with the given
// name, or -1 if there is none. Used by the RPL Header Fixer to locate
// .shstrtab after sections have been appended/reordered.
func (e *Elf) SectionIndex(name string) int {
	for i, sh := range e.Sections {
		if sh.Name == name {
			return i
		}
	}
	return -1
}

// WriteRawSections serialises the header and Sections list back out in
// the same raw-section shape ReadRawSections reads: a linear layout of
// header, section header table, then each section's data in Sections
// order, with SYMTAB/STRTAB/RELA sections written as plain raw bytes
// rather than resynthesised from a structured symbol/relocation model.
// A fresh .shstrtab section carrying every section's name is appended
// so names round-trip through ReadRawSections; it is the one piece of
// bookkeeping every ELF file needs regardless of what sits on top, and
// the RPL pipeline keeps it, pointing shstrndx at it once the Header
// Fixer locates it by name. When Sections is empty a NULL section is
// written first, so .shstrtab never sits at index 0 (which reads back
// as SHN_UNDEF). This is the mirror ReadRawSections needs for round-
// tripping, and what the RPL pipeline's own tests use to build input
// fixtures, since those fixtures must carry raw SYMTAB/STRTAB/RELA
// bytes that a structured object model would resynthesise differently.
func (e *Elf) WriteRawSections(w io.Writer) error {
	sections := e.Sections
	if len(sections) == 0 {
		sections = append(sections, &SectionHeader{Type: SHT_NULL})
	}

	shstrtab := &SectionHeader{Name: ".shstrtab", Type: SHT_STRTAB}
	e.secHdrStrIdx = uint16(len(sections))
	sections = append(sections, shstrtab)

	names := newStringTable()
	for _, sh := range sections {
		sh.nameOffset = names.Add(sh.Name)
	}
	shstrtab.Data = names.ToData()

	e.secHdrEntrySize = uint16(e.sizeSectionHeader())
	e.secHdrCount = uint16(len(sections))
	e.headerSize = uint16(e.sizeElfHeader())
	e.secHdrOffset = uint64(e.headerSize)

	offset := e.secHdrOffset + uint64(e.secHdrCount)*uint64(e.secHdrEntrySize)
	for _, sh := range sections {
		if sh.Type.HasDataInFile() {
			sh.Size = uint32(len(sh.Data))
			sh.offset = offset
			offset += uint64(sh.Size)
		} else {
			sh.offset = 0
		}
	}

	if err := e.writeElfHeader(w); err != nil {
		return err
	}

	for _, sh := range sections {
		if err := e.writeSectionHeader(w, sh); err != nil {
			return err
		}
	}

	for _, sh := range sections {
		if sh.Type.HasDataInFile() {
			if _, err := w.Write(sh.Data); err != nil {
				return err
			}
		}
	}

	return nil
}
