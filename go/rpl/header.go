// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import "github.com/Exzap/wut-tools/go/elf"

// FixHeader implements the Header Fixer stage: it stamps the
// identification and header fields the Cafe loader expects in place of
// whatever the input ELF (a relocatable object, most likely) carried,
// and drops the program header table entirely since RPL/RPX files are
// loaded section-by-section rather than segment-by-segment.
func FixHeader(e *elf.Elf) {
	e.Class = elf.ELFCLASS32
	e.Endian = elf.ELFDATA2MSB
	e.HeaderVersion = 1
	e.ABI = elf.EABI_CAFE
	e.ABIVersion = 0

	e.Type = elf.ET_CAFE_RPL
	e.Machine = elf.EM_PPC
	e.Version = elf.EV_CURRENT

	e.SetProgramHeaderOffset(0)
	e.SetProgramHeaderCount(0)
	e.SetProgramHeaderEntrySize(0)

	e.SetEhSize(uint16(e.SizeofHeader()))
	e.SetSectionHeaderEntrySize(uint16(e.SizeofSectionHeader()))
	e.SetSectionHeaderCount(uint16(len(e.Sections)))
	e.SetSectionHeaderOffset(uint64(alignUp(uint32(e.SizeofHeader()), 64)))

	if idx := e.SectionIndex(".shstrtab"); idx >= 0 {
		e.SetSectionHeaderStringIndex(uint16(idx))
	}
}
