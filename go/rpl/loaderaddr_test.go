// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Exzap/wut-tools/go/elf"
)

func newSymbolEntry(value uint32, typ elf.SymbolType) []byte {
	entry := make([]byte, symbolEntrySize)
	putBeUint32(entry[4:8], value)
	entry[12] = byte(typ)
	return entry
}

func TestRelocateLoaderAddressesMovesSymtab(t *testing.T) {
	text := &elf.SectionHeader{Type: elf.SHT_PROGBITS, Address: uint64(CodeBaseAddress), Data: make([]byte, 64)}
	symtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 4, Data: newSymbolEntry(CodeBaseAddress, elf.STT_FUNC)}

	e := &elf.Elf{Sections: []*elf.SectionHeader{text, symtab}}
	RelocateLoaderAddresses(e)

	assert.Equal(t, uint64(LoadBaseAddress), symtab.Address, "symtab relocated into the loader window")
	assert.NotEqual(t, elf.SectionHeaderFlag(0), symtab.Flags&elf.SHF_ALLOC, "ALLOC flag set on the moved section")
}

func TestRelocateLoaderAddressesRewritesSymbolValue(t *testing.T) {
	movedSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Address: 0x1000, Data: []byte{}}
	referencingSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Data: newSymbolEntry(0x1000, elf.STT_SECTION)}

	e := &elf.Elf{Sections: []*elf.SectionHeader{movedSymtab, referencingSymtab}}
	RelocateLoaderAddresses(e)

	gotValue := beUint32(referencingSymtab.Data[4:8])
	assert.Equal(t, uint32(LoadBaseAddress), gotValue, "symbol value exactly at old start is translated")
}

func TestRelocateLoaderAddressesInclusiveUpperBound(t *testing.T) {
	movedSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Address: 0x1000, Data: make([]byte, 16)}
	oldEnd := uint32(0x1000 + 16)
	referencingSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Data: newSymbolEntry(oldEnd, elf.STT_OBJECT)}

	e := &elf.Elf{Sections: []*elf.SectionHeader{movedSymtab, referencingSymtab}}
	RelocateLoaderAddresses(e)

	gotValue := beUint32(referencingSymtab.Data[4:8])
	assert.Equal(t, uint32(LoadBaseAddress)+16, gotValue, "value at the exact old end address is still translated")
}

func TestRelocateLoaderAddressesRewritesRelaOffset(t *testing.T) {
	movedStrtab := &elf.SectionHeader{Type: elf.SHT_STRTAB, AddrAlign: 1, Address: 0x2000, Data: make([]byte, 8)}
	e := &elf.Elf{Sections: []*elf.SectionHeader{movedStrtab}}
	strtabIndex := 0

	rela := newRelaSection(0, [4]uint32{0x2004, 0, uint32(elf.R_PPC_ADDR32), 0})
	rela.Info = uint32(strtabIndex)
	e.Sections = append(e.Sections, rela)

	RelocateLoaderAddresses(e)

	offset, _, _, _ := relaEntryAt(rela.Data, 0)
	assert.Equal(t, uint32(LoadBaseAddress)+4, offset, "relocation offset into the moved section is translated")
}

func TestRelocateLoaderAddressesIgnoresNonObjectSymbols(t *testing.T) {
	movedSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Address: 0x1000, Data: []byte{}}
	referencingSymtab := &elf.SectionHeader{Type: elf.SHT_SYMTAB, AddrAlign: 1, Data: newSymbolEntry(0x1000, elf.STT_FILE)}

	e := &elf.Elf{Sections: []*elf.SectionHeader{movedSymtab, referencingSymtab}}
	RelocateLoaderAddresses(e)

	gotValue := beUint32(referencingSymtab.Data[4:8])
	assert.Equal(t, uint32(0x1000), gotValue, "STT_FILE symbol value is left untouched")
}
