// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"github.com/Exzap/wut-tools/go/elf"
)

const symbolEntrySize = 16

// RelocateLoaderAddresses implements the Loader-Address Relocator stage.
// SYMTAB and STRTAB sections are not part of any loadable segment, but
// the Cafe loader still wants them reachable at run time, so it places
// them back to back starting at the loader virtual-address window and
// rewrites every symbol value and relocation offset that pointed into
// the section being moved.
//
// loadMax advances by each section's raw payload size, not by the
// aligned span the section actually took; when a section needed
// alignment padding, the next one's address is computed from a loadMax
// short of that section's end, so the two can overlap. This is the
// observed behaviour of the reference tool, reproduced verbatim.
func RelocateLoaderAddresses(e *elf.Elf) {
	loadMax := uint32(0)
	for _, sh := range e.Sections {
		if end := uint32(sh.Address) + uint32(len(sh.Data)); end > loadMax {
			loadMax = end
		}
	}
	if loadMax < LoadBaseAddress {
		loadMax = LoadBaseAddress
	}

	for i, sh := range e.Sections {
		if sh.Type != elf.SHT_SYMTAB && sh.Type != elf.SHT_STRTAB {
			continue
		}

		oldAddress := uint32(sh.Address)
		oldSize := uint32(len(sh.Data))
		newAddress := alignUp(loadMax, sh.AddrAlign)

		relocateSection(e, i, oldAddress, oldSize, newAddress)

		sh.Address = uint64(newAddress)
		sh.Flags |= elf.SHF_ALLOC

		loadMax += oldSize
	}
}

// relocateSection rewrites every symbol value and RELA relocation offset
// that fell within [oldAddress, oldAddress+oldSize] — inclusive at both
// ends, matching the reference tool — so it points into the section's
// new location instead. Only RELA sections whose info field names
// sectionIndex are in scope.
func relocateSection(e *elf.Elf, sectionIndex int, oldAddress, oldSize, newAddress uint32) {
	oldEnd := oldAddress + oldSize
	delta := int64(newAddress) - int64(oldAddress)

	for _, sh := range e.Sections {
		if sh.Type != elf.SHT_SYMTAB {
			continue
		}
		count := len(sh.Data) / symbolEntrySize
		for i := 0; i < count; i++ {
			off := i * symbolEntrySize
			typ := sh.Data[off+12] & 0xF
			if typ != byte(elf.STT_OBJECT) && typ != byte(elf.STT_FUNC) && typ != byte(elf.STT_SECTION) {
				continue
			}
			value := beUint32(sh.Data[off+4 : off+8])
			if value >= oldAddress && value <= oldEnd {
				putBeUint32(sh.Data[off+4:off+8], uint32(int64(value)+delta))
			}
		}
	}

	for _, sh := range e.Sections {
		if sh.Type != elf.SHT_RELA || int(sh.Info) != sectionIndex {
			continue
		}
		count := len(sh.Data) / relaEntrySize
		for i := 0; i < count; i++ {
			offset, symIndex, relType, addend := relaEntryAt(sh.Data, i)
			if offset >= oldAddress && offset <= oldEnd {
				putRelaEntry(sh.Data, i, uint32(int64(offset)+delta), symIndex, relType, addend)
			}
		}
	}
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func putBeUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}
