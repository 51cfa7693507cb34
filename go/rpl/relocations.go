// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"encoding/binary"
	"errors"

	"github.com/Exzap/wut-tools/go/elf"
)

const relaEntrySize = 12

func relaEntryAt(data []byte, i int) (offset, symIndex, relType uint32, addend int32) {
	off := i * relaEntrySize
	offset = binary.BigEndian.Uint32(data[off : off+4])
	info := binary.BigEndian.Uint32(data[off+4 : off+8])
	symIndex = info >> 8
	relType = info & 0xFF
	addend = int32(binary.BigEndian.Uint32(data[off+8 : off+12]))
	return
}

func putRelaEntry(data []byte, i int, offset, symIndex, relType uint32, addend int32) {
	off := i * relaEntrySize
	binary.BigEndian.PutUint32(data[off:off+4], offset)
	binary.BigEndian.PutUint32(data[off+4:off+8], (symIndex<<8)|(relType&0xFF))
	binary.BigEndian.PutUint32(data[off+8:off+12], uint32(addend))
}

func appendRelaEntry(data []byte, offset, symIndex, relType uint32, addend int32) []byte {
	entry := make([]byte, relaEntrySize)
	binary.BigEndian.PutUint32(entry[0:4], offset)
	binary.BigEndian.PutUint32(entry[4:8], (symIndex<<8)|(relType&0xFF))
	binary.BigEndian.PutUint32(entry[8:12], uint32(addend))
	return append(data, entry...)
}

// RewriteRelocations implements the Relocation Rewriter stage: it clears
// the flags of every RELA section, accepts the closed set of PowerPC
// relocation types the Cafe loader understands as-is, rewrites REL32
// into a GHS_REL16_HI/GHS_REL16_LO pair, and fails — after walking every
// section, so every offending type is reported in one run — if it finds
// a type outside that set or a REL32 naming a symbol past the end of
// its symbol table.
func RewriteRelocations(e *elf.Elf) error {
	var unsupported []uint32
	seenUnsupported := make(map[uint32]bool)
	var missingSymbol *SymbolIndexOutOfRangeError

	for _, sh := range e.Sections {
		if sh.Type != elf.SHT_RELA {
			continue
		}
		sh.Flags = 0

		symtab := sh.LinkSection
		symCount := 0
		if symtab != nil && symtab.EntrySize > 0 {
			symCount = len(symtab.Data) / int(symtab.EntrySize)
		}

		count := len(sh.Data) / relaEntrySize
		var appended []byte

		for i := 0; i < count; i++ {
			offset, symIndex, relType, addend := relaEntryAt(sh.Data, i)

			switch elf.R_PPC(relType) {
			case elf.R_PPC_NONE, elf.R_PPC_ADDR32, elf.R_PPC_ADDR16_LO, elf.R_PPC_ADDR16_HI,
				elf.R_PPC_ADDR16_HA, elf.R_PPC_REL24, elf.R_PPC_REL14, elf.R_PPC_DTPMOD32,
				elf.R_PPC_DTPREL32, elf.R_PPC_EMB_SDA21, elf.R_PPC_EMB_RELSDA,
				elf.R_PPC_DIAB_SDA21_LO, elf.R_PPC_DIAB_SDA21_HI, elf.R_PPC_DIAB_SDA21_HA,
				elf.R_PPC_DIAB_RELSDA_LO, elf.R_PPC_DIAB_RELSDA_HI, elf.R_PPC_DIAB_RELSDA_HA:
				// Valid on the Cafe loader as-is.

			case elf.R_PPC_REL32:
				if symtab != nil && int(symIndex) >= symCount {
					if missingSymbol == nil {
						missingSymbol = &SymbolIndexOutOfRangeError{Index: int(symIndex)}
					}
					continue
				}
				putRelaEntry(sh.Data, i, offset, symIndex, uint32(elf.R_PPC_GHS_REL16_HI), addend)
				appended = appendRelaEntry(appended, offset+2, symIndex, uint32(elf.R_PPC_GHS_REL16_LO), addend+2)

			default:
				if !seenUnsupported[relType] {
					seenUnsupported[relType] = true
					unsupported = append(unsupported, relType)
				}
			}
		}

		sh.Data = append(sh.Data, appended...)
		sh.Size = uint32(len(sh.Data))
	}

	var stageErrs []error
	if missingSymbol != nil {
		stageErrs = append(stageErrs, missingSymbol)
	}
	for _, t := range unsupported {
		stageErrs = append(stageErrs, &UnsupportedRelocationError{Type: t})
	}
	if len(stageErrs) > 0 {
		return errors.Join(stageErrs...)
	}
	return nil
}
