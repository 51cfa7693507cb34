// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"slices"

	"github.com/Exzap/wut-tools/go/elf"
)

// SynthesizeCRCs implements the CRC Synthesiser stage: one big-endian
// CRC-32 per existing section, in section order, over each section's
// current (pre-deflate) payload. The CRCS section's own slot must read
// zero, which is produced by inserting a zero entry at length-1 of the
// table computed over the sections that exist before the CRCS section
// itself is appended — reproduced verbatim from the reference tool.
// The zero slot ends up second-to-last, not last, in the final table;
// since CRCS is inserted just before the trailing FILEINFO section, that
// is the CRCS section's own slot.
func SynthesizeCRCs(e *elf.Elf) {
	crcs := make([]uint32, 0, len(e.Sections)+1)
	for _, sh := range e.Sections {
		var crc uint32
		if len(sh.Data) > 0 {
			crc = crc32.ChecksumIEEE(sh.Data)
		}
		crcs = append(crcs, crc)
	}

	crcs = slices.Insert(crcs, len(crcs)-1, 0)

	var buf bytes.Buffer
	for _, crc := range crcs {
		binary.Write(&buf, binary.BigEndian, crc)
	}

	sh := &elf.SectionHeader{
		Type:      elf.SHT_RPL_CRCS,
		Flags:     0,
		Address:   0,
		Link:      0,
		Info:      0,
		AddrAlign: 4,
		EntrySize: 4,
		Data:      buf.Bytes(),
	}

	insertBeforeFileInfo(e, sh)
}

// insertBeforeFileInfo inserts sh immediately before the RPL_FILEINFO
// section the FileInfo Synthesiser appended.
func insertBeforeFileInfo(e *elf.Elf, sh *elf.SectionHeader) {
	idx := len(e.Sections)
	for i, s := range e.Sections {
		if s.Type == elf.SHT_RPL_FILEINFO {
			idx = i
			break
		}
	}
	e.Sections = append(e.Sections[:idx], append([]*elf.SectionHeader{sh}, e.Sections[idx:]...)...)
}
