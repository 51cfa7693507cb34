// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Exzap/wut-tools/go/elf"
)

func TestAccumulateSizesText(t *testing.T) {
	sections := []*elf.SectionHeader{
		{Type: elf.SHT_PROGBITS, Address: uint64(CodeBaseAddress), Data: make([]byte, 64)},
	}
	textSize, dataSize, loadSize, tempSize := accumulateSizes(sections)
	assert.Equal(t, uint32(64), textSize, "text size before alignment")
	assert.Equal(t, uint32(0), dataSize)
	assert.Equal(t, uint32(0), loadSize)
	assert.Equal(t, uint32(0), tempSize)
}

func TestAccumulateSizesData(t *testing.T) {
	sections := []*elf.SectionHeader{
		{Type: elf.SHT_PROGBITS, Address: uint64(DataBaseAddress) + 0x1000, Flags: elf.SHF_ALLOC | elf.SHF_WRITE, Data: make([]byte, 100)},
	}
	_, dataSize, _, _ := accumulateSizes(sections)
	assert.Equal(t, uint32(0x1064), dataSize, "data size before alignment")
	assert.Equal(t, uint32(0x2000), alignUp(dataSize, DataAlign), "data size aligned to 4096")
}

func TestAccumulateSizesNobitsUsesHeaderSize(t *testing.T) {
	sections := []*elf.SectionHeader{
		{Type: elf.SHT_NOBITS, Address: uint64(CodeBaseAddress), Size: 128},
	}
	textSize, _, _, _ := accumulateSizes(sections)
	assert.Equal(t, uint32(128), textSize, "NOBITS contributes header size, not payload length")
}

func TestAccumulateSizesTemp(t *testing.T) {
	sections := []*elf.SectionHeader{
		{Type: elf.SHT_PROGBITS, Address: 0, Data: make([]byte, 40)},
		{Type: elf.SHT_RPL_CRCS, Address: 0, Data: make([]byte, 16)},
		{Type: elf.SHT_RPL_FILEINFO, Address: 0, Data: make([]byte, 16)},
	}
	_, _, _, tempSize := accumulateSizes(sections)
	assert.Equal(t, uint32(40+128), tempSize, "CRCS/FILEINFO excluded from temp accounting")
}

func TestSynthesizeFileInfoAppendsSection(t *testing.T) {
	e := &elf.Elf{Sections: []*elf.SectionHeader{
		{Type: elf.SHT_PROGBITS, Address: uint64(CodeBaseAddress), Flags: elf.SHF_EXECINSTR | elf.SHF_ALLOC, Data: make([]byte, 64)},
	}}

	SynthesizeFileInfo(e, 0)

	assert.Len(t, e.Sections, 2, "FILEINFO section appended")
	fi := e.Sections[len(e.Sections)-1]
	assert.Equal(t, elf.SHT_RPL_FILEINFO, fi.Type)
	assert.Equal(t, uint32(4), fi.AddrAlign)

	var info RplFileInfo
	assert.Equal(t, binary.Size(&info), len(fi.Data), "marshalled FileInfo size")
}

func TestSynthesizeFileInfoRpxFlag(t *testing.T) {
	e := &elf.Elf{}
	SynthesizeFileInfo(e, IsRpxFlag)

	var decoded RplFileInfo
	err := binary.Read(bytes.NewReader(e.Sections[0].Data), binary.BigEndian, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, IsRpxFlag, decoded.Flags, "RPX flag carried into FileInfo")
}
