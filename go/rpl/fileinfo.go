// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"bytes"
	"encoding/binary"

	"github.com/Exzap/wut-tools/go/elf"
)

// RplFileInfo is the fixed-layout descriptor the Cafe OS loader reads to
// size its text/data/load/temp allocations and to find the SDK the
// module was built against. Every scalar is big-endian on the wire.
type RplFileInfo struct {
	Version             uint32
	TextSize            uint32
	TextAlign           uint32
	DataSize            uint32
	DataAlign           uint32
	LoadSize            uint32
	LoadAlign           uint32
	TempSize            uint32
	TrampAdjust         uint32
	TrampAddition       uint32
	SdaBase             uint32
	Sda2Base            uint32
	StackSize           uint32
	HeapSize            uint32
	Filename            uint32
	Flags               uint32
	MinVersion          uint32
	CompressionLevel    int32
	FileInfoPad         uint32
	CafeSdkVersion      uint32
	CafeSdkRevision     uint32
	TlsAlignShift       uint16
	TlsModuleIndex      uint16
	RuntimeFileInfoSize uint32
	TagOffset           uint32
}

func marshalFileInfo(info *RplFileInfo) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, info)
	return buf.Bytes()
}

// accumulateSizes scans every section's current address/size and returns
// the text/data/load/temp sizes, per the virtual-address partitioning
// table in the data model. None of them is aligned here;
// SynthesizeFileInfo aligns text/data/load afterwards.
func accumulateSizes(sections []*elf.SectionHeader) (textSize, dataSize, loadSize, tempSize uint32) {
	for _, sh := range sections {
		size := uint32(len(sh.Data))
		if sh.Type == elf.SHT_NOBITS {
			size = sh.Size
		}

		addr := uint32(sh.Address)

		switch {
		case addr >= CodeBaseAddress && addr < DataBaseAddress:
			if v := addr + size - CodeBaseAddress; v > textSize {
				textSize = v
			}
		case addr >= DataBaseAddress && addr < LoadBaseAddress:
			if v := addr + size - DataBaseAddress; v > dataSize {
				dataSize = v
			}
		case addr >= LoadBaseAddress:
			if v := addr + size - LoadBaseAddress; v > loadSize {
				loadSize = v
			}
		case addr == 0 && sh.Type != elf.SHT_RPL_CRCS && sh.Type != elf.SHT_RPL_FILEINFO:
			tempSize += size + 128
		}
	}

	return
}

func alignUp(v, align uint32) uint32 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// SynthesizeFileInfo implements the FileInfo Synthesiser stage: it
// computes textSize/dataSize/loadSize/tempSize over the current section
// addresses and appends the RPL_FILEINFO section. flags is 0 for an RPL
// module or IsRpxFlag for an RPX executable.
func SynthesizeFileInfo(e *elf.Elf, flags uint32) {
	textSize, dataSize, loadSize, tempSize := accumulateSizes(e.Sections)

	info := &RplFileInfo{
		Version:          FileInfoVersion,
		TextSize:         alignUp(textSize, TextAlign),
		TextAlign:        TextAlign,
		DataSize:         alignUp(dataSize, DataAlign),
		DataAlign:        DataAlign,
		LoadSize:         alignUp(loadSize, LoadAlign),
		LoadAlign:        LoadAlign,
		TempSize:         tempSize,
		StackSize:        DefaultStackSize,
		HeapSize:         DefaultHeapSize,
		Flags:            flags,
		MinVersion:       MinVersion,
		CompressionLevel: CompressionLevel,
		CafeSdkVersion:   CafeSdkVersion,
		CafeSdkRevision:  CafeSdkRevision,
	}

	sh := &elf.SectionHeader{
		Type:      elf.SHT_RPL_FILEINFO,
		Flags:     0,
		Address:   0,
		Link:      0,
		Info:      0,
		AddrAlign: 4,
		EntrySize: 0,
		Data:      marshalFileInfo(info),
	}
	e.Sections = append(e.Sections, sh)
}
