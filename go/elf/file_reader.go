// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import (
	"encoding/binary"
	"io"
)

func (e *Elf) readString(r io.ReadSeeker, idx int, offset uint64) (error, string) {
	if _, err := r.Seek(int64(e.Sections[idx].offset+offset), io.SeekStart); err != nil {
		return err, ""
	}
	return readString(r)
}

func (e *Elf) GetByteOrder() binary.ByteOrder {
	if e.Endian == ELFDATA2MSB {
		return binary.BigEndian
	} else {
		return binary.LittleEndian
	}
}
