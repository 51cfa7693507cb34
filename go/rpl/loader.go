// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"errors"
	"fmt"
	"io"

	"github.com/Exzap/wut-tools/go/elf"
)

// Load implements the Loader stage: it reads the input as a raw-section
// ELF object and checks the five identification fields the Cafe loader
// requires of its input before any RPL-specific transform runs.
func Load(r io.ReadSeeker) (error, *elf.Elf) {
	err, e := elf.ReadRawSections(r)
	if err != nil {
		var magic *elf.InvalidMagicError
		if errors.As(err, &magic) {
			return &InputInvalidError{Field: "magic", Expected: [4]byte{0x7F, 0x45, 0x4C, 0x46}, Actual: magic.Actual}, nil
		}
		return err, nil
	}

	if e.Class != elf.ELFCLASS32 {
		return &InputInvalidError{Field: "class", Expected: elf.ELFCLASS32, Actual: e.Class}, nil
	}
	if e.Endian != elf.ELFDATA2MSB {
		return &InputInvalidError{Field: "endian", Expected: elf.ELFDATA2MSB, Actual: e.Endian}, nil
	}
	if e.Machine != elf.EM_PPC {
		return &InputInvalidError{Field: "machine", Expected: elf.EM_PPC, Actual: e.Machine}, nil
	}
	if e.Version != elf.EV_CURRENT {
		return &InputInvalidError{Field: "version", Expected: elf.EV_CURRENT, Actual: e.Version}, nil
	}
	if e.Type != elf.ET_EXEC && e.Type != elf.ET_REL && e.Type != elf.ET_DYN {
		return &InputInvalidError{Field: "type", Expected: fmt.Sprintf("%v/%v/%v", elf.ET_EXEC, elf.ET_REL, elf.ET_DYN), Actual: e.Type}, nil
	}

	return nil, e
}
