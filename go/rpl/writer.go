// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"io"

	"github.com/Exzap/wut-tools/go/elf"
)

// Write implements the Writer stage: it serialises the file header at
// offset zero, the section-header table at shoff, and every section's
// payload at its assigned offset, in that order. Sections are written
// in section-list order, but the seeks to each assigned offset make the
// physical byte layout follow the Offset Assigner's phase order rather
// than the list order.
func Write(w io.WriteSeeker, e *elf.Elf) error {
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := e.WriteHeader(w); err != nil {
		return err
	}

	if _, err := w.Seek(int64(e.SectionHeaderOffset()), io.SeekStart); err != nil {
		return err
	}
	for _, sh := range e.Sections {
		if err := e.WriteSectionHeaderAt(w, sh); err != nil {
			return err
		}
	}

	for _, sh := range e.Sections {
		if len(sh.Data) == 0 {
			continue
		}
		if _, err := w.Seek(int64(sh.Offset()), io.SeekStart); err != nil {
			return err
		}
		if _, err := w.Write(sh.Data); err != nil {
			return err
		}
	}

	return nil
}
