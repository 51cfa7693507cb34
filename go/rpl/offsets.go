// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"errors"

	"github.com/Exzap/wut-tools/go/elf"
	"github.com/Exzap/wut-tools/go/relocation"
)

// excludedFromDataPhases holds the section types every size-ordered phase
// (3, 4, 6, 7 below) skips; they are handled by their own dedicated phase
// instead.
func excludedFromDataPhases(t elf.SectionHeaderType) bool {
	return t == elf.SHT_RPL_FILEINFO || t == elf.SHT_RPL_IMPORTS || t == elf.SHT_RPL_CRCS || t == elf.SHT_NOBITS
}

// AssignOffsets implements the Offset Assigner stage: NOBITS and NULL
// sections are cleared to offset zero, then every remaining section is
// walked in seven further phases, each keyed to a flag/type predicate that
// reproduces the fixed RPL section order the Cafe loader expects.
func AssignOffsets(e *elf.Elf) error {
	for _, sh := range e.Sections {
		if sh.Type == elf.SHT_NOBITS || sh.Type == elf.SHT_NULL {
			sh.SetOffset(0)
			sh.Data = nil
		}
	}

	o := uint64(alignUp64(e.SectionHeaderOffset()+uint64(len(e.Sections))*uint64(e.SizeofSectionHeader()), 64))

	emit := func(sh *elf.SectionHeader) {
		sh.SetOffset(o)
		sh.Size = uint32(len(sh.Data))
		o += uint64(sh.Size)
	}

	phases := []func(*elf.SectionHeader) bool{
		func(sh *elf.SectionHeader) bool { return sh.Type == elf.SHT_RPL_CRCS },
		func(sh *elf.SectionHeader) bool { return sh.Type == elf.SHT_RPL_FILEINFO },
		func(sh *elf.SectionHeader) bool {
			return len(sh.Data) > 0 && !excludedFromDataPhases(sh.Type) &&
				sh.Flags&elf.SHF_EXECINSTR == 0 && sh.Flags&elf.SHF_WRITE != 0 && sh.Flags&elf.SHF_ALLOC != 0
		},
		func(sh *elf.SectionHeader) bool {
			return len(sh.Data) > 0 && !excludedFromDataPhases(sh.Type) &&
				(sh.Flags&elf.SHF_EXECINSTR == 0 || sh.Type == elf.SHT_RPL_EXPORTS) &&
				sh.Flags&elf.SHF_WRITE == 0 && sh.Flags&elf.SHF_ALLOC != 0
		},
		func(sh *elf.SectionHeader) bool { return sh.Type == elf.SHT_RPL_IMPORTS },
		func(sh *elf.SectionHeader) bool {
			return len(sh.Data) > 0 && !excludedFromDataPhases(sh.Type) &&
				sh.Flags&elf.SHF_EXECINSTR != 0 && sh.Type != elf.SHT_RPL_EXPORTS
		},
		func(sh *elf.SectionHeader) bool {
			return len(sh.Data) > 0 && !excludedFromDataPhases(sh.Type) &&
				sh.Flags&elf.SHF_EXECINSTR == 0 && sh.Flags&elf.SHF_ALLOC == 0
		},
	}

	for _, matches := range phases {
		for _, sh := range e.Sections {
			if matches(sh) {
				emit(sh)
			}
		}
	}

	var errs []error
	for i, sh := range e.Sections {
		if sh.Type != elf.SHT_NULL && sh.Type != elf.SHT_NOBITS && sh.Offset() == 0 {
			errs = append(errs, &LayoutFailureError{SectionIndex: i})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return validateLayout(e)
}

func alignUp64(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// placedSection adapts *elf.SectionHeader to relocation.RegionPlaceable
// so the already-computed layout can be re-verified with the same
// gap-tracking machinery the linker heritage code uses to build one.
type placedSection struct {
	sh *elf.SectionHeader
}

func (p placedSection) Offset() uint64     { return p.sh.Offset() }
func (p placedSection) SetOffset(v uint64) { p.sh.SetOffset(v) }
func (p placedSection) Size() uint64       { return uint64(p.sh.Size) }
func (p placedSection) Alignment() uint64  { return 1 }

// validateLayout re-derives the Offset Assigner's non-overlap invariant
// by replaying every placed section's fixed offset through a Region:
// placing a section at an offset that collides with one already placed
// fails, which is exactly the condition the invariant forbids.
func validateLayout(e *elf.Elf) error {
	const maxFileSize = uint64(1) << 40
	region := relocation.NewRegion[placedSection](0, maxFileSize, false)

	var errs []error
	for i, sh := range e.Sections {
		if sh.Type == elf.SHT_NULL || sh.Type == elf.SHT_NOBITS {
			continue
		}
		ps := placedSection{sh: sh}
		ok, _ := region.Place(ps, []uint64{sh.Offset()}, false)
		if !ok {
			errs = append(errs, &LayoutFailureError{SectionIndex: i})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
