// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package elf

import "io"

// These accessors expose the handful of layout fields WriteRawSections
// computes on its own. The RPL transform pipeline lays out its own file
// (a fixed section order rather than the linear one WriteRawSections
// produces), so it needs to set them directly instead.

func (h *ElfHeader) ProgramHeaderOffset() uint64 {
	return h.progHdrOffset
}

func (h *ElfHeader) SetProgramHeaderOffset(v uint64) {
	h.progHdrOffset = v
}

func (h *ElfHeader) ProgramHeaderCount() uint16 {
	return h.progHdrCount
}

func (h *ElfHeader) SetProgramHeaderCount(v uint16) {
	h.progHdrCount = v
}

func (h *ElfHeader) ProgramHeaderEntrySize() uint16 {
	return h.progHdrEntrySize
}

func (h *ElfHeader) SetProgramHeaderEntrySize(v uint16) {
	h.progHdrEntrySize = v
}

func (h *ElfHeader) SectionHeaderOffset() uint64 {
	return h.secHdrOffset
}

func (h *ElfHeader) SetSectionHeaderOffset(v uint64) {
	h.secHdrOffset = v
}

func (h *ElfHeader) SectionHeaderCount() uint16 {
	return h.secHdrCount
}

func (h *ElfHeader) SetSectionHeaderCount(v uint16) {
	h.secHdrCount = v
}

func (h *ElfHeader) SectionHeaderEntrySize() uint16 {
	return h.secHdrEntrySize
}

func (h *ElfHeader) SetSectionHeaderEntrySize(v uint16) {
	h.secHdrEntrySize = v
}

func (h *ElfHeader) SectionHeaderStringIndex() uint16 {
	return h.secHdrStrIdx
}

func (h *ElfHeader) SetSectionHeaderStringIndex(v uint16) {
	h.secHdrStrIdx = v
}

func (h *ElfHeader) EhSize() uint16 {
	return h.headerSize
}

func (h *ElfHeader) SetEhSize(v uint16) {
	h.headerSize = v
}

// Offset returns the section's file offset: the one read from the input
// file, or the one later set through SetOffset (the RPL Offset Assigner
// sets it to zero for NULL/NOBITS sections).
func (sh *SectionHeader) Offset() uint64 {
	return sh.offset
}

func (sh *SectionHeader) SetOffset(v uint64) {
	sh.offset = v
}

// SizeofHeader and SizeofSectionHeader expose the class-dependent wire
// sizes the RPL Header Fixer and Offset Assigner need to compute layout
// (shoff alignment, the section-header-table span) without duplicating
// the struct definitions that already encode them.
func (e *Elf) SizeofHeader() int {
	return e.sizeElfHeader()
}

func (e *Elf) SizeofSectionHeader() int {
	return e.sizeSectionHeader()
}

// WriteHeader and WriteSectionHeaderAt let a caller outside this package
// reuse the existing big-endian-aware (de)serialisation code for a
// non-standard file layout (the RPL Writer stage does not lay sections
// out in WriteRawSections' order).
func (e *Elf) WriteHeader(w io.Writer) error {
	return e.writeElfHeader(w)
}

func (e *Elf) WriteSectionHeaderAt(w io.Writer, sh *SectionHeader) error {
	return e.writeSectionHeader(w, sh)
}
