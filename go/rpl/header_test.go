// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Exzap/wut-tools/go/elf"
)

func TestFixHeaderIdentification(t *testing.T) {
	e := &elf.Elf{}
	e.Class = elf.ELFCLASS64
	e.Type = elf.ET_REL
	e.Entry = 0x80004000
	e.SetProgramHeaderCount(3)

	e.Sections = []*elf.SectionHeader{
		{Name: ".text"},
		{Name: ".shstrtab"},
	}

	FixHeader(e)

	assert.Equal(t, elf.ELFCLASS32, e.Class)
	assert.Equal(t, elf.ELFDATA2MSB, e.Endian)
	assert.Equal(t, elf.EABI_CAFE, e.ABI)
	assert.Equal(t, elf.ET_CAFE_RPL, e.Type)
	assert.Equal(t, elf.EM_PPC, e.Machine)
	assert.Equal(t, elf.EV_CURRENT, e.Version)
	assert.Equal(t, uint64(0x80004000), e.Entry, "entry point is left as the input ELF had it")
	assert.Equal(t, uint16(0), e.ProgramHeaderCount(), "program headers dropped")
	assert.Equal(t, uint16(1), e.SectionHeaderStringIndex(), ".shstrtab located by name")
	assert.Equal(t, uint16(2), e.SectionHeaderCount())
}

func TestFixHeaderShoffAlignment(t *testing.T) {
	e := &elf.Elf{}
	e.Class = elf.ELFCLASS32
	FixHeader(e)

	assert.Equal(t, uint64(64), e.SectionHeaderOffset(), "shoff aligned up to 64")
}
