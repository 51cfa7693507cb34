// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"fmt"
	"io"
)

// Convert runs the full ELF-to-RPL/RPX transform pipeline, in the strict
// order each stage's postconditions require: load, rewrite relocations,
// relocate loader-window metadata, synthesise FileInfo and CRCs, fix the
// header, deflate, assign offsets, write. flags is 0 for an RPL module
// or IsRpxFlag for an RPX executable.
func Convert(r io.ReadSeeker, w io.WriteSeeker, flags uint32) error {
	err, e := Load(r)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	if err := RewriteRelocations(e); err != nil {
		return fmt.Errorf("relocation rewriter: %w", err)
	}

	RelocateLoaderAddresses(e)

	SynthesizeFileInfo(e, flags)

	SynthesizeCRCs(e)

	FixHeader(e)

	if err := DeflateSections(e); err != nil {
		return fmt.Errorf("deflater: %w", err)
	}

	if err := AssignOffsets(e); err != nil {
		return fmt.Errorf("offset assigner: %w", err)
	}

	if err := Write(w, e); err != nil {
		return fmt.Errorf("writer: %w", err)
	}

	return nil
}
