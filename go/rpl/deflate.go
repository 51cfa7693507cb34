// SPDX-License-Identifier: MIT
//
// Copyright (c) 2024 Adrian "asie" Siekierka

package rpl

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"

	"github.com/Exzap/wut-tools/go/elf"
)

// DeflateSections implements the Deflater stage: every section at least
// DeflateMinSectionSize bytes long, except the CRCS and FILEINFO
// sections the loader reads before it can decompress anything, is
// replaced by a 4-byte big-endian uncompressed-size header followed by
// its payload deflated at CompressionLevel, with SHF_DEFLATED set on
// the section so the loader knows to inflate it back.
func DeflateSections(e *elf.Elf) error {
	for i, sh := range e.Sections {
		if sh.Type == elf.SHT_RPL_CRCS || sh.Type == elf.SHT_RPL_FILEINFO {
			continue
		}
		if sh.Type == elf.SHT_NOBITS || sh.Type == elf.SHT_NULL {
			continue
		}
		if len(sh.Data) < DeflateMinSectionSize {
			continue
		}

		var buf bytes.Buffer
		if err := binary.Write(&buf, binary.BigEndian, uint32(len(sh.Data))); err != nil {
			return &CompressionFailureError{SectionIndex: i, Err: err}
		}

		zw, err := zlib.NewWriterLevel(&buf, int(CompressionLevel))
		if err != nil {
			return &CompressionFailureError{SectionIndex: i, Err: err}
		}
		if _, err := zw.Write(sh.Data); err != nil {
			zw.Close()
			return &CompressionFailureError{SectionIndex: i, Err: err}
		}
		if err := zw.Close(); err != nil {
			return &CompressionFailureError{SectionIndex: i, Err: err}
		}

		sh.Data = buf.Bytes()
		sh.Flags |= elf.SHF_DEFLATED
	}

	return nil
}
