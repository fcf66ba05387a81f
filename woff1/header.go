// seehuhn.de/go/woff - a library for decoding WOFF and WOFF2 font files
// Copyright (C) 2025  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package woff1 decodes WOFF 1.0 font files.
//
// https://www.w3.org/TR/WOFF/
package woff1

import (
	"fmt"

	"seehuhn.de/go/woff/parser"
)

// Signature is the tag at the start of every WOFF 1.0 file.
const Signature = 0x774F4646 // "wOFF"

// Header contains the information from the WOFF header and table directory.
type Header struct {
	Flavor        uint32
	Length        uint32
	TotalSfntSize uint32

	MajorVersion uint16
	MinorVersion uint16

	MetaOffset     uint32
	MetaLength     uint32
	MetaOrigLength uint32
	PrivOffset     uint32
	PrivLength     uint32

	Tables []TableEntry
}

// TableEntry is an entry in the WOFF table directory.
type TableEntry struct {
	Tag          string
	Offset       uint32
	CompLength   uint32
	OrigLength   uint32
	OrigChecksum uint32
}

// IsCompressed returns true if the table data is stored zlib-compressed.
func (e *TableEntry) IsCompressed() bool {
	return e.CompLength != e.OrigLength
}

// ReadHeader reads and validates the header and table directory of a
// WOFF 1.0 file.
func ReadHeader(data []byte) (*Header, error) {
	r := parser.NewReader(data)

	signature, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if signature != Signature {
		return nil, errNotWOFF
	}

	h := &Header{}
	h.Flavor, _ = r.ReadUint32()
	h.Length, _ = r.ReadUint32()
	numTables, _ := r.ReadUint16()
	reserved, _ := r.ReadUint16()
	h.TotalSfntSize, _ = r.ReadUint32()
	h.MajorVersion, _ = r.ReadUint16()
	h.MinorVersion, _ = r.ReadUint16()
	h.MetaOffset, _ = r.ReadUint32()
	h.MetaLength, _ = r.ReadUint32()
	h.MetaOrigLength, _ = r.ReadUint32()
	h.PrivOffset, _ = r.ReadUint32()
	h.PrivLength, err = r.ReadUint32()
	if err != nil {
		return nil, err
	}

	if int64(h.Length) != int64(len(data)) {
		return nil, invalid("declared length %d does not match file size %d",
			h.Length, len(data))
	}
	if numTables == 0 {
		return nil, invalid("no tables")
	}
	if reserved != 0 {
		return nil, invalid("reserved header field is not zero")
	}
	if h.MetaLength > 0 && !inFile(h.MetaOffset, h.MetaLength, len(data)) {
		return nil, invalid("metadata block outside file")
	}
	if h.PrivLength > 0 && !inFile(h.PrivOffset, h.PrivLength, len(data)) {
		return nil, invalid("private data block outside file")
	}

	h.Tables = make([]TableEntry, numTables)
	for i := range h.Tables {
		e := &h.Tables[i]
		e.Tag, err = r.ReadTag()
		if err != nil {
			return nil, err
		}
		e.Offset, _ = r.ReadUint32()
		e.CompLength, _ = r.ReadUint32()
		e.OrigLength, _ = r.ReadUint32()
		e.OrigChecksum, err = r.ReadUint32()
		if err != nil {
			return nil, err
		}

		if !inFile(e.Offset, e.CompLength, len(data)) {
			return nil, invalid("table %q outside file", e.Tag)
		}
		if e.CompLength > e.OrigLength {
			return nil, invalid("table %q: compressed length exceeds original length", e.Tag)
		}
	}

	return h, nil
}

func inFile(offset, length uint32, size int) bool {
	return int64(offset)+int64(length) <= int64(size)
}

func invalid(format string, args ...any) error {
	return &parser.InvalidFontError{
		SubSystem: "woff1",
		Reason:    fmt.Sprintf(format, args...),
	}
}

var errNotWOFF = &parser.InvalidFontError{
	SubSystem: "woff1",
	Reason:    "not a WOFF file",
}
