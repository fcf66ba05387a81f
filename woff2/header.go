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

// Package woff2 decodes WOFF 2.0 font files and font collections.
//
// https://www.w3.org/TR/WOFF2/
package woff2

import (
	"fmt"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/parser"
)

// Signature is the tag at the start of every WOFF 2.0 file.
const Signature = 0x774F4632 // "wOF2"

// Header contains the information from the WOFF2 header, the table
// directory and, for font collections, the collection directory.
type Header struct {
	Flavor              uint32
	Length              uint32
	TotalSfntSize       uint32
	TotalCompressedSize uint32

	MajorVersion uint16
	MinorVersion uint16

	MetaOffset     uint32
	MetaLength     uint32
	MetaOrigLength uint32
	PrivOffset     uint32
	PrivLength     uint32

	Tables []TableEntry

	// Collection is non-nil if and only if Flavor is "ttcf".
	Collection *Collection

	// PayloadOffset is the file offset of the compressed table data.
	PayloadOffset int

	// PayloadLength is the total length of the decompressed table data.
	PayloadLength int
}

// TableEntry is an entry in the WOFF2 table directory.
type TableEntry struct {
	Tag string

	// TransformVersion is the value of bits 6 and 7 of the flag byte.
	TransformVersion uint8

	// OrigLength is the length of the table in the decoded font.
	OrigLength uint32

	// TransformLength is the length of the table data in the decompressed
	// payload.  For tables without a transform, this equals OrigLength.
	TransformLength uint32

	// Offset is the start of the table data in the decompressed payload.
	Offset uint32
}

// IsTransformed returns true if the table is stored in transformed form.
// For "glyf" and "loca", transform version 0 is the glyph transform and
// version 3 is the null transform.  For all other tables, version 0 is
// the null transform.
func (e *TableEntry) IsTransformed() bool {
	if e.Tag == "glyf" || e.Tag == "loca" {
		return e.TransformVersion == 0
	}
	return e.TransformVersion != 0
}

// Collection is the collection directory of a WOFF2 font collection.
type Collection struct {
	MajorVersion uint16
	MinorVersion uint16
	Fonts        []CollectionFont
}

// CollectionFont describes one font of a collection.
type CollectionFont struct {
	Flavor uint32

	// Tables contains indices into Header.Tables.
	Tables []int
}

// ReadHeader reads and validates the header and the directories of a
// WOFF 2.0 file.  The compressed table data is not accessed.
func ReadHeader(data []byte) (*Header, error) {
	r := parser.NewReader(data)

	signature, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if signature != Signature {
		return nil, errNotWOFF2
	}

	h := &Header{}
	h.Flavor, _ = r.ReadUint32()
	h.Length, _ = r.ReadUint32()
	numTables, _ := r.ReadUint16()
	reserved, _ := r.ReadUint16()
	h.TotalSfntSize, _ = r.ReadUint32()
	h.TotalCompressedSize, _ = r.ReadUint32()
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

	h.Tables = make([]TableEntry, numTables)
	var payloadLength uint64
	for i := range h.Tables {
		e := &h.Tables[i]
		flags, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		if idx := flags & 0x3F; idx == customTag {
			e.Tag, err = r.ReadTag()
			if err != nil {
				return nil, err
			}
		} else {
			e.Tag = knownTags[idx]
		}
		e.TransformVersion = flags >> 6

		e.OrigLength, err = r.ReadUintBase128()
		if err != nil {
			return nil, err
		}
		e.TransformLength = e.OrigLength
		if e.IsTransformed() {
			if e.Tag != "glyf" && e.Tag != "loca" {
				return nil, &parser.NotSupportedError{
					SubSystem: "woff2",
					Feature:   fmt.Sprintf("transform %d for table %q", e.TransformVersion, e.Tag),
				}
			}
			e.TransformLength, err = r.ReadUintBase128()
			if err != nil {
				return nil, err
			}
			if e.Tag == "loca" && e.TransformLength != 0 {
				return nil, invalid("transformed \"loca\" table has non-zero length")
			}
		}

		e.Offset = uint32(payloadLength)
		payloadLength += uint64(e.TransformLength)
		if payloadLength > 0xFFFFFFFF {
			return nil, invalid("table data too large")
		}
	}
	h.PayloadLength = int(payloadLength)

	if h.Flavor == header.ScalerTypeCollection {
		h.Collection, err = readCollection(r, len(h.Tables))
		if err != nil {
			return nil, err
		}
	}

	h.PayloadOffset = r.Pos()
	if int64(h.PayloadOffset)+int64(h.TotalCompressedSize) > int64(len(data)) {
		return nil, invalid("compressed data extends beyond end of file")
	}
	if h.MetaLength > 0 && int64(h.MetaOffset)+int64(h.MetaLength) > int64(len(data)) {
		return nil, invalid("metadata block outside file")
	}
	if h.PrivLength > 0 && int64(h.PrivOffset)+int64(h.PrivLength) > int64(len(data)) {
		return nil, invalid("private data block outside file")
	}

	return h, nil
}

func readCollection(r *parser.Reader, numTables int) (*Collection, error) {
	c := &Collection{}
	var err error
	c.MajorVersion, err = r.ReadUint16()
	if err != nil {
		return nil, err
	}
	c.MinorVersion, err = r.ReadUint16()
	if err != nil {
		return nil, err
	}
	numFonts, err := r.Read255Uint16()
	if err != nil {
		return nil, err
	}
	if numFonts == 0 {
		return nil, invalid("empty font collection")
	}

	c.Fonts = make([]CollectionFont, numFonts)
	for i := range c.Fonts {
		font := &c.Fonts[i]
		n, err := r.Read255Uint16()
		if err != nil {
			return nil, err
		}
		font.Flavor, err = r.ReadUint32()
		if err != nil {
			return nil, err
		}
		font.Tables = make([]int, n)
		for j := range font.Tables {
			idx, err := r.Read255Uint16()
			if err != nil {
				return nil, err
			}
			if int(idx) >= numTables {
				return nil, invalid("font %d: table index %d out of range", i, idx)
			}
			font.Tables[j] = int(idx)
		}
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return &parser.InvalidFontError{
		SubSystem: "woff2",
		Reason:    fmt.Sprintf(format, args...),
	}
}

var errNotWOFF2 = &parser.InvalidFontError{
	SubSystem: "woff2",
	Reason:    "not a WOFF2 file",
}
