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

// Package header writes the table directories of sfnt font files and
// font collections.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#table-directory
// https://docs.microsoft.com/en-us/typography/opentype/spec/otff#font-collections
package header

import (
	"math/bits"

	"seehuhn.de/go/woff/parser"
)

// Known values for the scaler type of an sfnt file.
const (
	ScalerTypeTrueType   = 0x00010000
	ScalerTypeCFF        = 0x4F54544F // "OTTO"
	ScalerTypeApple      = 0x74727565 // "true"
	ScalerTypeCollection = 0x74746366 // "ttcf"
)

// Record describes a single table in an sfnt table directory.
type Record struct {
	Tag      string
	CheckSum uint32
	Offset   uint32
	Length   uint32
}

// Offsets is the offset sub-table at the start of an sfnt file.
type Offsets struct {
	ScalerType    uint32
	NumTables     uint16
	SearchRange   uint16
	EntrySelector uint16
	RangeShift    uint16
}

// NewOffsets fills in the binary search parameters for a table directory
// with numTables entries.
func NewOffsets(scalerType uint32, numTables int) *Offsets {
	res := &Offsets{
		ScalerType: scalerType,
		NumTables:  uint16(numTables),
	}
	if numTables > 0 {
		entrySelector := bits.Len(uint(numTables)) - 1
		res.SearchRange = uint16(1 << (entrySelector + 4))
		res.EntrySelector = uint16(entrySelector)
		res.RangeShift = uint16(16 * (numTables - 1<<entrySelector))
	}
	return res
}

// DirectorySize returns the size of the offset sub-table together with
// a table directory for numTables tables.
func DirectorySize(numTables int) int {
	return offsetsSize + recordSize*numTables
}

// WriteDirectory writes the offset sub-table and table directory of an
// sfnt font at the current position of w.  The records are written in
// the order given.
func WriteDirectory(w *parser.Writer, scalerType uint32, records []Record) error {
	offs := NewOffsets(scalerType, len(records))
	w.WriteUint32(offs.ScalerType)
	w.WriteUint16(offs.NumTables)
	w.WriteUint16(offs.SearchRange)
	w.WriteUint16(offs.EntrySelector)
	w.WriteUint16(offs.RangeShift)
	for _, rec := range records {
		w.WriteTag(rec.Tag)
		w.WriteUint32(rec.CheckSum)
		w.WriteUint32(rec.Offset)
		w.WriteUint32(rec.Length)
	}
	return w.Err()
}

// CollectionHeaderSize returns the size of a TrueType collection header
// for the given major version and number of fonts.
func CollectionHeaderSize(majorVersion uint16, numFonts int) int {
	size := collectionFixedSize + 4*numFonts
	if majorVersion >= 2 {
		size += dsigFieldsSize
	}
	return size
}

// WriteCollection writes a TrueType collection header at the current
// position of w.  For version 2 headers, the DSIG fields are written as
// zero, indicating that the collection is not signed.
func WriteCollection(w *parser.Writer, majorVersion, minorVersion uint16, fontOffsets []uint32) error {
	w.WriteUint32(ScalerTypeCollection)
	w.WriteUint16(majorVersion)
	w.WriteUint16(minorVersion)
	w.WriteUint32(uint32(len(fontOffsets)))
	for _, offs := range fontOffsets {
		w.WriteUint32(offs)
	}
	if majorVersion >= 2 {
		w.WriteUint32(0) // dsigTag
		w.WriteUint32(0) // dsigLength
		w.WriteUint32(0) // dsigOffset
	}
	return w.Err()
}

const (
	offsetsSize         = 12
	recordSize          = 16
	collectionFixedSize = 12
	dsigFieldsSize      = 12
)
