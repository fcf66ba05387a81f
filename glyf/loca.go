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

package glyf

import (
	"seehuhn.de/go/woff/parser"
)

// The two possible values of indexToLocFormat in the "head" table.
const (
	LocaShort int16 = 0 // offsets are stored as uint16, divided by two
	LocaLong  int16 = 1 // offsets are stored as uint32
)

// LocaEntrySize returns the size in bytes of a single "loca" entry.
func LocaEntrySize(locaFormat int16) int {
	if locaFormat == LocaShort {
		return 2
	}
	return 4
}

// LocaSize returns the size of a "loca" table for numGlyphs glyphs.
func LocaSize(numGlyphs int, locaFormat int16) int {
	return (numGlyphs + 1) * LocaEntrySize(locaFormat)
}

// WriteLocaEntry writes a single "loca" entry for a glyph starting at byte
// offset pos in the "glyf" table.  The entry is written at index idx.
func WriteLocaEntry(w *parser.Writer, base, idx int, locaFormat int16, pos int) error {
	if locaFormat == LocaShort {
		if pos%2 != 0 || pos/2 > 0xFFFF {
			return errLocaOverflow
		}
		w.PutUint16At(base+2*idx, uint16(pos/2))
	} else {
		w.PutUint32At(base+4*idx, uint32(pos))
	}
	return w.Err()
}

func decodeLoca(enc *Encoded) ([]int, error) {
	r := parser.NewReader(enc.LocaData)
	var offs []int
	switch enc.LocaFormat {
	case LocaShort:
		n := len(enc.LocaData) / 2
		if n <= 1 {
			return nil, nil
		}
		offs = make([]int, n)
		for i := range offs {
			x, _ := r.ReadUint16()
			offs[i] = 2 * int(x)
		}
	case LocaLong:
		n := len(enc.LocaData) / 4
		if n <= 1 {
			return nil, nil
		}
		offs = make([]int, n)
		for i := range offs {
			x, _ := r.ReadUint32()
			offs[i] = int(x)
		}
	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "glyf",
			Feature:   "loca format",
		}
	}
	return offs, nil
}

func encodeLoca(offs []int) ([]byte, int16) {
	var locaFormat int16
	if offs[len(offs)-1] > 0xFFFF*2 {
		locaFormat = LocaLong
	}

	buf := make([]byte, LocaSize(len(offs)-1, locaFormat))
	w := parser.NewWriter(buf)
	for _, o := range offs {
		if locaFormat == LocaShort {
			w.WriteUint16(uint16(o / 2))
		} else {
			w.WriteUint32(uint32(o))
		}
	}
	return buf, locaFormat
}

var errLocaOverflow = &parser.InvalidFontError{
	SubSystem: "glyf",
	Reason:    "glyph offset does not fit into short loca format",
}
