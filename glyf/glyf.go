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
// Package glyf reads and writes "glyf" and "loca" tables.
//
// The WOFF2 decoder uses this package to write the glyph records it
// reconstructs from a transformed "glyf" table.  The reading side is used
// to verify the output.
//
// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf
// https://docs.microsoft.com/en-us/typography/opentype/spec/loca
package glyf

import (
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/woff/parser"
)

// Glyphs contains the glyph outlines from a "glyf" table,
// indexed by glyph ID.
type Glyphs []*Glyph

// Glyph is a single glyph record of a "glyf" table.
// Empty glyphs are represented by nil.
type Glyph struct {
	funit.Rect16
	Data any // either SimpleGlyph or CompositeGlyph
}

// Encoded represents the data of a "glyf" and "loca" table.
type Encoded struct {
	GlyfData   []byte
	LocaData   []byte
	LocaFormat int16
}

// Decode splits a "glyf" table into glyphs, using the offsets from the
// "loca" table.  The value for LocaFormat is the indexToLocFormat entry
// of the "head" table.
//
// The returned glyphs retain sub-slices of enc.GlyfData.
func Decode(enc *Encoded) (Glyphs, error) {
	offs, err := decodeLoca(enc)
	if err != nil {
		return nil, err
	}
	if len(offs) == 0 {
		return Glyphs{}, nil
	}

	gg := make(Glyphs, len(offs)-1)
	for i := range gg {
		start, end := offs[i], offs[i+1]
		if start > end || end > len(enc.GlyfData) {
			return nil, &parser.InvalidFontError{
				SubSystem: "glyf",
				Reason:    fmt.Sprintf("invalid offset for glyph %d", i),
			}
		}
		gg[i], err = decodeGlyph(enc.GlyfData[start:end])
		if err != nil {
			return nil, err
		}
	}
	return gg, nil
}

// decodeGlyph decodes a single glyph record.  Empty records give nil.
func decodeGlyph(data []byte) (*Glyph, error) {
	if len(data) == 0 {
		return nil, nil
	} else if len(data) < glyphHeaderSize {
		return nil, errIncompleteGlyph
	}

	r := parser.NewReader(data)
	numContours, _ := r.ReadInt16()
	var box [4]int16
	for i := range box {
		box[i], _ = r.ReadInt16()
	}

	g := &Glyph{
		Rect16: funit.Rect16{
			LLx: funit.Int16(box[0]),
			LLy: funit.Int16(box[1]),
			URx: funit.Int16(box[2]),
			URy: funit.Int16(box[3]),
		},
	}
	if numContours >= 0 {
		body := data[glyphHeaderSize:]
		n, err := simpleLength(body, int(numContours))
		if err != nil {
			return nil, err
		}
		g.Data = SimpleGlyph{NumContours: numContours, Encoded: body[:n]}
	} else {
		comp, err := decodeGlyphComposite(r)
		if err != nil {
			return nil, err
		}
		g.Data = *comp
	}
	return g, nil
}

// Encode writes the glyphs into a new "glyf" and "loca" table.
// The short loca format is used whenever possible.
func (gg Glyphs) Encode() *Encoded {
	offs := make([]int, len(gg)+1)
	var glyfData []byte
	for i, g := range gg {
		glyfData = g.Append(glyfData)
		offs[i+1] = len(glyfData)
	}
	locaData, locaFormat := encodeLoca(offs)

	return &Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}
}

// Append appends the glyph record to buf, padded to an even length.
// Nothing is appended for empty glyphs.
//
// For composite glyphs, FlagMoreComponents is set on all components but
// the last.  The instructions are written if Instructions is non-nil.
func (g *Glyph) Append(buf []byte) []byte {
	if g == nil {
		return buf
	}

	buf = appendInt16(buf, g.NumContours())
	buf = appendInt16(buf, int16(g.LLx))
	buf = appendInt16(buf, int16(g.LLy))
	buf = appendInt16(buf, int16(g.URx))
	buf = appendInt16(buf, int16(g.URy))

	switch d := g.Data.(type) {
	case SimpleGlyph:
		buf = append(buf, d.Encoded...)
	case CompositeGlyph:
		last := len(d.Components) - 1
		for i, comp := range d.Components {
			flags := comp.Flags &^ FlagMoreComponents
			if i < last {
				flags |= FlagMoreComponents
			}
			buf = appendInt16(buf, int16(flags))
			buf = appendInt16(buf, int16(comp.GlyphIndex))
			buf = append(buf, comp.Data...)
		}
		if d.Instructions != nil {
			buf = appendInt16(buf, int16(len(d.Instructions)))
			buf = append(buf, d.Instructions...)
		}
	}

	if len(buf)%glyfAlign != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// NumContours returns the number of contours of the glyph,
// or -1 for composite glyphs.
func (g *Glyph) NumContours() int16 {
	if g == nil {
		return 0
	}
	switch d := g.Data.(type) {
	case SimpleGlyph:
		return d.NumContours
	case CompositeGlyph:
		return -1
	default:
		panic("unexpected glyph type")
	}
}

func appendInt16(buf []byte, v int16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

const (
	glyphHeaderSize = 10
	glyfAlign       = 2
)
