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

package fonttest

import (
	"fmt"

	"seehuhn.de/go/woff/glyf"
)

// TransformedGlyf is the result of applying the WOFF2 glyf transform.
type TransformedGlyf struct {
	// Data is the transformed "glyf" table.
	Data []byte

	// GlyfLength is the length of the "glyf" table a decoder reconstructs
	// from Data.
	GlyfLength int

	// LocaLength is the length of the reconstructed "loca" table.
	LocaLength int
}

// TransformGlyf applies the WOFF2 glyf transform to a "glyf" and "loca"
// table.  If overlap is set, the overlap bitmap is included and marks all
// simple glyphs.
//
// https://www.w3.org/TR/WOFF2/#glyf_table_format
func TransformGlyf(glyfData, locaData []byte, locaFormat int16, overlap bool) (*TransformedGlyf, error) {
	glyphs, err := glyf.Decode(&glyf.Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	})
	if err != nil {
		return nil, err
	}
	numGlyphs := len(glyphs)
	if numGlyphs > 0xFFFF {
		return nil, fmt.Errorf("fonttest: too many glyphs (%d)", numGlyphs)
	}

	var nContour, nPoints, flags, glyphStream, composite, bboxes, instructions []byte
	bboxBitmap := make([]byte, 4*((numGlyphs+31)/32))
	overlapBitmap := make([]byte, (numGlyphs+7)/8)

	var expected []byte // the "glyf" table the decoder will produce
	for i, g := range glyphs {
		if g == nil {
			nContour = append(nContour, 0, 0)
			continue
		}

		var rebuilt *glyf.Glyph
		switch d := g.Data.(type) {
		case glyf.SimpleGlyph:
			u, err := d.Unpack()
			if err != nil {
				return nil, fmt.Errorf("glyph %d: %w", i, err)
			}
			if len(u.Contours) == 0 {
				// A simple glyph without contours cannot be represented;
				// it becomes an empty glyph.
				nContour = append(nContour, 0, 0)
				continue
			}
			nContour = append(nContour, byte(d.NumContours>>8), byte(d.NumContours))

			var prevX, prevY int
			for _, contour := range u.Contours {
				nPoints = Append255Uint16(nPoints, uint16(len(contour)))
				for _, pt := range contour {
					x, y := int(pt.X), int(pt.Y)
					flags, glyphStream = AppendTriplet(flags, glyphStream, x-prevX, y-prevY, pt.OnCurve)
					prevX, prevY = x, y
				}
			}
			if g.Rect16 != u.BBox() {
				setBit(bboxBitmap, i)
				bboxes = appendBBox(bboxes, g)
			}
			glyphStream = Append255Uint16(glyphStream, uint16(len(u.Instructions)))
			instructions = append(instructions, u.Instructions...)

			u.Overlap = u.Overlap || overlap
			if u.Overlap {
				setBit(overlapBitmap, i)
			}
			rebuilt = &glyf.Glyph{Rect16: g.Rect16, Data: u.Pack()}

		case glyf.CompositeGlyph:
			nContour = append(nContour, 0xFF, 0xFF)
			for k, comp := range d.Components {
				f := comp.Flags
				if k < len(d.Components)-1 {
					f |= glyf.FlagMoreComponents
				} else {
					f &^= glyf.FlagMoreComponents
				}
				composite = append(composite,
					byte(f>>8), byte(f),
					byte(comp.GlyphIndex>>8), byte(comp.GlyphIndex))
				composite = append(composite, comp.Data...)
			}
			setBit(bboxBitmap, i)
			bboxes = appendBBox(bboxes, g)

			var instr []byte
			if glyf.HasInstructions(d.Components) {
				instr = d.Instructions
				if instr == nil {
					instr = []byte{}
				}
				glyphStream = Append255Uint16(glyphStream, uint16(len(instr)))
				instructions = append(instructions, instr...)
			}
			rebuilt = &glyf.Glyph{
				Rect16: g.Rect16,
				Data: glyf.CompositeGlyph{
					Components:   d.Components,
					Instructions: instr,
				},
			}
		}

		expected = rebuilt.Append(expected)
		for len(expected)%4 != 0 {
			expected = append(expected, 0)
		}
	}

	var optionFlags uint16
	if overlap || anySet(overlapBitmap) {
		optionFlags |= 1
	} else {
		overlapBitmap = nil
	}

	bboxStream := append(bboxBitmap, bboxes...)
	streams := [][]byte{
		nContour, nPoints, flags, glyphStream,
		composite, bboxStream, instructions,
	}

	res := []byte{
		0, 0, // reserved
		byte(optionFlags >> 8), byte(optionFlags),
		byte(numGlyphs >> 8), byte(numGlyphs),
		byte(uint16(locaFormat) >> 8), byte(locaFormat),
	}
	for _, s := range streams {
		n := len(s)
		res = append(res, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
	for _, s := range streams {
		res = append(res, s...)
	}
	res = append(res, overlapBitmap...)

	return &TransformedGlyf{
		Data:       res,
		GlyfLength: len(expected),
		LocaLength: glyf.LocaSize(numGlyphs, locaFormat),
	}, nil
}

// AppendTriplet appends the WOFF2 triplet encoding of a point to the flag
// and glyph streams.  The arguments dx and dy give the offset from the
// previous point.
//
// https://www.w3.org/TR/WOFF2/#triplet_decoding
func AppendTriplet(flags, glyphs []byte, dx, dy int, onCurve bool) ([]byte, []byte) {
	var onCurveBit byte
	if !onCurve {
		onCurveBit = 128
	}
	absX, absY := abs(dx), abs(dy)
	var xSign, ySign byte
	if dx >= 0 {
		xSign = 1
	}
	if dy >= 0 {
		ySign = 1
	}
	xySign := xSign + 2*ySign

	switch {
	case dx == 0 && absY < 1280:
		flags = append(flags, onCurveBit+byte((absY&0xF00)>>7)+ySign)
		glyphs = append(glyphs, byte(absY))
	case dy == 0 && absX < 1280:
		flags = append(flags, onCurveBit+10+byte((absX&0xF00)>>7)+xSign)
		glyphs = append(glyphs, byte(absX))
	case absX < 65 && absY < 65:
		flags = append(flags, onCurveBit+20+
			byte((absX-1)&0x30)+byte(((absY-1)&0x30)>>2)+xySign)
		glyphs = append(glyphs, byte((absX-1)&0xF)<<4|byte((absY-1)&0xF))
	case absX < 769 && absY < 769:
		flags = append(flags, onCurveBit+84+
			12*byte(((absX-1)&0x300)>>8)+byte(((absY-1)&0x300)>>6)+xySign)
		glyphs = append(glyphs, byte(absX-1), byte(absY-1))
	case absX < 4096 && absY < 4096:
		flags = append(flags, onCurveBit+120+xySign)
		glyphs = append(glyphs,
			byte(absX>>4), byte(absX&0xF)<<4|byte(absY>>8), byte(absY))
	default:
		flags = append(flags, onCurveBit+124+xySign)
		glyphs = append(glyphs,
			byte(absX>>8), byte(absX), byte(absY>>8), byte(absY))
	}
	return flags, glyphs
}

func appendBBox(buf []byte, g *glyf.Glyph) []byte {
	return append(buf,
		byte(g.LLx>>8), byte(g.LLx),
		byte(g.LLy>>8), byte(g.LLy),
		byte(g.URx>>8), byte(g.URx),
		byte(g.URy>>8), byte(g.URy))
}

func setBit(bitmap []byte, i int) {
	bitmap[i>>3] |= 0x80 >> (i & 7)
}

func anySet(bitmap []byte) bool {
	for _, b := range bitmap {
		if b != 0 {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
