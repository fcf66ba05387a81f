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

package woff2

import (
	"fmt"

	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/woff/glyf"
	"seehuhn.de/go/woff/parser"
)

// glyfStreams holds the sub-streams of a transformed "glyf" table.
//
// https://www.w3.org/TR/WOFF2/#glyf_table_format
type glyfStreams struct {
	numGlyphs   int
	indexFormat int16

	nContour     *parser.Reader
	nPoints      *parser.Reader
	flags        *parser.Reader
	glyphs       *parser.Reader
	composite    *parser.Reader
	bbox         *parser.Reader
	instructions *parser.Reader

	bboxBitmap    []byte
	overlapBitmap []byte // nil if not present
}

const glyfHeaderSize = 36

// readGlyfStreams parses the header of a transformed "glyf" table and
// splits the remaining data into sub-streams.
func readGlyfStreams(data []byte) (*glyfStreams, error) {
	r := parser.NewReader(data)
	reserved, err := r.ReadUint16()
	if err != nil {
		return nil, errGlyfHeader
	}
	optionFlags, _ := r.ReadUint16()
	numGlyphs, _ := r.ReadUint16()
	indexFormat, _ := r.ReadUint16()
	var sizes [7]uint32
	for i := range sizes {
		sizes[i], err = r.ReadUint32()
		if err != nil {
			return nil, errGlyfHeader
		}
	}

	if reserved != 0 {
		return nil, glyfInvalid("reserved field is not zero")
	}
	if indexFormat > 1 {
		return nil, glyfInvalid("invalid index format %d", indexFormat)
	}

	total := uint64(glyfHeaderSize)
	for _, size := range sizes {
		total += uint64(size)
	}
	var overlapSize int
	if optionFlags&1 != 0 {
		overlapSize = (int(numGlyphs) + 7) / 8
	}
	if total+uint64(overlapSize) != uint64(len(data)) {
		return nil, glyfInvalid("sub-stream sizes do not match table length")
	}
	if sizes[0] != 2*uint32(numGlyphs) {
		return nil, glyfInvalid("nContour stream has wrong size")
	}
	bboxBitmapSize := 4 * ((int(numGlyphs) + 31) / 32)
	if int(sizes[5]) < bboxBitmapSize {
		return nil, glyfInvalid("bbox stream too short")
	}

	s := &glyfStreams{
		numGlyphs:   int(numGlyphs),
		indexFormat: int16(indexFormat),
	}
	streams := []**parser.Reader{
		&s.nContour, &s.nPoints, &s.flags, &s.glyphs,
		&s.composite, &s.bbox, &s.instructions,
	}
	pos := glyfHeaderSize
	for i, size := range sizes {
		*streams[i] = parser.NewReader(data[pos : pos+int(size)])
		pos += int(size)
	}
	s.bboxBitmap, _ = s.bbox.ReadBytes(bboxBitmapSize)
	if overlapSize > 0 {
		s.overlapBitmap = data[pos : pos+overlapSize]
	}
	return s, nil
}

// reconstructGlyf reverses the glyf transform.  The "glyf" table is
// written into glyfOut and the "loca" table into locaOut.  The function
// returns the length of the reconstructed "glyf" table.
func reconstructGlyf(data []byte, glyfOut, locaOut []byte) (int, error) {
	s, err := readGlyfStreams(data)
	if err != nil {
		return 0, err
	}

	if len(locaOut) != glyf.LocaSize(s.numGlyphs, s.indexFormat) {
		return 0, glyfInvalid("\"loca\" table has wrong size")
	}
	locaW := parser.NewWriter(locaOut)
	glyfW := parser.NewWriter(glyfOut)

	var scratch []byte
	var points []glyf.Point
	for i := 0; i < s.numGlyphs; i++ {
		err := glyf.WriteLocaEntry(locaW, 0, i, s.indexFormat, glyfW.Pos())
		if err != nil {
			return 0, err
		}

		nContours, err := s.nContour.ReadInt16()
		if err != nil {
			return 0, err
		}
		hasBBox := bitIsSet(s.bboxBitmap, i)

		var g *glyf.Glyph
		switch {
		case nContours == 0:
			if hasBBox {
				return 0, glyfInvalid("glyph %d: empty glyph with bounding box", i)
			}
			continue

		case nContours == -1:
			if !hasBBox {
				return 0, glyfInvalid("glyph %d: composite glyph without bounding box", i)
			}
			comps, err := glyf.ReadComponents(s.composite)
			if err != nil {
				return 0, err
			}
			bbox, err := readBBox(s.bbox)
			if err != nil {
				return 0, err
			}
			var instructions []byte
			if glyf.HasInstructions(comps) {
				instructions, err = s.readInstructions()
				if err != nil {
					return 0, err
				}
			}
			g = &glyf.Glyph{
				Rect16: bbox,
				Data: glyf.CompositeGlyph{
					Components:   comps,
					Instructions: instructions,
				},
			}

		case nContours > 0:
			var simple *glyf.SimpleUnpacked
			simple, points, err = s.readSimple(int(nContours), points[:0])
			if err != nil {
				return 0, fmt.Errorf("glyph %d: %w", i, err)
			}
			simple.Overlap = bitIsSet(s.overlapBitmap, i)

			var bbox funit.Rect16
			if hasBBox {
				bbox, err = readBBox(s.bbox)
				if err != nil {
					return 0, err
				}
			}
			instructions, err := s.readInstructions()
			if err != nil {
				return 0, err
			}
			simple.Instructions = instructions

			if hasBBox {
				g = &glyf.Glyph{
					Rect16: bbox,
					Data:   simple.Pack(),
				}
			} else {
				implicit := simple.AsGlyph()
				g = &implicit
			}

		default:
			return 0, glyfInvalid("glyph %d: invalid number of contours %d", i, nContours)
		}

		scratch = g.Append(scratch[:0])
		glyfW.Write(scratch)
		glyfW.Align(4)
		if glyfW.Err() != nil {
			return 0, glyfInvalid("reconstructed \"glyf\" table exceeds declared length")
		}
	}

	err = glyf.WriteLocaEntry(locaW, 0, s.numGlyphs, s.indexFormat, glyfW.Pos())
	if err != nil {
		return 0, err
	}
	return glyfW.Pos(), nil
}

// readSimple reads the point data of a simple glyph.  The slice buf is
// used as storage for the points and is returned for reuse.
// Instructions are read separately, since the bounding box comes first.
func (s *glyfStreams) readSimple(numContours int, buf []glyf.Point) (*glyf.SimpleUnpacked, []glyf.Point, error) {
	counts := make([]int, numContours)
	total := 0
	for k := range counts {
		c, err := s.nPoints.Read255Uint16()
		if err != nil {
			return nil, buf, err
		}
		counts[k] = int(c)
		total += int(c)
	}
	if total > 0x10000 {
		return nil, buf, glyfInvalid("too many points")
	}

	buf, err := decodeTriplets(buf, s.flags, s.glyphs, total)
	if err != nil {
		return nil, buf, err
	}

	contours := make([]glyf.Contour, numContours)
	start := 0
	for k, c := range counts {
		contours[k] = buf[start : start+c : start+c]
		start += c
	}
	return &glyf.SimpleUnpacked{Contours: contours}, buf, nil
}

// readInstructions reads the instruction length from the glyph stream
// and the instructions from the instruction stream.
func (s *glyfStreams) readInstructions() ([]byte, error) {
	n, err := s.glyphs.Read255Uint16()
	if err != nil {
		return nil, err
	}
	instructions, err := s.instructions.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	if instructions == nil {
		instructions = []byte{}
	}
	return instructions, nil
}

func readBBox(r *parser.Reader) (funit.Rect16, error) {
	var v [4]int16
	for i := range v {
		var err error
		v[i], err = r.ReadInt16()
		if err != nil {
			return funit.Rect16{}, err
		}
	}
	return funit.Rect16{
		LLx: funit.Int16(v[0]),
		LLy: funit.Int16(v[1]),
		URx: funit.Int16(v[2]),
		URy: funit.Int16(v[3]),
	}, nil
}

// bitIsSet tests bit i of a bitmap, where bit 0 is the most significant
// bit of the first byte.
func bitIsSet(bitmap []byte, i int) bool {
	if i>>3 >= len(bitmap) {
		return false
	}
	return bitmap[i>>3]&(0x80>>(i&7)) != 0
}

func glyfInvalid(format string, args ...any) error {
	return &parser.InvalidFontError{
		SubSystem: "woff2/glyf",
		Reason:    fmt.Sprintf(format, args...),
	}
}

var errGlyfHeader = &parser.InvalidFontError{
	SubSystem: "woff2/glyf",
	Reason:    "incomplete transformed glyf header",
}
