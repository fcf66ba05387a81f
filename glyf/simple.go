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
	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/woff/parser"
)

// SimpleGlyph is a glyph which is described by its contours.
// Encoded contains the glyph data following the glyph header,
// without padding.
type SimpleGlyph struct {
	NumContours int16
	Encoded     []byte
}

// A Point is a point in a glyph outline
type Point struct {
	X, Y    funit.Int16
	OnCurve bool
}

// A Contour describes a connected part of a glyph outline.
type Contour []Point

// SimpleUnpacked contains the contours of a SimpleGlyph.
type SimpleUnpacked struct {
	Contours     []Contour
	Instructions []byte

	// Overlap is set if the OVERLAP_SIMPLE flag is set on the first point
	// of the glyph.
	Overlap bool
}

// Unpack decodes the contours and instructions of a glyph.
func (sg SimpleGlyph) Unpack() (*SimpleUnpacked, error) {
	r := parser.NewReader(sg.Encoded)

	ends, numPoints, err := readEndPoints(r, int(sg.NumContours))
	if err != nil {
		return nil, err
	}
	instructionLength, err := r.ReadUint16()
	if err != nil {
		return nil, errInvalidGlyphData
	}
	instructions, err := r.ReadBytes(int(instructionLength))
	if err != nil {
		return nil, errInvalidGlyphData
	}
	flags, err := readFlags(r, numPoints)
	if err != nil {
		return nil, err
	}
	xx, err := readCoords(r, flags, flagXShortVec, flagXSameOrPos)
	if err != nil {
		return nil, err
	}
	yy, err := readCoords(r, flags, flagYShortVec, flagYSameOrPos)
	if err != nil {
		return nil, err
	}

	res := &SimpleUnpacked{
		Overlap: numPoints > 0 && flags[0]&flagOverlapSimple != 0,
	}
	if instructionLength > 0 {
		res.Instructions = append([]byte(nil), instructions...)
	}
	if len(ends) > 0 {
		res.Contours = make([]Contour, len(ends))
		start := 0
		for i, end := range ends {
			contour := make(Contour, end-start)
			for j := range contour {
				k := start + j
				contour[j] = Point{X: xx[k], Y: yy[k], OnCurve: flags[k]&flagOnCurve != 0}
			}
			res.Contours[i] = contour
			start = end
		}
	}
	return res, nil
}

// readEndPoints reads the endPtsOfContours array.  The contour ends are
// returned as exclusive point indices, together with the total number of
// points.
func readEndPoints(r *parser.Reader, numContours int) ([]int, int, error) {
	ends := make([]int, numContours)
	numPoints := 0
	for i := range ends {
		v, err := r.ReadUint16()
		if err != nil {
			return nil, 0, errInvalidGlyphData
		}
		end := int(v) + 1
		if end < numPoints {
			return nil, 0, errInvalidGlyphData
		}
		ends[i] = end
		numPoints = end
	}
	return ends, numPoints, nil
}

// readFlags reads the run-length encoded flags of numPoints points.
func readFlags(r *parser.Reader, numPoints int) ([]byte, error) {
	flags := make([]byte, 0, numPoints)
	for len(flags) < numPoints {
		flag, err := r.ReadUint8()
		if err != nil {
			return nil, errInvalidGlyphData
		}
		count := 1
		if flag&flagRepeat != 0 {
			extra, err := r.ReadUint8()
			if err != nil {
				return nil, errInvalidGlyphData
			}
			count += int(extra)
		}
		for ; count > 0 && len(flags) < numPoints; count-- {
			flags = append(flags, flag)
		}
	}
	return flags, nil
}

// readCoords decodes one coordinate array of a simple glyph and returns
// the absolute coordinates.
func readCoords(r *parser.Reader, flags []byte, shortFlag, sameOrPosFlag byte) ([]funit.Int16, error) {
	res := make([]funit.Int16, len(flags))
	var pos funit.Int16
	for i, flag := range flags {
		switch {
		case flag&shortFlag != 0:
			d, err := r.ReadUint8()
			if err != nil {
				return nil, errInvalidGlyphData
			}
			if flag&sameOrPosFlag != 0 {
				pos += funit.Int16(d)
			} else {
				pos -= funit.Int16(d)
			}
		case flag&sameOrPosFlag == 0:
			d, err := r.ReadInt16()
			if err != nil {
				return nil, errInvalidGlyphData
			}
			pos += funit.Int16(d)
		}
		res[i] = pos
	}
	return res, nil
}

// coordSize returns the number of bytes used by one coordinate.
func coordSize(flag, shortFlag, sameOrPosFlag byte) int {
	switch {
	case flag&shortFlag != 0:
		return 1
	case flag&sameOrPosFlag != 0:
		return 0
	default:
		return 2
	}
}

// simpleLength returns the length of the simple glyph description at the
// start of data, so that trailing padding can be removed.
func simpleLength(data []byte, numContours int) (int, error) {
	r := parser.NewReader(data)
	_, numPoints, err := readEndPoints(r, numContours)
	if err != nil {
		return 0, err
	}
	instructionLength, err := r.ReadUint16()
	if err != nil {
		return 0, errInvalidGlyphData
	}
	if r.Discard(int(instructionLength)) != nil {
		return 0, errInvalidGlyphData
	}
	flags, err := readFlags(r, numPoints)
	if err != nil {
		return 0, err
	}
	coordBytes := 0
	for _, flag := range flags {
		coordBytes += coordSize(flag, flagXShortVec, flagXSameOrPos)
		coordBytes += coordSize(flag, flagYShortVec, flagYSameOrPos)
	}
	if r.Discard(coordBytes) != nil {
		return 0, errInvalidGlyphData
	}
	return r.Pos(), nil
}

// Pack encodes the contours and instructions in the "glyf" table format.
func (sd *SimpleUnpacked) Pack() SimpleGlyph {
	var buf []byte
	var points []Point
	for _, contour := range sd.Contours {
		points = append(points, contour...)
		last := len(points) - 1
		buf = append(buf, byte(last>>8), byte(last))
	}

	n := len(sd.Instructions)
	buf = append(buf, byte(n>>8), byte(n))
	buf = append(buf, sd.Instructions...)
	buf = AppendPoints(buf, points, sd.Overlap)

	return SimpleGlyph{
		NumContours: int16(len(sd.Contours)),
		Encoded:     buf,
	}
}

// AppendPoints appends the flags and coordinate arrays for the given
// points to buf, using the most compact encoding for each point.
// If overlap is set, the OVERLAP_SIMPLE flag is set on the first point.
func AppendPoints(buf []byte, points []Point, overlap bool) []byte {
	flags := make([]byte, len(points))
	var xs, ys []byte
	var prev Point
	for i, pt := range points {
		var fx, fy byte
		fx, xs = appendDelta(xs, pt.X-prev.X, flagXShortVec, flagXSameOrPos)
		fy, ys = appendDelta(ys, pt.Y-prev.Y, flagYShortVec, flagYSameOrPos)
		flags[i] = fx | fy
		if pt.OnCurve {
			flags[i] |= flagOnCurve
		}
		prev = pt
	}
	if overlap && len(flags) > 0 {
		flags[0] |= flagOverlapSimple
	}

	buf = appendFlags(buf, flags)
	buf = append(buf, xs...)
	return append(buf, ys...)
}

// appendDelta appends the encoding of one coordinate delta to buf and
// returns the corresponding flag bits.
func appendDelta(buf []byte, d funit.Int16, shortFlag, sameOrPosFlag byte) (byte, []byte) {
	switch {
	case d == 0:
		return sameOrPosFlag, buf
	case d > 0 && d <= 255:
		return shortFlag | sameOrPosFlag, append(buf, byte(d))
	case d < 0 && d >= -255:
		return shortFlag, append(buf, byte(-d))
	default:
		return 0, append(buf, byte(d>>8), byte(d))
	}
}

// appendFlags appends the flags to buf, combining runs of up to 256
// identical flags into a single entry.
func appendFlags(buf []byte, flags []byte) []byte {
	for i := 0; i < len(flags); {
		flag := flags[i]
		run := 1
		for i+run < len(flags) && flags[i+run] == flag && run < 256 {
			run++
		}
		if run > 1 {
			buf = append(buf, flag|flagRepeat, byte(run-1))
		} else {
			buf = append(buf, flag)
		}
		i += run
	}
	return buf
}

// BBox returns the bounding box of all points in the glyph.
// The zero rectangle is returned if the glyph has no points.
func (sd *SimpleUnpacked) BBox() funit.Rect16 {
	var bbox funit.Rect16
	empty := true
	for _, contour := range sd.Contours {
		for _, pt := range contour {
			if empty {
				bbox = funit.Rect16{LLx: pt.X, LLy: pt.Y, URx: pt.X, URy: pt.Y}
				empty = false
				continue
			}
			bbox.LLx = min(bbox.LLx, pt.X)
			bbox.LLy = min(bbox.LLy, pt.Y)
			bbox.URx = max(bbox.URx, pt.X)
			bbox.URy = max(bbox.URy, pt.Y)
		}
	}
	return bbox
}

// AsGlyph packs the glyph and uses the bounding box of the points.
func (sd *SimpleUnpacked) AsGlyph() Glyph {
	return Glyph{
		Rect16: sd.BBox(),
		Data:   sd.Pack(),
	}
}

// https://docs.microsoft.com/en-us/typography/opentype/spec/glyf#simpleGlyphFlags
const (
	flagOnCurve       = 0x01 // ON_CURVE_POINT
	flagXShortVec     = 0x02 // X_SHORT_VECTOR
	flagYShortVec     = 0x04 // Y_SHORT_VECTOR
	flagRepeat        = 0x08 // REPEAT_FLAG
	flagXSameOrPos    = 0x10 // X_IS_SAME_OR_POSITIVE_X_SHORT_VECTOR
	flagYSameOrPos    = 0x20 // Y_IS_SAME_OR_POSITIVE_Y_SHORT_VECTOR
	flagOverlapSimple = 0x40 // OVERLAP_SIMPLE
)

var errInvalidGlyphData = &parser.InvalidFontError{
	SubSystem: "glyf",
	Reason:    "invalid glyph data",
}
