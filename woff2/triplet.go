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
	"math"

	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/woff/glyf"
	"seehuhn.de/go/woff/parser"
)

// decodeTriplets decodes the coordinates of n points of a simple glyph.
// One flag byte per point is read from flagStream, the coordinate bytes
// come from glyphStream.  The decoded points are appended to buf.
//
// https://www.w3.org/TR/WOFF2/#triplet_decoding
func decodeTriplets(buf []glyf.Point, flagStream, glyphStream *parser.Reader, n int) ([]glyf.Point, error) {
	var x, y int
	for i := 0; i < n; i++ {
		rawFlag, err := flagStream.ReadUint8()
		if err != nil {
			return nil, err
		}
		onCurve := rawFlag&0x80 == 0
		flag := int(rawFlag & 0x7F)

		var b [4]int
		nb := tripletBytes(flag)
		for k := 0; k < nb; k++ {
			v, err := glyphStream.ReadUint8()
			if err != nil {
				return nil, err
			}
			b[k] = int(v)
		}

		var dx, dy int
		switch {
		case flag < 10:
			dy = signX(flag) * ((flag&14)<<7 + b[0])
		case flag < 20:
			dx = signX(flag) * (((flag-10)&14)<<7 + b[0])
		case flag < 84:
			c := flag - 20
			dx = signX(flag) * (1 + c&0x30 + b[0]>>4)
			dy = signY(flag) * (1 + (c&0x0C)<<2 + b[0]&0x0F)
		case flag < 120:
			c := flag - 84
			dx = signX(flag) * (1 + (c/12)<<8 + b[0])
			dy = signY(flag) * (1 + ((c%12)>>2)<<8 + b[1])
		case flag < 124:
			dx = signX(flag) * (b[0]<<4 + b[1]>>4)
			dy = signY(flag) * ((b[1]&0x0F)<<8 + b[2])
		default:
			dx = signX(flag) * (b[0]<<8 + b[1])
			dy = signY(flag) * (b[2]<<8 + b[3])
		}

		x += dx
		y += dy
		if x < math.MinInt16 || x > math.MaxInt16 || y < math.MinInt16 || y > math.MaxInt16 {
			return nil, errCoordinateRange
		}
		buf = append(buf, glyf.Point{
			X:       funit.Int16(x),
			Y:       funit.Int16(y),
			OnCurve: onCurve,
		})
	}
	return buf, nil
}

// tripletBytes returns the number of coordinate bytes used by a point
// with the given flag value (with the on-curve bit removed).
func tripletBytes(flag int) int {
	switch {
	case flag < 84:
		return 1
	case flag < 120:
		return 2
	case flag < 124:
		return 3
	default:
		return 4
	}
}

func signX(flag int) int {
	if flag&1 == 0 {
		return -1
	}
	return 1
}

func signY(flag int) int {
	if flag&2 == 0 {
		return -1
	}
	return 1
}

var errCoordinateRange = &parser.InvalidFontError{
	SubSystem: "woff2/glyf",
	Reason:    "glyph coordinate out of range",
}
