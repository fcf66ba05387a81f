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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/postscript/funit"

	"seehuhn.de/go/woff/parser"
)

var packTestCases = []*SimpleUnpacked{
	{},
	{
		Contours: []Contour{
			{
				{X: 100, Y: 100, OnCurve: true},
				{X: 200, Y: 100, OnCurve: true},
				{X: 150, Y: 200, OnCurve: true},
			},
			{
				{X: 300, Y: 100, OnCurve: true},
				{X: 350, Y: 150, OnCurve: false},
				{X: 300, Y: 200, OnCurve: true},
				{X: 250, Y: 150, OnCurve: false},
			},
		},
		Instructions: []byte{0x01, 0x02, 0x03},
	},
	{ // identical flags
		Contours: []Contour{
			{
				{X: 0, Y: 100, OnCurve: true},
				{X: 100, Y: 100, OnCurve: true},
				{X: 200, Y: 100, OnCurve: true},
				{X: 300, Y: 100, OnCurve: true},
			},
		},
	},
	{ // long deltas
		Contours: []Contour{
			{
				{X: 0, Y: 0, OnCurve: true},
				{X: 1000, Y: -500, OnCurve: true},
				{X: -2000, Y: 3000, OnCurve: true},
				{X: 32767, Y: -32768, OnCurve: false},
				{X: -32768, Y: 32767, OnCurve: true},
			},
		},
		Instructions: []byte{0xAA, 0xBB},
	},
	{
		Contours: []Contour{
			{
				{X: 0, Y: 0, OnCurve: true},
				{X: 10, Y: 0, OnCurve: true},
				{X: 10, Y: 10, OnCurve: true},
			},
		},
		Overlap: true,
	},
}

func TestPackRoundTrip(t *testing.T) {
	for i, info := range packTestCases {
		encoded := info.Pack()
		if int(encoded.NumContours) != len(info.Contours) {
			t.Errorf("%d: %d contours, want %d", i, encoded.NumContours, len(info.Contours))
		}
		decoded, err := encoded.Unpack()
		if err != nil {
			t.Errorf("%d: %v", i, err)
			continue
		}
		if d := cmp.Diff(info, decoded); d != "" {
			t.Errorf("%d: round trip failed (-want +got):\n%s", i, d)
		}

		n, err := simpleLength(append(encoded.Encoded, 0, 0, 0), int(encoded.NumContours))
		if err != nil {
			t.Errorf("%d: %v", i, err)
		} else if n != len(encoded.Encoded) {
			t.Errorf("%d: length %d, want %d", i, n, len(encoded.Encoded))
		}
	}
}

func TestPackOverlap(t *testing.T) {
	info := packTestCases[4]
	encoded := info.Pack()
	// end point (2 bytes) and instruction length (2 bytes) come first
	if flag := encoded.Encoded[4]; flag&flagOverlapSimple == 0 {
		t.Errorf("OVERLAP_SIMPLE not set on first point: %02x", flag)
	}
}

func TestUnpackTruncated(t *testing.T) {
	encoded := packTestCases[1].Pack()
	for n := 0; n < len(encoded.Encoded); n++ {
		short := SimpleGlyph{
			NumContours: encoded.NumContours,
			Encoded:     encoded.Encoded[:n],
		}
		_, err := short.Unpack()
		if !parser.IsInvalid(err) {
			t.Errorf("%d bytes: expected invalid font error, got %v", n, err)
		}
	}
}

func TestUnpackEndPoints(t *testing.T) {
	// the second contour ends before the first one
	sg := SimpleGlyph{
		NumContours: 2,
		Encoded:     []byte{0, 3, 0, 1, 0, 0, 0x31, 0x08, 3},
	}
	_, err := sg.Unpack()
	if err != errInvalidGlyphData {
		t.Errorf("expected invalid glyph data, got %v", err)
	}
}

func TestAsGlyph(t *testing.T) {
	info := &SimpleUnpacked{
		Contours: []Contour{
			{
				{X: 100, Y: 110, OnCurve: true},
				{X: 200, Y: 110, OnCurve: true},
				{X: 200, Y: 210, OnCurve: true},
				{X: 100, Y: 210, OnCurve: true},
			},
			{
				{X: 150, Y: -5, OnCurve: false},
			},
		},
		Instructions: []byte{0x01, 0x02},
	}

	glyph := info.AsGlyph()
	wantBox := funit.Rect16{LLx: 100, LLy: -5, URx: 200, URy: 210}
	if glyph.Rect16 != wantBox {
		t.Errorf("bounding box: got %+v, want %+v", glyph.Rect16, wantBox)
	}
	if glyph.NumContours() != 2 {
		t.Errorf("got %d contours, want 2", glyph.NumContours())
	}

	empty := (&SimpleUnpacked{Contours: []Contour{}}).AsGlyph()
	if !empty.Rect16.IsZero() {
		t.Errorf("bounding box should be zero for empty glyph: got %+v", empty.Rect16)
	}
}

func TestAppendPoints(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, OnCurve: true},
		{X: 100, Y: -20, OnCurve: false},
		{X: 400, Y: -20, OnCurve: true},
	}
	got := AppendPoints(nil, points, false)
	want := []byte{
		flagOnCurve | flagXSameOrPos | flagYSameOrPos,
		flagXShortVec | flagXSameOrPos | flagYShortVec,
		flagOnCurve | flagYSameOrPos,
		100,        // x: +100
		0x01, 0x2C, // x: +300
		20, // y: -20
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected encoding (-want +got):\n%s", d)
	}
}

func TestAppendPointsRepeatLimit(t *testing.T) {
	points := make([]Point, 300)
	got := AppendPoints(nil, points, false)
	want := []byte{
		flagXSameOrPos | flagYSameOrPos | flagRepeat, 255,
		flagXSameOrPos | flagYSameOrPos | flagRepeat, 43,
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected encoding (-want +got):\n%s", d)
	}
}
