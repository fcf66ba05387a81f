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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/postscript/funit"
	"seehuhn.de/go/sfnt/header"

	"seehuhn.de/go/woff/parser"
)

func readGoRegular(t testing.TB) *Encoded {
	t.Helper()

	r := bytes.NewReader(goregular.TTF)
	info, err := header.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	glyfData, err := info.ReadTableBytes(r, "glyf")
	if err != nil {
		t.Fatal(err)
	}
	locaData, err := info.ReadTableBytes(r, "loca")
	if err != nil {
		t.Fatal(err)
	}
	headData, err := info.ReadTableBytes(r, "head")
	if err != nil {
		t.Fatal(err)
	}
	locaFormat := int16(headData[50])<<8 | int16(headData[51])

	return &Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}
}

func TestDecodeGoRegular(t *testing.T) {
	enc := readGoRegular(t)
	gg, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(gg) != len(enc.LocaData)/LocaEntrySize(enc.LocaFormat)-1 {
		t.Errorf("wrong number of glyphs: %d", len(gg))
	}

	var numSimple, numComposite int
	for _, g := range gg {
		if g == nil {
			continue
		}
		switch d := g.Data.(type) {
		case SimpleGlyph:
			numSimple++
			_, err := d.Unpack()
			if err != nil {
				t.Fatal(err)
			}
		case CompositeGlyph:
			numComposite++
		}
	}
	if numSimple == 0 {
		t.Errorf("found %d simple and %d composite glyphs", numSimple, numComposite)
	}

	gg2, err := Decode(gg.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(gg, gg2); diff != "" {
		t.Errorf("round trip failed (-old +new):\n%s", diff)
	}
}

func TestRepackGoRegular(t *testing.T) {
	enc := readGoRegular(t)
	gg, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}

	for gid, g := range gg {
		if g == nil {
			continue
		}
		simple, ok := g.Data.(SimpleGlyph)
		if !ok {
			continue
		}
		unpacked, err := simple.Unpack()
		if err != nil {
			t.Fatal(err)
		}
		repacked, err := unpacked.Pack().Unpack()
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(unpacked, repacked); diff != "" {
			t.Errorf("glyph %d: round trip failed (-old +new):\n%s", gid, diff)
		}
	}
}

func TestEncodeLoca(t *testing.T) {
	short := Glyphs{nil, nil}.Encode()
	if short.LocaFormat != LocaShort || len(short.LocaData) != LocaSize(2, LocaShort) {
		t.Errorf("empty glyphs: format %d, %d bytes", short.LocaFormat, len(short.LocaData))
	}

	// A single glyph with many points forces the long format.
	var contour Contour
	for i := 0; i < 30000; i++ {
		x := funit.Int16(1000)
		if i%2 == 1 {
			x = -1000
		}
		contour = append(contour, Point{X: x, Y: 0, OnCurve: true})
	}
	big := &SimpleUnpacked{Contours: []Contour{contour}}
	g := big.AsGlyph()
	long := Glyphs{&g, &g, &g}.Encode()
	if long.LocaFormat != LocaLong {
		t.Fatalf("expected long loca format")
	}
	gg, err := Decode(long)
	if err != nil {
		t.Fatal(err)
	}
	if len(gg) != 3 {
		t.Errorf("got %d glyphs, want 3", len(gg))
	}
}

func TestWriteLocaEntry(t *testing.T) {
	buf := make([]byte, 8)
	w := parser.NewWriter(buf)
	if err := WriteLocaEntry(w, 0, 1, LocaShort, 200); err != nil {
		t.Fatal(err)
	}
	if err := WriteLocaEntry(w, 0, 2, LocaShort, 2*0x10000); err == nil {
		t.Error("overflow of short loca entry not detected")
	}
	if err := WriteLocaEntry(w, 4, 0, LocaLong, 0x12345678); err != nil {
		t.Fatal(err)
	}
	want := []byte{0, 0, 0, 100, 0x12, 0x34, 0x56, 0x78}
	if diff := cmp.Diff(want, buf); diff != "" {
		t.Errorf("unexpected loca data (-want +got):\n%s", diff)
	}
}

func FuzzGlyf(f *testing.F) {
	enc := readGoRegular(f)
	f.Add(enc.GlyfData, enc.LocaData, enc.LocaFormat)

	f.Add([]byte{}, []byte{0, 0}, int16(0))                       // empty tables
	f.Add([]byte{}, []byte{0, 0, 0, 0}, int16(1))                 // empty tables, format 1
	f.Add(make([]byte, 10), []byte{0, 0, 0, 10}, int16(0))        // minimal glyph header
	f.Add(make([]byte, 20), []byte{0, 0, 0, 20, 0, 40}, int16(0)) // two minimal glyphs

	f.Fuzz(func(t *testing.T, glyfData, locaData []byte, locaFormat int16) {
		enc := &Encoded{
			GlyfData:   glyfData,
			LocaData:   locaData,
			LocaFormat: locaFormat,
		}
		info, err := Decode(enc)
		if err != nil {
			return
		}

		enc2 := info.Encode()

		info2, err := Decode(enc2)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(info, info2); diff != "" {
			t.Errorf("different (-old +new):\n%s", diff)
		}
	})
}
