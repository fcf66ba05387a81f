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
package woff1

import (
	"testing"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/internal/fonttest"
	"seehuhn.de/go/woff/parser"
)

func TestReadHeader(t *testing.T) {
	src := fonttest.GoRegular()
	data, err := fonttest.EncodeWOFF(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	if h.Flavor != src.Flavor {
		t.Errorf("flavor %08x, want %08x", h.Flavor, src.Flavor)
	}
	if int(h.Length) != len(data) || int(h.TotalSfntSize) != src.SfntSize() {
		t.Errorf("wrong sizes %d, %d", h.Length, h.TotalSfntSize)
	}
	if h.MajorVersion != 1 || h.MinorVersion != 0 {
		t.Errorf("wrong version %d.%d", h.MajorVersion, h.MinorVersion)
	}
	if len(h.Tables) != len(src.Tables) {
		t.Fatalf("got %d tables, want %d", len(h.Tables), len(src.Tables))
	}
	for i, e := range h.Tables {
		tab := src.Tables[i]
		if e.Tag != tab.Tag || int(e.OrigLength) != len(tab.Data) {
			t.Errorf("%d: got %q/%d, want %q/%d",
				i, e.Tag, e.OrigLength, tab.Tag, len(tab.Data))
		}
		if e.OrigChecksum != header.TableChecksum(tab.Tag, tab.Data) {
			t.Errorf("%q: wrong checksum", e.Tag)
		}
		if e.Offset%4 != 0 {
			t.Errorf("%q: offset %d not aligned", e.Tag, e.Offset)
		}
	}
}

func TestReadHeaderErrors(t *testing.T) {
	valid, err := fonttest.EncodeWOFF(&fonttest.Font{
		Flavor: header.ScalerTypeTrueType,
		Tables: []fonttest.Table{{Tag: "head", Data: headTable()}},
	}, &fonttest.WOFFOptions{Uncompressed: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(valid) != 120 {
		t.Fatalf("unexpected file size %d", len(valid))
	}
	if _, err := ReadHeader(valid); err != nil {
		t.Fatal(err)
	}

	modify := func(f func(b []byte) []byte) []byte {
		b := append([]byte{}, valid...)
		return f(b)
	}
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated header", valid[:40]},
		{"signature", modify(func(b []byte) []byte {
			b[3] = '2'
			return b
		})},
		{"length", modify(func(b []byte) []byte {
			return append(b, 0, 0, 0, 0)
		})},
		{"no tables", modify(func(b []byte) []byte {
			b[13] = 0
			return b
		})},
		{"reserved", modify(func(b []byte) []byte {
			b[14] = 1
			return b
		})},
		{"metadata outside file", modify(func(b []byte) []byte {
			b[27] = 100 // metaOffset
			b[31] = 40  // metaLength
			return b
		})},
		{"private data outside file", modify(func(b []byte) []byte {
			b[39] = 100 // privOffset
			b[43] = 40  // privLength
			return b
		})},
		{"table count", modify(func(b []byte) []byte {
			b[13] = 4
			return b
		})},
		{"table outside file", modify(func(b []byte) []byte {
			b[51] = 100 // offset
			return b
		})},
		{"compressed length", modify(func(b []byte) []byte {
			b[55] = 55 // compLength
			return b
		})},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ReadHeader(c.data)
			if !parser.IsInvalid(err) {
				t.Errorf("expected invalid font error, got %v", err)
			}
		})
	}
}
