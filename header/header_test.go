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

package header

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/font/gofont/goregular"
	sfntheader "seehuhn.de/go/sfnt/header"

	"seehuhn.de/go/woff/parser"
)

func TestChecksum(t *testing.T) {
	cases := []struct {
		Body     []byte
		Expected uint32
	}{
		{[]byte{0, 1, 2, 3}, 0x00010203},
		{[]byte{0, 1, 2, 3, 4, 5, 6, 7}, 0x0406080a},
		{[]byte{1}, 0x01000000},
		{[]byte{1, 2, 3}, 0x01020300},
		{[]byte{1, 0, 0, 0, 1}, 0x02000000},
		{[]byte{255, 255, 255, 255, 0, 0, 0, 1}, 0},
		{nil, 0},
	}

	for i, test := range cases {
		sum := Checksum(test.Body)
		if sum != test.Expected {
			t.Errorf("test %d failed: %08x != %08x", i, sum, test.Expected)
		}
	}
}

func TestTableChecksumHead(t *testing.T) {
	head := make([]byte, 54)
	head[3] = 1
	head[8], head[9], head[10], head[11] = 0x12, 0x34, 0x56, 0x78
	if got := TableChecksum("head", head); got != 1 {
		t.Errorf("head checksum: got %08x, want 1", got)
	}
	if got := TableChecksum("hhea", head); got != 0x12345679 {
		t.Errorf("hhea checksum: got %08x, want 12345679", got)
	}

	ClearChecksumAdjustment(head)
	PatchChecksumAdjustment(head, 1)
	if got := Checksum(head); got != ChecksumMagic {
		t.Errorf("whole table checksum %08x, want %08x", got, ChecksumMagic)
	}
}

func TestNewOffsets(t *testing.T) {
	cases := []struct {
		n                                      int
		searchRange, entrySelector, rangeShift uint16
	}{
		{0, 0, 0, 0},
		{1, 16, 0, 0},
		{2, 32, 1, 0},
		{3, 32, 1, 16},
		{9, 128, 3, 16},
		{16, 256, 4, 0},
		{21, 256, 4, 80},
	}
	for _, c := range cases {
		offs := NewOffsets(ScalerTypeTrueType, c.n)
		if offs.SearchRange != c.searchRange ||
			offs.EntrySelector != c.entrySelector ||
			offs.RangeShift != c.rangeShift {
			t.Errorf("%d tables: got %d/%d/%d, want %d/%d/%d", c.n,
				offs.SearchRange, offs.EntrySelector, offs.RangeShift,
				c.searchRange, c.entrySelector, c.rangeShift)
		}
	}
}

// TestWriteDirectory builds a font from the tables of Go Regular and
// checks that the result can be read back by an independent sfnt reader.
func TestWriteDirectory(t *testing.T) {
	r := bytes.NewReader(goregular.TTF)
	info, err := sfntheader.Read(r)
	if err != nil {
		t.Fatal(err)
	}

	tags := []string{"head", "hhea", "maxp", "loca", "glyf", "cmap", "hmtx"}
	tables := make([][]byte, len(tags))
	total := DirectorySize(len(tags))
	for i, tag := range tags {
		tables[i], err = info.ReadTableBytes(r, tag)
		if err != nil {
			t.Fatal(err)
		}
		total += (len(tables[i]) + 3) &^ 3
	}

	buf := make([]byte, total)
	w := parser.NewWriter(buf)
	w.Seek(DirectorySize(len(tags)))
	records := make([]Record, len(tags))
	var headOffset int
	for i, tag := range tags {
		if tag == "head" {
			headOffset = w.Pos()
		}
		records[i] = Record{
			Tag:      tag,
			CheckSum: TableChecksum(tag, tables[i]),
			Offset:   uint32(w.Pos()),
			Length:   uint32(len(tables[i])),
		}
		w.Write(tables[i])
		w.Align(4)
	}
	w.Seek(0)
	err = WriteDirectory(w, ScalerTypeTrueType, records)
	if err != nil {
		t.Fatal(err)
	}
	head := buf[headOffset : headOffset+int(records[0].Length)]
	ClearChecksumAdjustment(head)
	PatchChecksumAdjustment(head, Checksum(buf))
	if Checksum(buf) != ChecksumMagic {
		t.Errorf("font checksum %08x, want %08x", Checksum(buf), ChecksumMagic)
	}

	out := bytes.NewReader(buf)
	info2, err := sfntheader.Read(out)
	if err != nil {
		t.Fatal(err)
	}
	if info2.ScalerType != ScalerTypeTrueType {
		t.Errorf("scaler type %08x", info2.ScalerType)
	}
	for i, tag := range tags {
		data, err := info2.ReadTableBytes(out, tag)
		if err != nil {
			t.Fatal(err)
		}
		if tag == "head" {
			continue
		}
		if !bytes.Equal(data, tables[i]) {
			t.Errorf("table %q differs", tag)
		}
	}
}

func TestWriteCollection(t *testing.T) {
	for _, major := range []uint16{1, 2} {
		size := CollectionHeaderSize(major, 2)
		buf := make([]byte, size)
		w := parser.NewWriter(buf)
		err := WriteCollection(w, major, 0, []uint32{100, 200})
		if err != nil {
			t.Fatal(err)
		}
		if w.Pos() != size {
			t.Errorf("version %d: wrote %d bytes, expected %d", major, w.Pos(), size)
		}

		want := []byte{
			't', 't', 'c', 'f', 0, byte(major), 0, 0,
			0, 0, 0, 2,
			0, 0, 0, 100,
			0, 0, 0, 200,
		}
		if diff := cmp.Diff(want, buf[:20]); diff != "" {
			t.Errorf("version %d (-want +got):\n%s", major, diff)
		}
	}
	if CollectionHeaderSize(2, 2) != 32 {
		t.Errorf("version 2 header size %d", CollectionHeaderSize(2, 2))
	}
}
