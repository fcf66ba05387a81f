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
	"bytes"
	"errors"
	"testing"

	"seehuhn.de/go/sfnt"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/internal/fonttest"
	"seehuhn.de/go/woff/parser"
)

func TestGoRegular(t *testing.T) {
	src := fonttest.GoRegular()
	for _, uncompressed := range []bool{false, true} {
		data, err := fonttest.EncodeWOFF(src, &fonttest.WOFFOptions{
			Uncompressed: uncompressed,
		})
		if err != nil {
			t.Fatal(err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		checkDecoded(t, src, out)
	}
}

func TestGoBoldItalic(t *testing.T) {
	src := fonttest.GoBoldItalic()
	data, err := fonttest.EncodeWOFF(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	checkDecoded(t, src, out)
}

// checkDecoded verifies that out is a valid sfnt font with the same
// tables as src.
func checkDecoded(t *testing.T, src *fonttest.Font, out []byte) {
	t.Helper()

	if len(out) != src.SfntSize() {
		t.Errorf("output has %d bytes, want %d", len(out), src.SfntSize())
	}
	if sum := header.Checksum(out); sum != header.ChecksumMagic {
		t.Errorf("font checksum is %08x, want %08x", sum, header.ChecksumMagic)
	}

	dec, err := fonttest.ReadFont(out)
	if err != nil {
		t.Fatal(err)
	}
	if dec.Flavor != src.Flavor {
		t.Errorf("flavor %08x, want %08x", dec.Flavor, src.Flavor)
	}
	if len(dec.Tables) != len(src.Tables) {
		t.Errorf("got %d tables, want %d", len(dec.Tables), len(src.Tables))
	}
	for _, tab := range src.Tables {
		got := dec.Table(tab.Tag)
		if tab.Tag == "head" {
			if len(got) != len(tab.Data) ||
				!bytes.Equal(got[:8], tab.Data[:8]) ||
				!bytes.Equal(got[12:], tab.Data[12:]) {
				t.Errorf("table \"head\" differs")
			}
		} else if !bytes.Equal(got, tab.Data) {
			t.Errorf("table %q differs", tab.Tag)
		}
	}

	_, err = sfnt.Read(bytes.NewReader(out))
	if err != nil {
		t.Error(err)
	}
}

func TestMetadata(t *testing.T) {
	src := fonttest.GoRegular()
	meta := []byte(`<?xml version="1.0" encoding="UTF-8"?><metadata version="1.0"/>`)
	priv := []byte{1, 2, 3, 4, 5, 6, 7}
	data, err := fonttest.EncodeWOFF(src, &fonttest.WOFFOptions{
		Metadata: meta,
		Private:  priv,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Metadata(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, meta) {
		t.Errorf("metadata %q, want %q", got, meta)
	}
	gotPriv, err := PrivateData(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(gotPriv, priv) {
		t.Errorf("private data %v, want %v", gotPriv, priv)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	checkDecoded(t, src, out)

	plain, err := fonttest.EncodeWOFF(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err = Metadata(plain)
	if err != nil || got != nil {
		t.Errorf("Metadata() = %v, %v, want nil, nil", got, err)
	}
	gotPriv, err = PrivateData(plain)
	if err != nil || gotPriv != nil {
		t.Errorf("PrivateData() = %v, %v, want nil, nil", gotPriv, err)
	}
}

func TestMetadataMismatch(t *testing.T) {
	meta := []byte("<metadata/>")
	data := encodeTables(t, &fonttest.WOFFOptions{Metadata: meta},
		fonttest.Table{Tag: "head", Data: headTable()})
	data[35]++ // metaOrigLength
	_, err := Metadata(data)
	if !parser.IsDecompression(err) {
		t.Errorf("expected decompression error, got %v", err)
	}
}

func TestDecodeSingleTable(t *testing.T) {
	head := headTable()
	data := encodeTables(t, nil, fonttest.Table{Tag: "head", Data: head})
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 84 {
		t.Fatalf("output has %d bytes, want 84", len(out))
	}
	if sum := header.Checksum(out); sum != header.ChecksumMagic {
		t.Errorf("font checksum is %08x, want %08x", sum, header.ChecksumMagic)
	}
	if !bytes.Equal(out[28:36], head[:8]) || !bytes.Equal(out[40:82], head[12:]) {
		t.Error("wrong \"head\" table data")
	}
	if out[82] != 0 || out[83] != 0 {
		t.Error("padding is not zero")
	}
}

// TestSfntSize checks that the declared sfnt size must match the space
// occupied by the tables.
func TestSfntSize(t *testing.T) {
	for _, delta := range []int{-4, -1, 1, 4} {
		data := encodeTables(t, nil, fonttest.Table{Tag: "head", Data: headTable()})
		size := uint32(data[16])<<24 | uint32(data[17])<<16 | uint32(data[18])<<8 | uint32(data[19])
		size = uint32(int(size) + delta)
		data[16], data[17], data[18], data[19] = byte(size>>24), byte(size>>16), byte(size>>8), byte(size)

		_, err := Decode(data)
		if !parser.IsInvalid(err) {
			t.Errorf("%d: expected invalid font error, got %v", delta, err)
		}
	}
}

func TestMissingHead(t *testing.T) {
	data := encodeTables(t, nil, fonttest.Table{Tag: "name", Data: make([]byte, 20)})
	_, err := Decode(data)
	if err != errMissingHead {
		t.Errorf("expected missing head error, got %v", err)
	}
}

func TestShortHead(t *testing.T) {
	data := encodeTables(t, nil, fonttest.Table{Tag: "head", Data: make([]byte, 8)})
	_, err := Decode(data)
	if !parser.IsInvalid(err) {
		t.Errorf("expected invalid font error, got %v", err)
	}
}

// TestDecompressionMismatch enlarges the declared original length of a
// compressed table, so that the zlib stream ends early.
func TestDecompressionMismatch(t *testing.T) {
	src := fonttest.GoRegular()
	data, err := fonttest.EncodeWOFF(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	h, err := ReadHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	idx := -1
	for i, e := range h.Tables {
		if e.IsCompressed() {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatal("no compressed table found")
	}

	orig := h.Tables[idx].OrigLength
	putUint32(data[44+20*idx+12:], orig+4)
	putUint32(data[16:], h.TotalSfntSize+4)

	_, err = Decode(data)
	var decErr *parser.DecompressionError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected decompression error, got %v", err)
	}
	if decErr.Want != int(orig)+4 || decErr.Got != int(orig) {
		t.Errorf("got %d of %d bytes, want %d of %d",
			decErr.Got, decErr.Want, orig, orig+4)
	}
}

func TestCorruptStream(t *testing.T) {
	data := encodeTables(t, nil, fonttest.Table{Tag: "name", Data: make([]byte, 200)})
	h, err := ReadHeader(data)
	if err != nil {
		t.Fatal(err)
	}
	e := h.Tables[0]
	if !e.IsCompressed() {
		t.Fatal("table not compressed")
	}
	data[e.Offset] = 0xFF // invalid zlib header

	_, err = Decode(data)
	if !parser.IsDecompression(err) {
		t.Errorf("expected decompression error, got %v", err)
	}
}

func TestMaxSize(t *testing.T) {
	data, err := fonttest.EncodeWOFF(fonttest.GoRegular(), nil)
	if err != nil {
		t.Fatal(err)
	}
	d := &Decoder{MaxSize: 1000}
	_, err = d.Decode(data)
	if !parser.IsInvalid(err) {
		t.Errorf("expected invalid font error, got %v", err)
	}
}

// headTable returns a minimal "head" table.
func headTable() []byte {
	head := make([]byte, 54)
	head[1] = 1                                       // majorVersion
	copy(head[8:12], []byte{0xDE, 0xAD, 0xBE, 0xEF})  // checksumAdjustment
	copy(head[12:16], []byte{0x5F, 0x0F, 0x3C, 0xF5}) // magicNumber
	head[19] = 0x10                                   // unitsPerEm
	return head
}

func encodeTables(t *testing.T, opt *fonttest.WOFFOptions, tables ...fonttest.Table) []byte {
	t.Helper()
	data, err := fonttest.EncodeWOFF(&fonttest.Font{
		Flavor: header.ScalerTypeTrueType,
		Tables: tables,
	}, opt)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func putUint32(b []byte, v uint32) {
	b[0], b[1], b[2], b[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}
