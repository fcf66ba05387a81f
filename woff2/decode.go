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
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/parser"
)

// Decoder converts WOFF 2.0 files into sfnt font files or font
// collections.  The zero value is ready to use.
type Decoder struct {
	// MaxSize limits the size of the decompressed table data and of the
	// decoded font.  If this is zero, parser.DefaultMaxSize is used.
	MaxSize int

	// NewBrotliReader, if set, is used instead of the default Brotli
	// decompressor.
	NewBrotliReader func(io.Reader) (io.Reader, error)
}

// Decode converts a WOFF 2.0 file into an sfnt font file or a font
// collection, using the default settings.
func Decode(data []byte) ([]byte, error) {
	var d Decoder
	return d.Decode(data)
}

// Metadata returns the decompressed extended metadata block of a WOFF 2.0
// file, using the default settings.
func Metadata(data []byte) ([]byte, error) {
	var d Decoder
	return d.Metadata(data)
}

// Decode converts a WOFF 2.0 file into an sfnt font file or, if the
// flavor is "ttcf", into a TrueType collection.
//
// Tables are written once, in directory order, and are shared between
// the fonts of a collection.  Transformed "glyf" and "loca" tables are
// reconstructed.  All table checksums are recomputed, and the
// checkSumAdjustment field of the first "head" table is set so that the
// checksum of the whole output is 0xB1B0AFBA.
func (d *Decoder) Decode(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	pairs, err := pairGlyfLoca(h.Tables)
	if err != nil {
		return nil, err
	}

	src := data[h.PayloadOffset : h.PayloadOffset+int(h.TotalCompressedSize)]
	payload, err := d.decompress(src, h.PayloadLength)
	if err != nil {
		return nil, err
	}

	place, total := layout(h.Tables, headersSize(h))
	err = parser.CheckSize("woff2", uint64(total), d.MaxSize)
	if err != nil {
		return nil, err
	}
	if uint64(total) > 0xFFFFFFFF {
		return nil, invalid("decoded font too large")
	}
	out := make([]byte, total)

	lengths := make([]int, len(h.Tables))
	for i := range h.Tables {
		e := &h.Tables[i]
		if e.IsTransformed() {
			continue
		}
		copy(out[place[i].Offset:], payload[e.Offset:e.Offset+e.TransformLength])
		lengths[i] = place[i].Length
	}
	for _, p := range pairs {
		g, l := place[p.glyf], place[p.loca]
		e := &h.Tables[p.glyf]
		glyfData := payload[e.Offset : e.Offset+e.TransformLength]
		glyfOut := out[g.Offset : g.Offset+(g.Length+3)&^3]
		locaOut := out[l.Offset : l.Offset+l.Length]
		n, err := reconstructGlyf(glyfData, glyfOut, locaOut)
		if err != nil {
			return nil, err
		}
		lengths[p.glyf] = n
		lengths[p.loca] = l.Length
	}

	records := make([]header.Record, len(h.Tables))
	var heads []int
	for i := range h.Tables {
		tag := h.Tables[i].Tag
		body := out[place[i].Offset : place[i].Offset+lengths[i]]
		if tag == "head" {
			if len(body) < 12 {
				return nil, invalid("\"head\" table too short")
			}
			header.ClearChecksumAdjustment(body)
			heads = append(heads, i)
		}
		records[i] = header.Record{
			Tag:      tag,
			CheckSum: header.TableChecksum(tag, body),
			Offset:   uint32(place[i].Offset),
			Length:   uint32(lengths[i]),
		}
	}
	if len(heads) == 0 {
		return nil, errMissingHead
	}

	w := parser.NewWriter(out)
	if h.Collection == nil {
		err = header.WriteDirectory(w, h.Flavor, records)
	} else {
		err = writeCollection(w, h.Collection, records)
	}
	if err != nil {
		return nil, err
	}

	// In a collection, the adjustment goes into the first "head" table
	// and the others keep a zero checkSumAdjustment.
	i := heads[0]
	head := out[place[i].Offset : place[i].Offset+lengths[i]]
	header.PatchChecksumAdjustment(head, header.Checksum(out))
	return out, nil
}

// writeCollection writes the collection header and the table directories
// of all fonts in the collection.
func writeCollection(w *parser.Writer, c *Collection, records []header.Record) error {
	fontOffsets := make([]uint32, len(c.Fonts))
	pos := header.CollectionHeaderSize(c.MajorVersion, len(c.Fonts))
	for k, font := range c.Fonts {
		fontOffsets[k] = uint32(pos)
		pos += header.DirectorySize(len(font.Tables))
	}
	err := header.WriteCollection(w, c.MajorVersion, c.MinorVersion, fontOffsets)
	if err != nil {
		return err
	}

	for k, font := range c.Fonts {
		fontRecords := make([]header.Record, len(font.Tables))
		for j, idx := range font.Tables {
			fontRecords[j] = records[idx]
		}
		w.Seek(int(fontOffsets[k]))
		err := header.WriteDirectory(w, font.Flavor, fontRecords)
		if err != nil {
			return err
		}
	}
	return nil
}

// Metadata returns the decompressed extended metadata block of a WOFF 2.0
// file.  If the file has no metadata, nil is returned.
func (d *Decoder) Metadata(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.MetaLength == 0 {
		return nil, nil
	}
	src := data[h.MetaOffset : h.MetaOffset+h.MetaLength]
	return d.decompress(src, int(h.MetaOrigLength))
}

// PrivateData returns the private data block of a WOFF 2.0 file,
// or nil if there is none.  The returned slice points into data.
func PrivateData(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.PrivLength == 0 {
		return nil, nil
	}
	return data[h.PrivOffset : h.PrivOffset+h.PrivLength], nil
}

// decompress decodes the Brotli stream src, which must expand to exactly
// size bytes.
func (d *Decoder) decompress(src []byte, size int) ([]byte, error) {
	err := parser.CheckSize("woff2", uint64(size), d.MaxSize)
	if err != nil {
		return nil, err
	}

	newReader := d.NewBrotliReader
	if newReader == nil {
		newReader = newBrotliReader
	}
	r, err := newReader(bytes.NewReader(src))
	if err != nil {
		return nil, &parser.DecompressionError{SubSystem: "woff2", Want: size, Err: err}
	}

	res := make([]byte, size)
	err = parser.ReadDecompressed("woff2", r, res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func newBrotliReader(r io.Reader) (io.Reader, error) {
	return brotli.NewReader(r), nil
}

var errMissingHead = &parser.InvalidFontError{
	SubSystem: "woff2",
	Reason:    "missing \"head\" table",
}
