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
	"bytes"
	"errors"

	"github.com/andybalholm/brotli"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/parser"
)

// WOFF2Options controls the output of EncodeWOFF2 and
// EncodeWOFF2Collection.
type WOFF2Options struct {
	// Untransformed stores the "glyf" and "loca" tables without the
	// glyf transform.
	Untransformed bool

	// Overlap sets the OVERLAP_SIMPLE bit for every simple glyph.
	Overlap bool

	// CustomTags writes all table tags explicitly, instead of using the
	// index into the list of known tags.
	CustomTags bool

	Metadata []byte
	Private  []byte
}

// CollectionFont describes one font in a collection, for use with
// EncodeWOFF2Collection.
type CollectionFont struct {
	Flavor uint32

	// Tables gives the indices of the tables used by this font.
	Tables []int
}

// EncodeWOFF2 converts f into a WOFF 2.0 file.
// The argument opt can be nil to use default settings.
func EncodeWOFF2(f *Font, opt *WOFF2Options) ([]byte, error) {
	return encodeWOFF2(f.Flavor, f.Tables, nil, opt)
}

// EncodeWOFF2Collection converts a font collection into a WOFF 2.0
// file.  The fonts refer to tables by their index in tables, so that
// tables can be shared between fonts.
func EncodeWOFF2Collection(tables []Table, fonts []CollectionFont, opt *WOFF2Options) ([]byte, error) {
	return encodeWOFF2(header.ScalerTypeCollection, tables, fonts, opt)
}

type woff2Entry struct {
	tag        string
	version    uint8
	origLength int
	data       []byte // stored in the payload
}

func encodeWOFF2(flavor uint32, tables []Table, fonts []CollectionFont, opt *WOFF2Options) ([]byte, error) {
	if opt == nil {
		opt = &WOFF2Options{}
	}

	entries := make([]woff2Entry, len(tables))
	for i, t := range tables {
		entries[i] = woff2Entry{
			tag:        t.Tag,
			origLength: len(t.Data),
			data:       t.Data,
		}
		if t.Tag == "glyf" || t.Tag == "loca" {
			entries[i].version = 3 // null transform
		}
	}
	if !opt.Untransformed {
		a, b, err := transformTables(tables, entries, opt.Overlap)
		if err != nil {
			return nil, err
		}
		if a != b {
			fonts = swapIndices(fonts, a, b)
		}
	}

	var payload []byte
	for _, e := range entries {
		payload = append(payload, e.data...)
	}
	compressed, err := compressBrotli(payload)
	if err != nil {
		return nil, err
	}
	var meta []byte
	if opt.Metadata != nil {
		meta, err = compressBrotli(opt.Metadata)
		if err != nil {
			return nil, err
		}
	}

	var dir []byte
	for _, e := range entries {
		idx := knownTagIndex(e.tag)
		if idx < 0 || opt.CustomTags {
			dir = append(dir, 0x3F|e.version<<6)
			dir = append(dir, e.tag...)
		} else {
			dir = append(dir, byte(idx)|e.version<<6)
		}
		dir = AppendUintBase128(dir, uint32(e.origLength))
		if isTransformed(e) {
			dir = AppendUintBase128(dir, uint32(len(e.data)))
		}
	}
	if fonts != nil {
		dir = append(dir, 0, 1, 0, 0) // version 1.0
		dir = Append255Uint16(dir, uint16(len(fonts)))
		for _, font := range fonts {
			dir = Append255Uint16(dir, uint16(len(font.Tables)))
			dir = append(dir,
				byte(font.Flavor>>24), byte(font.Flavor>>16),
				byte(font.Flavor>>8), byte(font.Flavor))
			for _, idx := range font.Tables {
				dir = Append255Uint16(dir, uint16(idx))
			}
		}
	}

	sfntSize := 0
	if fonts == nil {
		sfntSize = header.DirectorySize(len(tables))
	} else {
		sfntSize = header.CollectionHeaderSize(1, len(fonts))
		for _, font := range fonts {
			sfntSize += header.DirectorySize(len(font.Tables))
		}
	}
	for _, t := range tables {
		sfntSize += pad4(len(t.Data))
	}

	pos := woff2HeaderSize + len(dir)
	dataOffset := pos
	pos += len(compressed)
	metaOffset := pad4(pos)
	if meta != nil {
		pos = metaOffset + len(meta)
	}
	privOffset := pad4(pos)
	if opt.Private != nil {
		pos = privOffset + len(opt.Private)
	}

	out := make([]byte, pos)
	w := parser.NewWriter(out)
	w.WriteUint32(0x774F4632) // "wOF2"
	w.WriteUint32(flavor)
	w.WriteUint32(uint32(len(out)))
	w.WriteUint16(uint16(len(tables)))
	w.WriteUint16(0)
	w.WriteUint32(uint32(sfntSize))
	w.WriteUint32(uint32(len(compressed)))
	w.WriteUint16(1)
	w.WriteUint16(0)
	writeBlock(w, metaOffset, len(meta))
	w.WriteUint32(uint32(len(opt.Metadata)))
	writeBlock(w, privOffset, len(opt.Private))
	w.Write(dir)
	if err := w.Err(); err != nil {
		return nil, err
	}
	copy(out[dataOffset:], compressed)
	if meta != nil {
		copy(out[metaOffset:], meta)
	}
	if opt.Private != nil {
		copy(out[privOffset:], opt.Private)
	}

	return out, nil
}

// transformTables applies the glyf transform to the first "glyf" and
// "loca" tables.  If the "loca" table came first, the two entries are
// swapped and their indices are returned.
func transformTables(tables []Table, entries []woff2Entry, overlap bool) (int, int, error) {
	glyfIdx, locaIdx, headIdx := -1, -1, -1
	for i, t := range tables {
		switch {
		case t.Tag == "glyf" && glyfIdx < 0:
			glyfIdx = i
		case t.Tag == "loca" && locaIdx < 0:
			locaIdx = i
		case t.Tag == "head" && headIdx < 0:
			headIdx = i
		}
	}
	if glyfIdx < 0 {
		return 0, 0, nil
	}
	if locaIdx < 0 || headIdx < 0 {
		return 0, 0, errors.New("fonttest: \"glyf\" without \"loca\" or \"head\"")
	}
	var a, b int
	if locaIdx < glyfIdx {
		// a transformed "loca" table must follow its "glyf" table
		entries[glyfIdx], entries[locaIdx] = entries[locaIdx], entries[glyfIdx]
		glyfIdx, locaIdx = locaIdx, glyfIdx
		a, b = glyfIdx, locaIdx
	}

	head := tables[headIdx].Data
	if len(head) < 54 {
		return 0, 0, errors.New("fonttest: \"head\" table too short")
	}
	locaFormat := int16(head[50])<<8 | int16(head[51])

	tr, err := TransformGlyf(entries[glyfIdx].data, entries[locaIdx].data, locaFormat, overlap)
	if err != nil {
		return 0, 0, err
	}
	entries[glyfIdx].version = 0
	entries[glyfIdx].data = tr.Data
	entries[glyfIdx].origLength = tr.GlyfLength
	entries[locaIdx].version = 0
	entries[locaIdx].data = nil
	entries[locaIdx].origLength = tr.LocaLength
	return a, b, nil
}

// swapIndices exchanges the table indices a and b in all fonts.
func swapIndices(fonts []CollectionFont, a, b int) []CollectionFont {
	if fonts == nil {
		return nil
	}
	res := make([]CollectionFont, len(fonts))
	for k, font := range fonts {
		res[k].Flavor = font.Flavor
		res[k].Tables = make([]int, len(font.Tables))
		for j, idx := range font.Tables {
			switch idx {
			case a:
				idx = b
			case b:
				idx = a
			}
			res[k].Tables[j] = idx
		}
	}
	return res
}

func isTransformed(e woff2Entry) bool {
	if e.tag == "glyf" || e.tag == "loca" {
		return e.version == 0
	}
	return e.version != 0
}

func compressBrotli(data []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	bw := brotli.NewWriter(buf)
	_, err := bw.Write(data)
	if err != nil {
		return nil, err
	}
	err = bw.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Append255Uint16 appends the 255UInt16 encoding of v to buf.
func Append255Uint16(buf []byte, v uint16) []byte {
	switch {
	case v < 253:
		return append(buf, byte(v))
	case v < 506:
		return append(buf, 255, byte(v-253))
	case v < 762:
		return append(buf, 254, byte(v-506))
	default:
		return append(buf, 253, byte(v>>8), byte(v))
	}
}

// AppendUintBase128 appends the UIntBase128 encoding of v to buf.
func AppendUintBase128(buf []byte, v uint32) []byte {
	n := 1
	for x := v >> 7; x > 0; x >>= 7 {
		n++
	}
	for i := n - 1; i > 0; i-- {
		buf = append(buf, byte(v>>(7*i))&0x7F|0x80)
	}
	return append(buf, byte(v)&0x7F)
}

// knownTagIndex returns the position of tag in the list of tags which
// WOFF2 encodes in the flag byte, or -1.
func knownTagIndex(tag string) int {
	for i, t := range knownTags {
		if t == tag {
			return i
		}
	}
	return -1
}

var knownTags = []string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

const woff2HeaderSize = 48
