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

// Package fonttest creates WOFF and WOFF2 files for use in unit tests.
//
// The encoders in this package are simple and only intended to produce
// test input.  They do not attempt to reach good compression.
package fonttest

import (
	"bytes"
	"compress/zlib"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goregular"
	sfntheader "seehuhn.de/go/sfnt/header"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/parser"
)

// Table is a single table of an sfnt font.
type Table struct {
	Tag  string
	Data []byte
}

// Font is an sfnt font, split into tables.
type Font struct {
	Flavor uint32
	Tables []Table
}

// ReadFont splits an sfnt font file into tables.
// The tables are returned in the order they appear in the file.
func ReadFont(data []byte) (*Font, error) {
	r := bytes.NewReader(data)
	info, err := sfntheader.Read(r)
	if err != nil {
		return nil, err
	}

	tags := maps.Keys(info.Toc)
	sort.Slice(tags, func(i, j int) bool {
		return info.Toc[tags[i]].Offset < info.Toc[tags[j]].Offset
	})

	font := &Font{Flavor: info.ScalerType}
	for _, tag := range tags {
		body, err := info.ReadTableBytes(r, tag)
		if err != nil {
			return nil, err
		}
		font.Tables = append(font.Tables, Table{Tag: tag, Data: body})
	}
	return font, nil
}

// GoRegular returns the tables of the Go Regular font.
func GoRegular() *Font {
	return mustRead(goregular.TTF)
}

// GoBoldItalic returns the tables of the Go Bold Italic font.
func GoBoldItalic() *Font {
	return mustRead(gobolditalic.TTF)
}

func mustRead(data []byte) *Font {
	font, err := ReadFont(data)
	if err != nil {
		panic(err)
	}
	return font
}

// Table returns the data of the first table with the given tag,
// or nil if there is no such table.
func (f *Font) Table(tag string) []byte {
	for _, t := range f.Tables {
		if t.Tag == tag {
			return t.Data
		}
	}
	return nil
}

// SfntSize returns the size of the sfnt file corresponding to f,
// with every table padded to a multiple of four bytes.
func (f *Font) SfntSize() int {
	size := header.DirectorySize(len(f.Tables))
	for _, t := range f.Tables {
		size += pad4(len(t.Data))
	}
	return size
}

// WOFFOptions controls the output of EncodeWOFF.
type WOFFOptions struct {
	// Uncompressed stores all tables without zlib compression.
	Uncompressed bool

	Metadata []byte
	Private  []byte
}

// EncodeWOFF converts f into a WOFF 1.0 file.
// The argument opt can be nil to use default settings.
func EncodeWOFF(f *Font, opt *WOFFOptions) ([]byte, error) {
	if opt == nil {
		opt = &WOFFOptions{}
	}

	numTables := len(f.Tables)
	stored := make([][]byte, numTables)
	for i, t := range f.Tables {
		stored[i] = t.Data
		if opt.Uncompressed {
			continue
		}
		comp, err := deflate(t.Data)
		if err != nil {
			return nil, err
		}
		if len(comp) < len(t.Data) {
			stored[i] = comp
		}
	}
	var meta []byte
	if opt.Metadata != nil {
		var err error
		meta, err = deflate(opt.Metadata)
		if err != nil {
			return nil, err
		}
	}

	pos := woffHeaderSize + woffEntrySize*numTables
	offsets := make([]int, numTables)
	for i := range stored {
		offsets[i] = pos
		pos = pad4(pos + len(stored[i]))
	}
	metaOffset := pos
	if meta != nil {
		pos = pad4(pos + len(meta))
	}
	privOffset := pos
	pos += len(opt.Private)

	out := make([]byte, pos)
	w := parser.NewWriter(out)
	w.WriteUint32(0x774F4646) // "wOFF"
	w.WriteUint32(f.Flavor)
	w.WriteUint32(uint32(len(out)))
	w.WriteUint16(uint16(numTables))
	w.WriteUint16(0)
	w.WriteUint32(uint32(f.SfntSize()))
	w.WriteUint16(1)
	w.WriteUint16(0)
	writeBlock(w, metaOffset, len(meta))
	w.WriteUint32(uint32(len(opt.Metadata)))
	writeBlock(w, privOffset, len(opt.Private))

	for i, t := range f.Tables {
		w.WriteTag(t.Tag)
		w.WriteUint32(uint32(offsets[i]))
		w.WriteUint32(uint32(len(stored[i])))
		w.WriteUint32(uint32(len(t.Data)))
		w.WriteUint32(header.TableChecksum(t.Tag, t.Data))
	}
	for i := range stored {
		copy(out[offsets[i]:], stored[i])
	}
	copy(out[metaOffset:], meta)
	copy(out[privOffset:], opt.Private)

	if err := w.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// writeBlock writes the offset and length of an optional data block.
// Absent blocks are written with offset zero.
func writeBlock(w *parser.Writer, offset, length int) {
	if length == 0 {
		offset = 0
	}
	w.WriteUint32(uint32(offset))
	w.WriteUint32(uint32(length))
}

func deflate(data []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zlib.NewWriter(buf)
	_, err := zw.Write(data)
	if err != nil {
		return nil, err
	}
	err = zw.Close()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

const (
	woffHeaderSize = 44
	woffEntrySize  = 20
)
