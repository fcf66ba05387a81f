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
	"compress/zlib"

	"seehuhn.de/go/woff/header"
	"seehuhn.de/go/woff/parser"
)

// Decoder converts WOFF 1.0 files into sfnt font files.
// The zero value is ready to use.
type Decoder struct {
	// MaxSize limits the size of the decoded font.
	// If this is zero, parser.DefaultMaxSize is used.
	MaxSize int
}

// Decode converts a WOFF 1.0 file into an sfnt font file,
// using the default settings.
func Decode(data []byte) ([]byte, error) {
	var d Decoder
	return d.Decode(data)
}

// Metadata returns the decompressed extended metadata block of a WOFF 1.0
// file, using the default settings.
func Metadata(data []byte) ([]byte, error) {
	var d Decoder
	return d.Metadata(data)
}

// Decode converts a WOFF 1.0 file into an sfnt font file.
//
// The tables are written in directory order, each padded to a multiple of
// four bytes.  The table checksums and the checkSumAdjustment field of
// the "head" table are recomputed.
func (d *Decoder) Decode(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	err = parser.CheckSize("woff1", uint64(h.TotalSfntSize), d.MaxSize)
	if err != nil {
		return nil, err
	}
	numTables := len(h.Tables)
	dirSize := header.DirectorySize(numTables)
	if int(h.TotalSfntSize) < dirSize {
		return nil, invalid("declared sfnt size %d too small", h.TotalSfntSize)
	}

	out := make([]byte, (int(h.TotalSfntSize)+3)&^3)
	w := parser.NewWriter(out)
	w.Seek(dirSize)

	records := make([]header.Record, numTables)
	headPos := -1
	for i := range h.Tables {
		e := &h.Tables[i]

		start := w.Pos()
		if int64(start)+int64(e.OrigLength) > int64(len(out)) {
			return nil, invalid("tables exceed declared sfnt size")
		}
		dst := out[start : start+int(e.OrigLength)]
		src := data[e.Offset : e.Offset+e.CompLength]
		if e.IsCompressed() {
			err := inflate(dst, src)
			if err != nil {
				return nil, err
			}
		} else {
			copy(dst, src)
		}
		w.Seek(start + len(dst))
		w.Align(4)

		if e.Tag == "head" && headPos < 0 {
			if len(dst) < 12 {
				return nil, invalid("\"head\" table too short")
			}
			headPos = start
		}
		records[i] = header.Record{
			Tag:      e.Tag,
			CheckSum: header.TableChecksum(e.Tag, dst),
			Offset:   uint32(start),
			Length:   e.OrigLength,
		}
	}
	if err := w.Err(); err != nil {
		return nil, err
	}
	if w.Pos() != int(h.TotalSfntSize) {
		return nil, invalid("tables occupy %d bytes, declared sfnt size is %d",
			w.Pos(), h.TotalSfntSize)
	}
	if headPos < 0 {
		return nil, errMissingHead
	}

	w.Seek(0)
	err = header.WriteDirectory(w, h.Flavor, records)
	if err != nil {
		return nil, err
	}

	head := out[headPos : headPos+12]
	header.ClearChecksumAdjustment(head)
	header.PatchChecksumAdjustment(head, header.Checksum(out))

	return out, nil
}

// Metadata returns the decompressed extended metadata block of a WOFF 1.0
// file.  If the file has no metadata, nil is returned.
func (d *Decoder) Metadata(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if h.MetaLength == 0 {
		return nil, nil
	}

	err = parser.CheckSize("woff1", uint64(h.MetaOrigLength), d.MaxSize)
	if err != nil {
		return nil, err
	}
	res := make([]byte, h.MetaOrigLength)
	err = inflate(res, data[h.MetaOffset:h.MetaOffset+h.MetaLength])
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PrivateData returns the private data block of a WOFF 1.0 file,
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

// inflate decompresses the zlib stream src into dst.
// The stream must decode to exactly len(dst) bytes.
func inflate(dst, src []byte) error {
	zr, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return &parser.DecompressionError{SubSystem: "woff1", Want: len(dst), Err: err}
	}
	defer zr.Close()

	return parser.ReadDecompressed("woff1", zr, dst)
}

var errMissingHead = &parser.InvalidFontError{
	SubSystem: "woff1",
	Reason:    "missing \"head\" table",
}
