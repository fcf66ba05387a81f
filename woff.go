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
package woff

import (
	"io"

	"seehuhn.de/go/woff/parser"
	"seehuhn.de/go/woff/woff1"
	"seehuhn.de/go/woff/woff2"
)

// Format identifies a font container format.
type Format int

// These are the container formats recognised by Detect.
const (
	FormatUnknown Format = iota
	FormatWOFF
	FormatWOFF2
)

func (f Format) String() string {
	switch f {
	case FormatWOFF:
		return "WOFF"
	case FormatWOFF2:
		return "WOFF2"
	default:
		return "unknown"
	}
}

// Detect determines the container format from the first four bytes of data.
func Detect(data []byte) Format {
	r := parser.NewReader(data)
	signature, err := r.ReadUint32()
	if err != nil {
		return FormatUnknown
	}
	switch signature {
	case woff1.Signature:
		return FormatWOFF
	case woff2.Signature:
		return FormatWOFF2
	default:
		return FormatUnknown
	}
}

// Decoder converts WOFF and WOFF2 files into sfnt font files.
// The zero value is ready to use.
type Decoder struct {
	// MaxSize limits the size of the decoded font.
	// If this is zero, parser.DefaultMaxSize is used.
	MaxSize int

	// NewBrotliReader, if set, replaces the default Brotli decompressor
	// for WOFF2 files.
	NewBrotliReader func(io.Reader) (io.Reader, error)
}

// Decode converts a WOFF or WOFF2 file into an sfnt font file,
// using the default settings.
//
// If data is neither a WOFF nor a WOFF2 file, nil is returned
// without an error.
func Decode(data []byte) ([]byte, error) {
	var d Decoder
	return d.Decode(data)
}

// Metadata returns the decompressed extended metadata block of a WOFF or
// WOFF2 file, using the default settings.
func Metadata(data []byte) ([]byte, error) {
	var d Decoder
	return d.Metadata(data)
}

// Decode converts a WOFF or WOFF2 file into an sfnt font file.
// WOFF2 files with flavor "ttcf" are converted into a TrueType collection.
//
// If data is neither a WOFF nor a WOFF2 file, nil is returned
// without an error.  On failure, no partial output is returned.
func (d *Decoder) Decode(data []byte) ([]byte, error) {
	switch Detect(data) {
	case FormatWOFF:
		dec := &woff1.Decoder{MaxSize: d.MaxSize}
		return dec.Decode(data)
	case FormatWOFF2:
		return d.woff2().Decode(data)
	default:
		return nil, nil
	}
}

// Metadata returns the decompressed extended metadata block of a WOFF or
// WOFF2 file.  The result is nil if the file has no metadata, or if data
// is neither a WOFF nor a WOFF2 file.
func (d *Decoder) Metadata(data []byte) ([]byte, error) {
	switch Detect(data) {
	case FormatWOFF:
		dec := &woff1.Decoder{MaxSize: d.MaxSize}
		return dec.Metadata(data)
	case FormatWOFF2:
		return d.woff2().Metadata(data)
	default:
		return nil, nil
	}
}

// PrivateData returns the private data block of a WOFF or WOFF2 file,
// or nil if there is none.  The returned slice points into data.
func PrivateData(data []byte) ([]byte, error) {
	switch Detect(data) {
	case FormatWOFF:
		return woff1.PrivateData(data)
	case FormatWOFF2:
		return woff2.PrivateData(data)
	default:
		return nil, nil
	}
}

func (d *Decoder) woff2() *woff2.Decoder {
	return &woff2.Decoder{
		MaxSize:         d.MaxSize,
		NewBrotliReader: d.NewBrotliReader,
	}
}
