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
	"seehuhn.de/go/woff/woff1"
	"seehuhn.de/go/woff/woff2"
)

// Info describes the content of a WOFF or WOFF2 file.
type Info struct {
	Format Format
	Flavor uint32

	// NumFonts is the number of fonts in the file.  This is larger than
	// one only for WOFF2 font collections.
	NumFonts int

	// SfntSize is the size of the decoded font, as declared in the header.
	SfntSize uint32

	MetadataLength    uint32 // uncompressed
	PrivateDataLength uint32

	Tables []TableInfo
}

// TableInfo describes one entry of the table directory.
type TableInfo struct {
	Tag string

	// OrigLength is the length of the table in the decoded font.
	OrigLength uint32

	// StoredLength is the number of bytes used to store the table in the
	// WOFF file.  For WOFF2 files, this is the length before Brotli
	// compression of the payload.
	StoredLength uint32

	// Transformed is true if the table is zlib-compressed (WOFF)
	// or stored in transformed form (WOFF2).
	Transformed bool
}

// Inspect reads the header and table directory of a WOFF or WOFF2 file,
// without decompressing any table data.  If data is neither a WOFF nor a
// WOFF2 file, nil is returned without an error.
func Inspect(data []byte) (*Info, error) {
	switch Detect(data) {
	case FormatWOFF:
		h, err := woff1.ReadHeader(data)
		if err != nil {
			return nil, err
		}
		info := &Info{
			Format:            FormatWOFF,
			Flavor:            h.Flavor,
			NumFonts:          1,
			SfntSize:          h.TotalSfntSize,
			MetadataLength:    h.MetaOrigLength,
			PrivateDataLength: h.PrivLength,
			Tables:            make([]TableInfo, len(h.Tables)),
		}
		for i, e := range h.Tables {
			info.Tables[i] = TableInfo{
				Tag:          e.Tag,
				OrigLength:   e.OrigLength,
				StoredLength: e.CompLength,
				Transformed:  e.IsCompressed(),
			}
		}
		return info, nil

	case FormatWOFF2:
		h, err := woff2.ReadHeader(data)
		if err != nil {
			return nil, err
		}
		info := &Info{
			Format:            FormatWOFF2,
			Flavor:            h.Flavor,
			NumFonts:          1,
			SfntSize:          h.TotalSfntSize,
			MetadataLength:    h.MetaOrigLength,
			PrivateDataLength: h.PrivLength,
			Tables:            make([]TableInfo, len(h.Tables)),
		}
		if h.Collection != nil {
			info.NumFonts = len(h.Collection.Fonts)
		}
		for i, e := range h.Tables {
			info.Tables[i] = TableInfo{
				Tag:          e.Tag,
				OrigLength:   e.OrigLength,
				StoredLength: e.TransformLength,
				Transformed:  e.IsTransformed(),
			}
		}
		return info, nil

	default:
		return nil, nil
	}
}
