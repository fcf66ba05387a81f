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
	"golang.org/x/exp/slices"

	"seehuhn.de/go/woff/header"
)

// placement gives the position of a table in the decoded font.
type placement struct {
	Offset int
	Length int // the space reserved for the table, before padding
}

// layout assigns output positions to all tables, in directory order,
// starting at byte offset start.  Each table is padded to a multiple of
// four bytes.  The function returns the placements together with the
// total size of the output.
func layout(tables []TableEntry, start int) ([]placement, int) {
	res := make([]placement, len(tables))
	pos := start
	for i := range tables {
		length := int(tables[i].OrigLength)
		res[i] = placement{Offset: pos, Length: length}
		pos += (length + 3) &^ 3
	}
	return res, pos
}

// headersSize returns the number of bytes needed for the font header(s)
// and table directories, before the first table.
func headersSize(h *Header) int {
	if h.Collection == nil {
		return header.DirectorySize(len(h.Tables))
	}
	c := h.Collection
	size := header.CollectionHeaderSize(c.MajorVersion, len(c.Fonts))
	for _, font := range c.Fonts {
		size += header.DirectorySize(len(font.Tables))
	}
	return size
}

// glyfPair identifies a transformed "glyf" table and the "loca" table
// which is reconstructed together with it.
type glyfPair struct {
	glyf, loca int
}

// pairGlyfLoca matches each transformed "glyf" table with the first
// unused transformed "loca" table following it in the directory.
func pairGlyfLoca(tables []TableEntry) ([]glyfPair, error) {
	var locas []int
	for j, e := range tables {
		if e.Tag == "loca" && e.IsTransformed() {
			locas = append(locas, j)
		}
	}

	used := make([]bool, len(tables))
	var pairs []glyfPair
	for i, e := range tables {
		if e.Tag != "glyf" || !e.IsTransformed() {
			continue
		}
		k := slices.IndexFunc(locas, func(j int) bool {
			return j > i && !used[j]
		})
		if k < 0 {
			return nil, invalid("transformed \"glyf\" table without \"loca\" table")
		}
		used[locas[k]] = true
		pairs = append(pairs, glyfPair{glyf: i, loca: locas[k]})
	}

	for _, j := range locas {
		if !used[j] {
			return nil, invalid("transformed \"loca\" table without \"glyf\" table")
		}
	}
	return pairs, nil
}
