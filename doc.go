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
// Package woff converts WOFF and WOFF2 web font files back into sfnt
// font files.
//
// The functions in this package detect the container format from the
// first four bytes of the input and dispatch to the decoders in the
// woff1 and woff2 sub-packages.  Input which is neither a WOFF nor a
// WOFF2 file is not treated as an error: Decode returns nil in this case,
// so that callers can fall back to loading the data as a plain font.
//
// The output of a successful decode is a complete TrueType or OpenType
// font, or a TrueType collection if the WOFF2 file contains one.  All
// table checksums and the checkSumAdjustment fields are recomputed.
package woff
