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

package parser

import (
	"errors"
	"io"
)

// ReadDecompressed fills dst with the output of the decompressor r.
// The decompressed data must have exactly len(dst) bytes, otherwise a
// *DecompressionError is returned.  Errors reported by r are wrapped
// in the returned DecompressionError.
func ReadDecompressed(subSystem string, r io.Reader, dst []byte) error {
	n, err := io.ReadFull(r, dst)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecompressionError{SubSystem: subSystem, Want: len(dst), Got: n}
	} else if err != nil {
		return &DecompressionError{SubSystem: subSystem, Want: len(dst), Got: n, Err: err}
	}

	var extra [1]byte
	k, err := io.ReadFull(r, extra[:])
	if k > 0 {
		return &DecompressionError{SubSystem: subSystem, Want: len(dst), Got: len(dst) + k}
	} else if err != io.EOF {
		return &DecompressionError{SubSystem: subSystem, Want: len(dst), Got: len(dst), Err: err}
	}
	return nil
}
