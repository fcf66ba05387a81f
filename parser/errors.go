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
	"fmt"
)

// InvalidFontError indicates a problem with the font file.
// The declared sizes, offsets or counts in the file disagree with the
// actual data.
type InvalidFontError struct {
	SubSystem string
	Reason    string
}

func (err *InvalidFontError) Error() string {
	return err.SubSystem + ": " + err.Reason
}

// NotSupportedError indicates that a font file seems valid but uses a
// feature which is not supported by this library.
type NotSupportedError struct {
	SubSystem string
	Feature   string
}

func (err *NotSupportedError) Error() string {
	return err.SubSystem + ": " + err.Feature + " not supported"
}

// DecompressionError indicates that a compressed block of the font file
// did not decompress to the declared number of bytes.
type DecompressionError struct {
	SubSystem string
	Want      int
	Got       int

	// Err, if non-nil, is the error reported by the decompressor.
	Err error
}

func (err *DecompressionError) Error() string {
	msg := fmt.Sprintf("%s: decompressed %d bytes, expected %d",
		err.SubSystem, err.Got, err.Want)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *DecompressionError) Unwrap() error {
	return err.Err
}

// ErrOutOfBounds is returned when a read or write would go past the end
// of the underlying buffer.
var ErrOutOfBounds = &InvalidFontError{
	SubSystem: "parser",
	Reason:    "access beyond end of data",
}

// ErrMalformedInteger is returned when a variable-length integer is not
// correctly encoded.
var ErrMalformedInteger = &InvalidFontError{
	SubSystem: "parser",
	Reason:    "malformed variable-length integer",
}

// IsInvalid returns true if the error is, or wraps, an InvalidFontError.
func IsInvalid(err error) bool {
	var e *InvalidFontError
	return errors.As(err, &e)
}

// IsUnsupported returns true if the error is, or wraps, a NotSupportedError.
func IsUnsupported(err error) bool {
	var e *NotSupportedError
	return errors.As(err, &e)
}

// IsDecompression returns true if the error is, or wraps, a
// DecompressionError.
func IsDecompression(err error) bool {
	var e *DecompressionError
	return errors.As(err, &e)
}

// DefaultMaxSize is the default upper bound for the size of a decoded font.
const DefaultMaxSize = 256 << 20

// CheckSize verifies that an allocation of the given size stays within the
// limit max.  If max is zero, DefaultMaxSize is used.
func CheckSize(subSystem string, size uint64, max int) error {
	if max <= 0 {
		max = DefaultMaxSize
	}
	if size > uint64(max) {
		return &InvalidFontError{
			SubSystem: subSystem,
			Reason:    fmt.Sprintf("font too large (%d bytes)", size),
		}
	}
	return nil
}
