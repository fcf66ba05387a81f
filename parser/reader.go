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

// Package parser implements bounds-checked access to big-endian binary
// data, including the variable-length integer encodings used by WOFF2.
//
// https://www.w3.org/TR/WOFF2/#DataTypes
package parser

// Reader reads big-endian values from a byte slice.
//
// Sequential reads advance the reading position.  A read which would go
// past the end of the data fails with ErrOutOfBounds and leaves the
// position unchanged.  Slices returned by the Reader point into the
// underlying data.
type Reader struct {
	data []byte
	pos  int
}

// NewReader allocates a new Reader for the given data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Size returns the total length of the underlying data.
func (r *Reader) Size() int {
	return len(r.data)
}

// Pos returns the current reading position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of bytes between the current position and
// the end of the data.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// SeekPos changes the reading position.
func (r *Reader) SeekPos(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return ErrOutOfBounds
	}
	r.pos = pos
	return nil
}

// Discard skips the next n bytes of input.
func (r *Reader) Discard(n int) error {
	if n < 0 || n > len(r.data)-r.pos {
		return ErrOutOfBounds
	}
	r.pos += n
	return nil
}

// ReadBytes returns the next n bytes of input.
// The returned slice points into the underlying data.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, ErrOutOfBounds
	}
	res := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return res, nil
}

// ReadUint8 reads a single uint8 value from the current position.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.pos >= len(r.data) {
		return 0, ErrOutOfBounds
	}
	val := r.data[r.pos]
	r.pos++
	return val, nil
}

// ReadUint16 reads a single uint16 value from the current position.
func (r *Reader) ReadUint16() (uint16, error) {
	val, err := r.Uint16At(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 2
	return val, nil
}

// ReadInt16 reads a single int16 value from the current position.
func (r *Reader) ReadInt16() (int16, error) {
	val, err := r.ReadUint16()
	return int16(val), err
}

// ReadUint32 reads a single uint32 value from the current position.
func (r *Reader) ReadUint32() (uint32, error) {
	val, err := r.Uint32At(r.pos)
	if err != nil {
		return 0, err
	}
	r.pos += 4
	return val, nil
}

// ReadTag reads a four-byte table tag from the current position.
func (r *Reader) ReadTag() (string, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Read255Uint16 reads a 255UInt16 value from the current position.
//
// https://www.w3.org/TR/WOFF2/#255UInt16
func (r *Reader) Read255Uint16() (uint16, error) {
	start := r.pos
	code, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}

	var val uint16
	switch code {
	case wordCode:
		val, err = r.ReadUint16()
	case oneMoreByteCode2:
		var b uint8
		b, err = r.ReadUint8()
		val = uint16(b) + 2*lowestUCode
	case oneMoreByteCode1:
		var b uint8
		b, err = r.ReadUint8()
		val = uint16(b) + lowestUCode
	default:
		val = uint16(code)
	}
	if err != nil {
		r.pos = start
		return 0, err
	}
	return val, nil
}

// ReadUintBase128 reads a UIntBase128 value from the current position.
// Values with leading zero bytes, values longer than five bytes, and
// values which do not fit into 32 bits are rejected with
// ErrMalformedInteger.
//
// https://www.w3.org/TR/WOFF2/#UIntBase128
func (r *Reader) ReadUintBase128() (uint32, error) {
	start := r.pos
	var accum uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			r.pos = start
			return 0, err
		}
		if i == 0 && b == 0x80 {
			r.pos = start
			return 0, ErrMalformedInteger
		}
		if accum&0xFE000000 != 0 {
			r.pos = start
			return 0, ErrMalformedInteger
		}
		accum = accum<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return accum, nil
		}
	}
	r.pos = start
	return 0, ErrMalformedInteger
}

// Uint8At reads the uint8 value at the given absolute position.
// The reading position is not changed.
func (r *Reader) Uint8At(pos int) (uint8, error) {
	if pos < 0 || pos >= len(r.data) {
		return 0, ErrOutOfBounds
	}
	return r.data[pos], nil
}

// Uint16At reads the uint16 value at the given absolute position.
// The reading position is not changed.
func (r *Reader) Uint16At(pos int) (uint16, error) {
	if pos < 0 || pos > len(r.data)-2 {
		return 0, ErrOutOfBounds
	}
	buf := r.data[pos:]
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// Uint32At reads the uint32 value at the given absolute position.
// The reading position is not changed.
func (r *Reader) Uint32At(pos int) (uint32, error) {
	if pos < 0 || pos > len(r.data)-4 {
		return 0, ErrOutOfBounds
	}
	buf := r.data[pos:]
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// TagAt reads the four-byte tag at the given absolute position.
// The reading position is not changed.
func (r *Reader) TagAt(pos int) (string, error) {
	if pos < 0 || pos > len(r.data)-4 {
		return "", ErrOutOfBounds
	}
	return string(r.data[pos : pos+4]), nil
}

// Constants for the 255UInt16 encoding.
const (
	lowestUCode      = 253
	wordCode         = 253
	oneMoreByteCode2 = 254
	oneMoreByteCode1 = 255
)
