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

// Writer writes big-endian values into a pre-allocated buffer.
//
// The buffer never grows.  The first write which does not fit is
// recorded and all later writes are ignored; the error can be inspected
// using the Err method.
type Writer struct {
	buf []byte
	pos int
	err error
}

// NewWriter allocates a new Writer for the given buffer.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// Err returns the first error encountered while writing.
func (w *Writer) Err() error {
	return w.err
}

// Pos returns the current writing position.
func (w *Writer) Pos() int {
	return w.pos
}

// Bytes returns the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Seek changes the writing position.
func (w *Writer) Seek(pos int) {
	if w.err != nil {
		return
	}
	if pos < 0 || pos > len(w.buf) {
		w.err = ErrOutOfBounds
		return
	}
	w.pos = pos
}

// reserve returns the next n bytes of the buffer and advances the
// writing position.
func (w *Writer) reserve(n int) []byte {
	if w.err != nil {
		return nil
	}
	if n > len(w.buf)-w.pos {
		w.err = ErrOutOfBounds
		return nil
	}
	res := w.buf[w.pos : w.pos+n]
	w.pos += n
	return res
}

// Write copies data into the buffer.
func (w *Writer) Write(data []byte) {
	if b := w.reserve(len(data)); b != nil {
		copy(b, data)
	}
}

// WriteUint8 writes a single byte.
func (w *Writer) WriteUint8(val uint8) {
	if b := w.reserve(1); b != nil {
		b[0] = val
	}
}

// WriteUint16 writes a uint16 value.
func (w *Writer) WriteUint16(val uint16) {
	if b := w.reserve(2); b != nil {
		b[0] = byte(val >> 8)
		b[1] = byte(val)
	}
}

// WriteInt16 writes an int16 value.
func (w *Writer) WriteInt16(val int16) {
	w.WriteUint16(uint16(val))
}

// WriteUint32 writes a uint32 value.
func (w *Writer) WriteUint32(val uint32) {
	if b := w.reserve(4); b != nil {
		b[0] = byte(val >> 24)
		b[1] = byte(val >> 16)
		b[2] = byte(val >> 8)
		b[3] = byte(val)
	}
}

// WriteTag writes a four-byte table tag.
func (w *Writer) WriteTag(tag string) {
	if len(tag) != 4 {
		if w.err == nil {
			w.err = &InvalidFontError{
				SubSystem: "parser",
				Reason:    "invalid tag " + tag,
			}
		}
		return
	}
	w.Write([]byte(tag))
}

// Align writes zero bytes until the writing position is a multiple of n.
func (w *Writer) Align(n int) {
	pad := (n - w.pos%n) % n
	if b := w.reserve(pad); b != nil {
		clear(b)
	}
}

// PutUint16At writes a uint16 value at the given absolute position.
// The writing position is not changed.
func (w *Writer) PutUint16At(pos int, val uint16) {
	if w.err != nil {
		return
	}
	if pos < 0 || pos > len(w.buf)-2 {
		w.err = ErrOutOfBounds
		return
	}
	w.buf[pos] = byte(val >> 8)
	w.buf[pos+1] = byte(val)
}

// PutUint32At writes a uint32 value at the given absolute position.
// The writing position is not changed.
func (w *Writer) PutUint32At(pos int, val uint32) {
	if w.err != nil {
		return
	}
	if pos < 0 || pos > len(w.buf)-4 {
		w.err = ErrOutOfBounds
		return
	}
	w.buf[pos] = byte(val >> 24)
	w.buf[pos+1] = byte(val >> 16)
	w.buf[pos+2] = byte(val >> 8)
	w.buf[pos+3] = byte(val)
}
