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

package header

// Checksum computes the checksum of an sfnt table: the sum of all
// big-endian uint32 words, where a final partial word is padded with
// zeros.
func Checksum(data []byte) uint32 {
	var sum uint32
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		sum += uint32(data[i])<<24 | uint32(data[i+1])<<16 | uint32(data[i+2])<<8 | uint32(data[i+3])
	}
	if k := len(data) - n; k > 0 {
		var last [4]byte
		copy(last[:], data[n:])
		sum += uint32(last[0])<<24 | uint32(last[1])<<16 | uint32(last[2])<<8 | uint32(last[3])
	}
	return sum
}

// TableChecksum computes the checksum of an sfnt table.  For the "head"
// table, the checkSumAdjustment field is treated as zero.
func TableChecksum(tag string, data []byte) uint32 {
	sum := Checksum(data)
	if tag == "head" && len(data) >= checksumAdjustmentPos+4 {
		p := data[checksumAdjustmentPos:]
		sum -= uint32(p[0])<<24 | uint32(p[1])<<16 | uint32(p[2])<<8 | uint32(p[3])
	}
	return sum
}

// ClearChecksumAdjustment zeros the checkSumAdjustment field of a "head"
// table.
func ClearChecksumAdjustment(head []byte) {
	if len(head) >= checksumAdjustmentPos+4 {
		clear(head[checksumAdjustmentPos : checksumAdjustmentPos+4])
	}
}

// PatchChecksumAdjustment sets the checkSumAdjustment field of a "head"
// table.  The argument is the checksum of the entire font, computed
// with the checkSumAdjustment field set to zero.
func PatchChecksumAdjustment(head []byte, fontSum uint32) {
	if len(head) < checksumAdjustmentPos+4 {
		return
	}
	v := checksumMagic - fontSum
	p := head[checksumAdjustmentPos:]
	p[0] = byte(v >> 24)
	p[1] = byte(v >> 16)
	p[2] = byte(v >> 8)
	p[3] = byte(v)
}

const (
	checksumAdjustmentPos = 8
	checksumMagic         = 0xB1B0AFBA
)

// ChecksumMagic is the value the checksum of a complete sfnt file adds up
// to once the checkSumAdjustment field of the "head" table is set.
const ChecksumMagic uint32 = checksumMagic
