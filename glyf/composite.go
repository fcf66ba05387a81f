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

package glyf

import (
	"fmt"
	"strings"

	"seehuhn.de/go/sfnt/glyph"

	"seehuhn.de/go/woff/parser"
)

// CompositeGlyph represents a glyph that is built from multiple component glyphs.
type CompositeGlyph struct {
	Components []GlyphComponent

	// Instructions is nil if the glyph has no instruction length field.
	Instructions []byte
}

// GlyphComponent represents a single component of a composite glyph.
// Data holds the raw arguments and transformation values which follow
// the glyph index in the font file.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#composite-glyph-description
type GlyphComponent struct {
	Flags      ComponentFlag
	GlyphIndex glyph.ID
	Data       []byte
}

// ComponentFlag controls how a component glyph is processed within a composite.
type ComponentFlag uint16

func (f ComponentFlag) String() string {
	var parts []string
	for _, n := range componentFlagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if unknown := f & 0xE010; unknown != 0 {
		parts = append(parts, fmt.Sprintf("0x%04x", uint16(unknown)))
	}
	return strings.Join(parts, "|")
}

var componentFlagNames = []struct {
	flag ComponentFlag
	name string
}{
	{FlagArg1And2AreWords, "ARG_1_AND_2_ARE_WORDS"},
	{FlagArgsAreXYValues, "ARGS_ARE_XY_VALUES"},
	{FlagRoundXYToGrid, "ROUND_XY_TO_GRID"},
	{FlagWeHaveAScale, "WE_HAVE_A_SCALE"},
	{FlagMoreComponents, "MORE_COMPONENTS"},
	{FlagWeHaveAnXAndYScale, "WE_HAVE_AN_X_AND_Y_SCALE"},
	{FlagWeHaveATwoByTwo, "WE_HAVE_A_TWO_BY_TWO"},
	{FlagWeHaveInstructions, "WE_HAVE_INSTRUCTIONS"},
	{FlagUseMyMetrics, "USE_MY_METRICS"},
	{FlagOverlapCompound, "OVERLAP_COMPOUND"},
	{FlagScaledComponentOffset, "SCALED_COMPONENT_OFFSET"},
	{FlagUnscaledComponentOffset, "UNSCALED_COMPONENT_OFFSET"},
}

// The recognized values for the ComponentFlag field.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#compositeGlyphFlags
const (
	FlagArg1And2AreWords        ComponentFlag = 0x0001 // Arguments are 16-bit signed values
	FlagArgsAreXYValues         ComponentFlag = 0x0002 // Arguments are x,y offsets rather than point numbers
	FlagRoundXYToGrid           ComponentFlag = 0x0004 // Round offset values to grid
	FlagWeHaveAScale            ComponentFlag = 0x0008 // Component has uniform scaling
	FlagMoreComponents          ComponentFlag = 0x0020 // More components follow this one
	FlagWeHaveAnXAndYScale      ComponentFlag = 0x0040 // Component has separate x and y scaling
	FlagWeHaveATwoByTwo         ComponentFlag = 0x0080 // Component has full 2x2 transformation matrix
	FlagWeHaveInstructions      ComponentFlag = 0x0100 // Composite glyph has instructions
	FlagUseMyMetrics            ComponentFlag = 0x0200 // Use this component's metrics for the composite
	FlagOverlapCompound         ComponentFlag = 0x0400 // Components overlap (used by some rasterizers)
	FlagScaledComponentOffset   ComponentFlag = 0x0800 // Apply scaling to offset values
	FlagUnscaledComponentOffset ComponentFlag = 0x1000 // Do not apply scaling to offset values
)

// ArgSize returns the number of bytes of arguments and transformation
// values which follow the glyph index of a component with the given flags.
func (f ComponentFlag) ArgSize() int {
	size := 2
	if f&FlagArg1And2AreWords != 0 {
		size = 4
	}
	switch {
	case f&FlagWeHaveAScale != 0:
		size += 2
	case f&FlagWeHaveAnXAndYScale != 0:
		size += 4
	case f&FlagWeHaveATwoByTwo != 0:
		size += 8
	}
	return size
}

// ReadComponents reads component records from r, up to and including the
// first record without FlagMoreComponents.  The returned components
// retain sub-slices of the data underlying r.
func ReadComponents(r *parser.Reader) ([]GlyphComponent, error) {
	var components []GlyphComponent
	for {
		flags, err := r.ReadUint16()
		if err != nil {
			return nil, errIncompleteGlyph
		}
		glyphIndex, err := r.ReadUint16()
		if err != nil {
			return nil, errIncompleteGlyph
		}
		f := ComponentFlag(flags)
		args, err := r.ReadBytes(f.ArgSize())
		if err != nil {
			return nil, errIncompleteGlyph
		}

		components = append(components, GlyphComponent{
			Flags:      f,
			GlyphIndex: glyph.ID(glyphIndex),
			Data:       args,
		})

		if f&FlagMoreComponents == 0 {
			return components, nil
		}
	}
}

// HasInstructions reports whether any component of the glyph sets
// FlagWeHaveInstructions.
func HasInstructions(components []GlyphComponent) bool {
	for _, c := range components {
		if c.Flags&FlagWeHaveInstructions != 0 {
			return true
		}
	}
	return false
}

// decodeGlyphComposite decodes a composite glyph, starting after the
// glyph header.
func decodeGlyphComposite(r *parser.Reader) (*CompositeGlyph, error) {
	components, err := ReadComponents(r)
	if err != nil {
		return nil, err
	}

	var instructions []byte
	if HasInstructions(components) && r.Remaining() >= 2 {
		L, _ := r.ReadUint16()
		instructions, _ = r.ReadBytes(min(int(L), r.Remaining()))
	}

	res := &CompositeGlyph{
		Components:   components,
		Instructions: instructions,
	}
	return res, nil
}

var errIncompleteGlyph = &parser.InvalidFontError{
	SubSystem: "glyf",
	Reason:    "incomplete glyph",
}
