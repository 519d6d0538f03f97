// Copyright (C) 2020 Markus L. Noga
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

package cmap

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mlnoga/divmap/internal/colorspace"
)

// Error kinds surfaced by table construction. All validation runs eagerly
// before any conversion work; construction is all-or-nothing.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Interpolation methods
const (
	MethodMoreland = "moreland" // Msh interpolation with adjusted hues
	MethodLab      = "lab"      // piecewise linear CIELAB interpolation
)

// One sample of a color table
type TableEntry struct {
	Position float64        `json:"position"` // in [0,1], monotonically increasing
	RGB      colorspace.RGB `json:"rgb"`      // 8-bit channels, clamped and rounded
}

// An ordered color map lookup table. Produced once, immutable, owned by the
// caller after return.
type ColorTable []TableEntry

// Specification for one diverging color map. Created once per call and not
// mutated by table generation.
type ColorMapSpec struct {
	RGBLow   colorspace.RGB `json:"rgbLow"`   // endpoint color at position 0
	RGBHigh  colorspace.RGB `json:"rgbHigh"`  // endpoint color at position 1
	RefPoint colorspace.RGB `json:"refPoint"` // shared near-neutral midpoint color
	NumBins  int            `json:"numBins"`  // number of table entries, >=2
	Rescale  RescaleConfig  `json:"rescale"`
	Method   string         `json:"method"`
}

func NewColorMapSpecDefault() *ColorMapSpec {
	return NewColorMapSpec(colorspace.RGB{59, 76, 192}, colorspace.RGB{180, 4, 38},
		colorspace.RGB{221, 221, 221}, 255, NewRescaleConfigDefault(), MethodMoreland)
}

func NewColorMapSpec(rgbLow, rgbHigh, refPoint colorspace.RGB, numBins int,
	rescale RescaleConfig, method string) *ColorMapSpec {
	return &ColorMapSpec{
		RGBLow:   rgbLow,
		RGBHigh:  rgbHigh,
		RefPoint: refPoint,
		NumBins:  numBins,
		Rescale:  rescale,
		Method:   method,
	}
}

// Unmarshal the type from JSON with default values for missing entries
func (s *ColorMapSpec) UnmarshalJSON(data []byte) error {
	type defaults ColorMapSpec
	def:=defaults(*NewColorMapSpecDefault())
	err:=json.Unmarshal(data, &def)
	if err!=nil { return err }
	*s=ColorMapSpec(def)
	return nil
}

// Validates the spec eagerly, before any conversion work
func (s *ColorMapSpec) Valid() error {
	if s.NumBins<2 { return fmt.Errorf("%w: numBins %d, need at least 2", ErrInvalidConfig, s.NumBins) }
	for _, c:=range []struct{ name string; rgb colorspace.RGB }{
		{"rgbLow", s.RGBLow}, {"rgbHigh", s.RGBHigh}, {"refPoint", s.RefPoint},
	} {
		if !c.rgb.Valid() { return fmt.Errorf("%w: %s %v outside [0,255]", ErrInvalidArgument, c.name, c.rgb) }
	}
	if err:=s.Rescale.Valid(); err!=nil { return err }
	if s.Method!=MethodMoreland && s.Method!=MethodLab {
		return fmt.Errorf("%w: unknown method '%s'", ErrInvalidConfig, s.Method)
	}
	return nil
}

// Generate builds the color table for the spec. The table walks from RGBLow
// through RefPoint to RGBHigh; each sample's rescaled fraction selects both
// its table position and the interpolation parameter within its half.
func (s *ColorMapSpec) Generate() (ColorTable, error) {
	if err:=s.Valid(); err!=nil { return nil, err }
	switch s.Method {
	case MethodLab:
		return s.generateLab(), nil
	}
	return s.generateMoreland(), nil
}

func (s *ColorMapSpec) generateMoreland() ColorTable {
	mshLow :=colorspace.RGBToMsh(s.RGBLow)
	mshMid :=colorspace.RGBToMsh(s.RefPoint)
	mshHigh:=colorspace.RGBToMsh(s.RGBHigh)

	table:=make(ColorTable, s.NumBins)
	for i:=range table {
		f:=s.Rescale.Apply(float64(i) / float64(s.NumBins-1))
		var msh colorspace.Msh
		if f<=0.5 {
			msh=InterpolateMsh(mshLow, mshMid, f/0.5)
		} else {
			msh=InterpolateMsh(mshMid, mshHigh, (f-0.5)/0.5)
		}
		table[i]=TableEntry{Position: f, RGB: colorspace.MshToRGB(msh)}
	}
	return table
}

// Piecewise linear walk in Lab through the reference point, the classic
// alternative to Msh interpolation
func (s *ColorMapSpec) generateLab() ColorTable {
	labLow :=colorspace.RGBToLab(s.RGBLow)
	labMid :=colorspace.RGBToLab(s.RefPoint)
	labHigh:=colorspace.RGBToLab(s.RGBHigh)

	table:=make(ColorTable, s.NumBins)
	for i:=range table {
		f:=s.Rescale.Apply(float64(i) / float64(s.NumBins-1))
		var lab colorspace.Lab
		if f<=0.5 {
			lab=lerpLab(labLow, labMid, f/0.5)
		} else {
			lab=lerpLab(labMid, labHigh, (f-0.5)/0.5)
		}
		table[i]=TableEntry{Position: f, RGB: colorspace.LabToRGB(lab)}
	}
	return table
}

func lerpLab(l1, l2 colorspace.Lab, t float64) colorspace.Lab {
	return colorspace.Lab{
		(1-t)*l1[0] + t*l2[0],
		(1-t)*l1[1] + t*l2[1],
		(1-t)*l1[2] + t*l2[2],
	}
}
