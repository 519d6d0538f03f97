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

// Package colorspace converts colors between sRGB, CIE XYZ, CIE Lab and
// Moreland's polar Msh representation of Lab. All functions are pure and
// operate on float64 triples; 8-bit sRGB channels live in [0,255], XYZ and
// Lab use the conventional Y=100 scaling.
package colorspace

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// A color triple, tagged with its colorspace by the Go type
type RGB [3]float64 // sRGB, channels in [0,255]
type XYZ [3]float64 // CIE XYZ, Y scaled to 100
type Lab [3]float64 // CIE L*a*b*
type Msh [3]float64 // magnitude, saturation angle, hue angle (radians)

// D65 standard illuminant, the reference white for all composite conversions
var D65 = XYZ{95.047, 100.0, 108.883}

// Transfer matrix for linear sRGB to XYZ under D65, and its inverse.
// Both are initialized once at startup and never mutated.
var rgbToXYZM = mat.NewDense(3, 3, []float64{
	0.4124564, 0.3575761, 0.1804375,
	0.2126729, 0.7151522, 0.0721750,
	0.0193339, 0.1191920, 0.9503041,
})
var xyzToRGBM = mat.NewDense(3, 3, nil)

func init() {
	if err:=xyzToRGBM.Inverse(rgbToXYZM); err!=nil { panic(fmt.Sprintf("error inverting sRGB to XYZ transfer matrix: %s", err.Error())) }
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Reports whether all three channels are finite and within [0,255]
func (rgb RGB) Valid() bool {
	for _, c := range rgb {
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 || c > 255 {
			return false
		}
	}
	return true
}

// Decompresses 8-bit sRGB channels into physically linear values scaled to
// [0,100]. Out-of-range inputs are clamped, not rejected.
func LinearizeRGB(rgb RGB) [3]float64 {
	var lin [3]float64
	for i, c := range rgb {
		v := clamp(c, 0, 255) / 255.0
		if v > 0.04045 {
			v = math.Pow((v+0.055)/1.055, 2.4)
		} else {
			v = v / 12.92
		}
		lin[i] = v * 100.0
	}
	return lin
}

// Recompresses linear [0,100] channels into 8-bit sRGB, clamping to gamut
// and rounding for presentation
func CompressRGB(lin [3]float64) RGB {
	var rgb RGB
	for i, c := range lin {
		v := c / 100.0
		if v > 0.0031308 {
			v = 1.055*math.Pow(v, 1.0/2.4) - 0.055
		} else {
			v = v * 12.92
		}
		rgb[i] = math.Round(clamp(v*255.0, 0, 255))
	}
	return rgb
}

func mulMatrix(m *mat.Dense, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

func RGBToXYZ(rgb RGB) XYZ {
	return XYZ(mulMatrix(rgbToXYZM, LinearizeRGB(rgb)))
}

func XYZToRGB(xyz XYZ) RGB {
	return CompressRGB(mulMatrix(xyzToRGBM, [3]float64(xyz)))
}

// CIE Lab piecewise function and its inverse, with the conventional
// 6/29 threshold constants
const (
	labLimit = 0.008856 // (6/29)^3
	labSlope = 7.787    // (29/6)^2 / 3
	labBias  = 16.0 / 116.0
)

func labF(v float64) float64 {
	if v > labLimit {
		return math.Cbrt(v)
	}
	return labSlope*v + labBias
}

func labFInv(v float64) float64 {
	if v > labSlope*labLimit+labBias {
		return v * v * v
	}
	return (v - labBias) / labSlope
}

func XYZToLab(xyz XYZ, wp XYZ) Lab {
	fx, fy, fz := labF(xyz[0]/wp[0]), labF(xyz[1]/wp[1]), labF(xyz[2]/wp[2])
	return Lab{
		116.0 * (fy - labBias),
		500.0 * (fx - fy),
		200.0 * (fy - fz),
	}
}

func LabToXYZ(lab Lab, wp XYZ) XYZ {
	fy := (lab[0] + 16.0) / 116.0
	return XYZ{
		wp[0] * labFInv(fy+lab[1]/500.0),
		wp[1] * labFInv(fy),
		wp[2] * labFInv(fy-lab[2]/200.0),
	}
}

// Converts Lab to Moreland's polar form. Near-achromatic colors with M~=0
// conventionally get zero saturation and hue; L/M is clamped to [-1,1] to
// guard acos against floating point overshoot at the poles.
func LabToMsh(lab Lab) Msh {
	l, a, b := lab[0], lab[1], lab[2]
	m := math.Sqrt(l*l + a*a + b*b)
	if m < 1e-10 {
		return Msh{0, 0, 0}
	}
	return Msh{m, math.Acos(clamp(l/m, -1, 1)), math.Atan2(b, a)}
}

func MshToLab(msh Msh) Lab {
	m, s, h := msh[0], msh[1], msh[2]
	chroma := m * math.Sin(s)
	return Lab{m * math.Cos(s), chroma * math.Cos(h), chroma * math.Sin(h)}
}

func RGBToLab(rgb RGB) Lab { return XYZToLab(RGBToXYZ(rgb), D65) }

func LabToRGB(lab Lab) RGB { return XYZToRGB(LabToXYZ(lab, D65)) }

func RGBToMsh(rgb RGB) Msh { return LabToMsh(RGBToLab(rgb)) }

func MshToRGB(msh Msh) RGB { return LabToRGB(MshToLab(msh)) }
