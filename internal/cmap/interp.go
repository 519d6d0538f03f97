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

// Package cmap builds diverging color map lookup tables by interpolating
// in Msh space per Moreland, "Diverging Color Maps for Scientific
// Visualization (Expanded)".
package cmap

import (
	"math"

	"github.com/mlnoga/divmap/internal/colorspace"
)

// Moreland reference constants: colors with saturation angle below satThreshold
// count as unsaturated; saturated endpoint hues further apart than hueThreshold
// force an unsaturated middle control point of magnitude at least unsatMagnitude.
const (
	satThreshold   = 0.05
	hueThreshold   = math.Pi / 3
	unsatMagnitude = 88.0
)

// Wraps an angle difference to the shorter path in (-pi, pi]
func hueDiff(h2, h1 float64) float64 {
	d:=math.Mod(h2-h1, 2*math.Pi)
	if d>math.Pi { d-=2*math.Pi }
	if d<=-math.Pi { d+=2*math.Pi }
	return d
}

// Returns the hue for an unsaturated endpoint of magnitude mUnsat, spun away
// from the hue of the saturated endpoint (mSat, sSat, hSat) so the path
// toward it stays perceptually straight. Keeps the saturated hue unchanged
// when that endpoint is already the larger of the two.
func adjustHue(mSat, sSat, hSat, mUnsat float64) float64 {
	if mSat>=mUnsat { return hSat }
	spin:=sSat*math.Sqrt(mUnsat*mUnsat-mSat*mSat) / (mSat*math.Sin(sSat))
	if hSat>-math.Pi/3 { return hSat+spin }
	return hSat-spin
}

// InterpolateMsh returns the color at fraction t in [0,1] between msh1 and
// msh2. Deterministic and stateless. When both endpoints are saturated with
// strongly differing hues, an unsaturated middle control point is inserted
// and t folded into the matching half; when exactly one endpoint is
// unsaturated, its undefined hue inherits the other endpoint's adjusted hue,
// so achromatic endpoints never propagate NaN.
func InterpolateMsh(msh1, msh2 colorspace.Msh, t float64) colorspace.Msh {
	m1, s1, h1:=msh1[0], msh1[1], msh1[2]
	m2, s2, h2:=msh2[0], msh2[1], msh2[2]

	if s1>satThreshold && s2>satThreshold && math.Abs(hueDiff(h2, h1))>hueThreshold {
		mMid:=math.Max(math.Max(m1, m2), unsatMagnitude)
		if t<0.5 {
			m2, s2, h2 = mMid, 0, 0
			t = 2*t
		} else {
			m1, s1, h1 = mMid, 0, 0
			t = 2*t-1
		}
	}

	if s1<=satThreshold && s2>satThreshold {
		h1=adjustHue(m2, s2, h2, m1)
	} else if s2<=satThreshold && s1>satThreshold {
		h2=adjustHue(m1, s1, h1, m2)
	}

	return colorspace.Msh{
		(1-t)*m1 + t*m2,
		(1-t)*s1 + t*s2,
		h1 + t*hueDiff(h2, h1),
	}
}
