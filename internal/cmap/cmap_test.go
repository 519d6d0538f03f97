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
	"io"
	"math"
	"testing"

	"github.com/mlnoga/divmap/internal/colorspace"
)

var (
	coolBlue   = colorspace.RGB{59, 76, 192}
	warmRed    = colorspace.RGB{180, 4, 38}
	neutralRef = colorspace.RGB{221, 221, 221}
)

func specWithBins(numBins int) *ColorMapSpec {
	return NewColorMapSpec(coolBlue, warmRed, neutralRef, numBins, NewRescaleConfigDefault(), MethodMoreland)
}

func maxChannelDiff(a, b colorspace.RGB) float64 {
	d:=0.0
	for c:=0; c<3; c++ {
		if v:=math.Abs(a[c] - b[c]); v>d { d=v }
	}
	return d
}

func TestEndpointAndMidpointFidelity(t *testing.T) {
	table, err:=specWithBins(101).Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }
	if len(table)!=101 { t.Fatalf("table length %d, want 101", len(table)) }

	if d:=maxChannelDiff(table[0].RGB, coolBlue); d>1 {
		t.Errorf("low endpoint %v differs from %v by %g", table[0].RGB, coolBlue, d)
	}
	if d:=maxChannelDiff(table[100].RGB, warmRed); d>1 {
		t.Errorf("high endpoint %v differs from %v by %g", table[100].RGB, warmRed, d)
	}
	if d:=maxChannelDiff(table[50].RGB, neutralRef); d>1 {
		t.Errorf("midpoint %v differs from %v by %g", table[50].RGB, neutralRef, d)
	}
	if table[0].Position!=0 || table[100].Position!=1 || table[50].Position!=0.5 {
		t.Errorf("positions %g %g %g, want 0 0.5 1", table[0].Position, table[50].Position, table[100].Position)
	}
}

func TestMonotonicPositions(t *testing.T) {
	for _, rescale:=range []RescaleConfig{
		NewRescaleConfigDefault(),
		NewRescaleConfig(RescalePower, 2.5),
		NewRescaleConfig(RescaleSqrt, 1),
	} {
		spec:=specWithBins(64)
		spec.Rescale=rescale
		table, err:=spec.Generate()
		if err!=nil { t.Fatalf("generate: %s", err.Error()) }
		for i:=1; i<len(table); i++ {
			if table[i].Position<table[i-1].Position {
				t.Errorf("%v: positions not monotonic at %d: %g < %g", rescale, i, table[i].Position, table[i-1].Position)
			}
		}
		if table[0].Position!=0 || table[len(table)-1].Position!=1 {
			t.Errorf("%v: boundary positions %g %g, want 0 1", rescale, table[0].Position, table[len(table)-1].Position)
		}
	}
}

func TestSmoothness(t *testing.T) {
	table, err:=specWithBins(101).Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }
	for i:=1; i<len(table); i++ {
		if d:=maxChannelDiff(table[i].RGB, table[i-1].RGB); d>20 {
			t.Errorf("channel jump of %g between bins %d and %d", d, i-1, i)
		}
	}
}

func TestSymmetry(t *testing.T) {
	fwd, err:=specWithBins(33).Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }
	rev, err:=NewColorMapSpec(warmRed, coolBlue, neutralRef, 33, NewRescaleConfigDefault(), MethodMoreland).Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }

	n:=len(fwd)
	for i:=0; i<n; i++ {
		j:=n-1-i
		if math.Abs(fwd[i].Position-(1-rev[j].Position))>1e-9 {
			t.Errorf("position %d: %g vs mirrored %g", i, fwd[i].Position, 1-rev[j].Position)
		}
		if d:=maxChannelDiff(fwd[i].RGB, rev[j].RGB); d>1 {
			t.Errorf("bin %d: %v vs reversed %v differ by %g", i, fwd[i].RGB, rev[j].RGB, d)
		}
	}
}

func TestAchromaticEndpointSafety(t *testing.T) {
	spec:=NewColorMapSpec(colorspace.RGB{128, 128, 128}, coolBlue, neutralRef, 65, NewRescaleConfigDefault(), MethodMoreland)
	table, err:=spec.Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }
	for i, e:=range table {
		for c:=0; c<3; c++ {
			if math.IsNaN(e.RGB[c]) || e.RGB[c]<0 || e.RGB[c]>255 {
				t.Errorf("bin %d channel %d: invalid value %g", i, c, e.RGB[c])
			}
		}
	}
}

func TestInterpolateMshEndpoints(t *testing.T) {
	msh1:=colorspace.RGBToMsh(coolBlue)
	msh2:=colorspace.RGBToMsh(neutralRef)
	if got:=InterpolateMsh(msh1, msh2, 0); got[0]!=msh1[0] || got[1]!=msh1[1] {
		t.Errorf("t=0: got %v want magnitude/saturation of %v", got, msh1)
	}
	if got:=InterpolateMsh(msh1, msh2, 1); got[0]!=msh2[0] || got[1]!=msh2[1] {
		t.Errorf("t=1: got %v want magnitude/saturation of %v", got, msh2)
	}
}

func TestHueTakesShorterPath(t *testing.T) {
	// hues straddling +-pi must not sweep through zero
	msh1:=colorspace.Msh{80, 0.5, 3.0}
	msh2:=colorspace.Msh{80, 0.5, -3.0}
	mid:=InterpolateMsh(msh1, msh2, 0.5)
	if math.Abs(mid[2])<2.9 {
		t.Errorf("midpoint hue %g took the long way around", mid[2])
	}
}

func TestInvalidSpecs(t *testing.T) {
	for _, tc:=range []struct {
		name string
		mod  func(s *ColorMapSpec)
		want error
	}{
		{"one bin", func(s *ColorMapSpec) { s.NumBins=1 }, ErrInvalidConfig},
		{"zero bins", func(s *ColorMapSpec) { s.NumBins=0 }, ErrInvalidConfig},
		{"power zero", func(s *ColorMapSpec) { s.Rescale=NewRescaleConfig(RescalePower, 0) }, ErrInvalidConfig},
		{"bogus rescale", func(s *ColorMapSpec) { s.Rescale=NewRescaleConfig("bogus", 1) }, ErrInvalidConfig},
		{"bogus method", func(s *ColorMapSpec) { s.Method="bogus" }, ErrInvalidConfig},
		{"channel above range", func(s *ColorMapSpec) { s.RGBLow=colorspace.RGB{300, 0, 0} }, ErrInvalidArgument},
		{"negative channel", func(s *ColorMapSpec) { s.RGBHigh=colorspace.RGB{0, -1, 0} }, ErrInvalidArgument},
		{"NaN channel", func(s *ColorMapSpec) { s.RefPoint=colorspace.RGB{0, 0, math.NaN()} }, ErrInvalidArgument},
	} {
		spec:=NewColorMapSpecDefault()
		tc.mod(spec)
		table, err:=spec.Generate()
		if err==nil {
			t.Errorf("%s: expected error, got table of length %d", tc.name, len(table))
		} else if !errors.Is(err, tc.want) {
			t.Errorf("%s: error %v does not wrap %v", tc.name, err, tc.want)
		}
		if table!=nil {
			t.Errorf("%s: expected nil table on error", tc.name)
		}
	}
}

func TestSpecJSONDefaults(t *testing.T) {
	var spec ColorMapSpec
	if err:=json.Unmarshal([]byte(`{"numBins":11}`), &spec); err!=nil {
		t.Fatalf("unmarshal: %s", err.Error())
	}
	if spec.NumBins!=11 {
		t.Errorf("numBins %d, want 11", spec.NumBins)
	}
	if spec.RGBLow!=coolBlue || spec.RGBHigh!=warmRed || spec.RefPoint!=neutralRef {
		t.Errorf("color defaults not applied: %+v", spec)
	}
	if spec.Rescale.Mode!=RescaleLinear || spec.Method!=MethodMoreland {
		t.Errorf("mode defaults not applied: %+v", spec)
	}
}

func TestLabMethod(t *testing.T) {
	spec:=specWithBins(101)
	spec.Method=MethodLab
	table, err:=spec.Generate()
	if err!=nil { t.Fatalf("generate: %s", err.Error()) }
	if len(table)!=101 { t.Fatalf("table length %d, want 101", len(table)) }
	if d:=maxChannelDiff(table[0].RGB, coolBlue); d>1 {
		t.Errorf("low endpoint %v differs from %v by %g", table[0].RGB, coolBlue, d)
	}
	if d:=maxChannelDiff(table[100].RGB, warmRed); d>1 {
		t.Errorf("high endpoint %v differs from %v by %g", table[100].RGB, warmRed, d)
	}
	if d:=maxChannelDiff(table[50].RGB, neutralRef); d>1 {
		t.Errorf("midpoint %v differs from %v by %g", table[50].RGB, neutralRef, d)
	}
}

func TestGenerateAll(t *testing.T) {
	specs:=[]*ColorMapSpec{
		specWithBins(33),
		specWithBins(101),
		NewColorMapSpec(warmRed, coolBlue, neutralRef, 65, NewRescaleConfig(RescalePower, 2), MethodMoreland),
	}
	c:=NewContext(io.Discard)
	tables, err:=GenerateAll(specs, c)
	if err!=nil { t.Fatalf("generate all: %s", err.Error()) }
	if len(tables)!=len(specs) { t.Fatalf("got %d tables, want %d", len(tables), len(specs)) }

	for i, spec:=range specs {
		want, err:=spec.Generate()
		if err!=nil { t.Fatalf("generate: %s", err.Error()) }
		if len(tables[i])!=len(want) {
			t.Errorf("table %d: length %d, want %d", i, len(tables[i]), len(want))
			continue
		}
		for j:=range want {
			if tables[i][j]!=want[j] {
				t.Errorf("table %d bin %d: parallel %v differs from sequential %v", i, j, tables[i][j], want[j])
				break
			}
		}
	}
}

func TestGenerateAllPropagatesErrors(t *testing.T) {
	bad:=specWithBins(1)
	_, err:=GenerateAll([]*ColorMapSpec{specWithBins(33), bad}, NewContext(io.Discard))
	if err==nil {
		t.Error("expected error from invalid spec in batch")
	}
}
