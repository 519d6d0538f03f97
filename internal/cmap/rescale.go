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
	"fmt"
	"math"
)

// Recognized rescaling modes. All modes are symmetric around the midpoint
// fraction 0.5 and keep 0, 0.5 and 1 fixed, so the map stays a proper
// diverging scale. Square, cubic and sqrt are fixed-exponent shorthands
// for the power mode.
const (
	RescaleLinear = "linear"
	RescaleSquare = "square"
	RescaleCubic  = "cubic"
	RescaleSqrt   = "sqrt"
	RescalePower  = "power"
)

// Maps uniform sample fractions to skewed interpolation fractions,
// compressing or expanding sample density near the endpoints vs the midpoint
type RescaleConfig struct {
	Mode  string  `json:"mode"`
	Power float64 `json:"power"` // exponent, used only in power mode
}

func NewRescaleConfigDefault() RescaleConfig { return NewRescaleConfig(RescaleLinear, 1.0) }

func NewRescaleConfig(mode string, power float64) RescaleConfig {
	return RescaleConfig{Mode: mode, Power: power}
}

func (c *RescaleConfig) exponent() (float64, error) {
	switch c.Mode {
	case RescaleLinear:
		return 1, nil
	case RescaleSquare:
		return 2, nil
	case RescaleCubic:
		return 3, nil
	case RescaleSqrt:
		return 0.5, nil
	case RescalePower:
		if c.Power<=0 || math.IsNaN(c.Power) || math.IsInf(c.Power, 0) {
			return 0, fmt.Errorf("%w: rescale power %g must be positive", ErrInvalidConfig, c.Power)
		}
		return c.Power, nil
	}
	return 0, fmt.Errorf("%w: unknown rescale mode '%s'", ErrInvalidConfig, c.Mode)
}

// Validates the configuration without applying it
func (c *RescaleConfig) Valid() error {
	_, err:=c.exponent()
	return err
}

// Maps fraction in [0,1] to the rescaled fraction. The fraction's signed
// distance from 0.5 is raised to the mode's exponent and renormalized.
// Must be called on a validated config; invalid modes fall back to linear.
func (c *RescaleConfig) Apply(fraction float64) float64 {
	p, err:=c.exponent()
	if err!=nil || p==1 { return fraction }
	sign:=1.0
	if fraction<0.5 { sign=-1.0 }
	return math.Pow(math.Abs(fraction-0.5)/0.5, p)*sign*0.5 + 0.5
}
