/*
Copyright © 2019 the flamelet authors.
This file is part of flamelet.

flamelet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

flamelet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with flamelet.  If not, see <http://www.gnu.org/licenses/>.
*/

package flamelet

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// speciesSumTolerance is the largest allowed difference between the sum of
// the species mass fractions and one.
const speciesSumTolerance = 1.e-6

// checkBulk returns a description of the first non-physical
// bulk property in p, or an empty string if there are none.
func checkBulk(p *Properties) string {
	vals := []struct {
		name     string
		v        float64
		positive bool
	}{
		{VarT, p.T, true},
		{VarDensity, p.Density, true},
		{VarViscosity, p.Viscosity, true},
		{VarDiffusivity, p.Diffusivity, true},
		{VarAbsorption, p.Absorption, false},
	}
	for _, v := range vals {
		if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
			return fmt.Sprintf("%s is not finite (%g)", v.name, v.v)
		}
		if v.positive && v.v <= 0 {
			return fmt.Sprintf("%s must be positive but is %g", v.name, v.v)
		}
		if v.v < 0 {
			return fmt.Sprintf("%s must not be negative but is %g", v.name, v.v)
		}
	}
	return ""
}

// checkSpecies returns a description of the first problem with the
// mass fractions in p, or an empty string if there are none.
func checkSpecies(p *Properties, nSpecies int) string {
	if len(p.MassFractions) != nSpecies {
		return fmt.Sprintf("table returned %d species but %d are configured", len(p.MassFractions), nSpecies)
	}
	if floats.HasNaN(p.MassFractions) {
		return "species mass fraction is NaN"
	}
	for i, y := range p.MassFractions {
		if y < 0 || y > 1 {
			return fmt.Sprintf("mass fraction of species %d is outside [0, 1] (%g)", i, y)
		}
	}
	if sum := floats.Sum(p.MassFractions); math.Abs(sum-1) > speciesSumTolerance {
		return fmt.Sprintf("species mass fractions sum to %.9g", sum)
	}
	return ""
}
