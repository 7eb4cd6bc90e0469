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
)

// varianceSlack is the tolerance allowed above the bounded-variance
// limit Z(1-Z) before a point is rejected.
const varianceSlack = 1.e-12

// Point is a location in flamelet table space.
type Point struct {
	Z      float64 // mean mixture fraction
	Zvar   float64 // mixture fraction variance
	ChiSt  float64 // stoichiometric scalar dissipation rate [1/s]
	Defect float64 // enthalpy defect [J/kg]; zero in adiabatic mode
}

// Properties hold the PDF-integrated mixture properties at a Point.
type Properties struct {
	T           float64 // temperature [K]
	Density     float64 // Reynolds-averaged density [kg/m³]
	Viscosity   float64 // Favre-averaged dynamic viscosity [kg/m/s]
	Diffusivity float64 // Favre-averaged thermal diffusivity [kg/m/s]
	Absorption  float64 // Planck absorption coefficient [1/m]

	// MassFractions holds one mass fraction per species,
	// in the order returned by Table.Species.
	MassFractions []float64
}

// Table is a flamelet table gateway. Implementations must be safe for
// concurrent use and hold no state between calls. Properties returned by
// Lookup may be shared with other callers and must not be modified.
type Table interface {
	// Species returns the names of the species the table provides,
	// in the order of Properties.MassFractions.
	Species() []string

	// Lookup returns the properties at p. It returns a *LookupFault
	// if p is outside the domain the table covers.
	Lookup(p Point) (*Properties, error)
}

// MaxVariance returns the largest mixture fraction variance
// that is possible at mean mixture fraction z.
func MaxVariance(z float64) float64 { return z * (1 - z) }

// CheckPoint returns a *LookupFault if p is outside the physically
// admissible domain: 0 ≤ Z ≤ 1, 0 ≤ Zvar ≤ Z(1-Z), and chi_st ≥ 0.
// Table implementations call it before interpolating.
func CheckPoint(p Point) error {
	switch {
	case math.IsNaN(p.Z) || math.IsNaN(p.Zvar) || math.IsNaN(p.ChiSt) || math.IsNaN(p.Defect):
		return &LookupFault{Point: p, Reason: "NaN input"}
	case p.Z < 0 || p.Z > 1:
		return &LookupFault{Point: p, Reason: "mixture fraction outside [0, 1]"}
	case p.Zvar < 0:
		return &LookupFault{Point: p, Reason: "negative mixture fraction variance"}
	case p.Zvar > MaxVariance(p.Z)+varianceSlack:
		return &LookupFault{Point: p, Reason: fmt.Sprintf("mixture fraction variance exceeds Z(1-Z)=%g", MaxVariance(p.Z))}
	case p.ChiSt < 0:
		return &LookupFault{Point: p, Reason: "negative scalar dissipation rate"}
	case math.IsInf(p.ChiSt, 0) || math.IsInf(p.Defect, 0):
		return &LookupFault{Point: p, Reason: "infinite input"}
	}
	return nil
}
