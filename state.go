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

import "fmt"

// State holds the mixture fraction statistics and enthalpy that upstream
// solvers write between calls to Correct.
type State struct {
	Z     *Field
	Zvar  *Field
	ChiSt *Field
	H     *Field
}

// NewState returns a State sized for m, initialized to pure oxidizer
// (Z = 0, Zvar = 0, chi_st = 0) at enthalpy h.
func NewState(m Mesh, h float64) *State {
	return &State{
		Z:     NewField(VarZ, m, 0),
		Zvar:  NewField(VarZvar, m, 0),
		ChiSt: NewField(VarChiSt, m, 0),
		H:     NewField(VarH, m, h),
	}
}

func (s *State) fields() []*Field {
	return []*Field{s.Z, s.Zvar, s.ChiSt, s.H}
}

func (s *State) fits(m Mesh) error {
	for _, f := range s.fields() {
		if f == nil {
			return fmt.Errorf("state is missing a field")
		}
		if err := f.fits(m); err != nil {
			return err
		}
	}
	return nil
}

// Mixture stores the properties computed by the closure engine.
type Mixture interface {
	// Property returns the field holding the named property,
	// which is one of T, rho, mu, alpha, or as.
	Property(name string) *Field

	// MassFraction returns the field holding the mass fraction
	// of species i.
	MassFraction(i int) *Field

	// NumSpecies returns the number of species fields.
	NumSpecies() int
}

// Properties computed by the engine.
var mixtureProperties = []string{VarT, VarDensity, VarViscosity, VarDiffusivity, VarAbsorption}

// FieldMixture is the default Mixture, holding one Field per property.
type FieldMixture struct {
	props   map[string]*Field
	species []*Field
}

// NewFieldMixture returns a mixture sized for m with one mass fraction field
// for each of the named species. Temperatures are initialized to
// tInit and all other values to zero.
func NewFieldMixture(m Mesh, species []string, tInit float64) *FieldMixture {
	mix := &FieldMixture{
		props:   make(map[string]*Field),
		species: make([]*Field, len(species)),
	}
	for _, name := range mixtureProperties {
		mix.props[name] = NewField(name, m, 0)
	}
	mix.props[VarT].Set(tInit)
	for i, s := range species {
		mix.species[i] = NewField(s, m, 0)
		mix.species[i].Units = "mass fraction"
	}
	return mix
}

// Property fulfils the Mixture interface. It panics if the
// property name is unknown.
func (mix *FieldMixture) Property(name string) *Field {
	f, ok := mix.props[name]
	if !ok {
		panic(fmt.Errorf("flamelet: unknown mixture property '%s'", name))
	}
	return f
}

// MassFraction fulfils the Mixture interface.
func (mix *FieldMixture) MassFraction(i int) *Field { return mix.species[i] }

// NumSpecies fulfils the Mixture interface.
func (mix *FieldMixture) NumSpecies() int { return len(mix.species) }
