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
	"io"

	"github.com/BurntSushi/toml"
)

// Case describes a mesh and its initial state. It is usually read from a
// TOML file, for example:
//
//  NumCells = 2
//
//  [Cells]
//  Z = [0.02, 0.1]
//  Zvar = [0.0]
//  chi_st = [10.0]
//
//  [[Patch]]
//  Name = "fuel"
//  FaceCells = [1]
//  Types = {T = "fixedValue", H = "fixedValue", Z = "fixedValue"}
//  Values = {Z = [1.0], T = [300.0]}
//
// Cell and face value lists with a single entry apply to every cell or face.
// If H is not given, cells are initialized to the adiabatic enthalpy.
// Missing face values are copied from the adjacent cell, except H, which
// defaults to the adiabatic enthalpy of the face, and T, which defaults
// to 300 K.
type Case struct {
	NumCells int
	Cells    map[string][]float64
	Patch    []CasePatch
}

// CasePatch describes a boundary patch of a Case.
type CasePatch struct {
	Name      string
	FaceCells []int
	Types     map[string]string
	Values    map[string][]float64
}

// ReadCase reads a TOML-formatted case from r.
func ReadCase(r io.Reader) (*Case, error) {
	c := new(Case)
	if _, err := toml.DecodeReader(r, c); err != nil {
		return nil, fmt.Errorf("flamelet: reading case: %v", err)
	}
	return c, nil
}

// expand returns vals with length n. A single value is repeated.
func expand(name string, vals []float64, n int) ([]float64, error) {
	switch len(vals) {
	case n:
		return append([]float64(nil), vals...), nil
	case 1:
		o := make([]float64, n)
		for i := range o {
			o[i] = vals[0]
		}
		return o, nil
	default:
		return nil, fmt.Errorf("%s has %d values but needs 1 or %d", name, len(vals), n)
	}
}

// Build returns the mesh, initial state, and initial mixture of c, using
// cfg for the adiabatic enthalpy and species.
func (c *Case) Build(cfg *Config) (*UnstructuredMesh, *State, *FieldMixture, error) {
	m := &UnstructuredMesh{Cells: c.NumCells}
	for _, p := range c.Patch {
		m.Boundary = append(m.Boundary, &Patch{Name: p.Name, FaceCells: p.FaceCells, Types: p.Types})
	}
	if err := checkMesh(m); err != nil {
		return nil, nil, nil, fmt.Errorf("flamelet: building case: %v", err)
	}
	s := NewState(m, 0)
	mix := NewFieldMixture(m, cfg.Species, defaultTemperature)

	cellFields := map[string]*Field{VarZ: s.Z, VarZvar: s.Zvar, VarChiSt: s.ChiSt, VarH: s.H}
	for name, vals := range c.Cells {
		f, ok := cellFields[name]
		if !ok {
			return nil, nil, nil, fmt.Errorf("flamelet: building case: invalid cell variable '%s'", name)
		}
		v, err := expand("cell variable "+name, vals, c.NumCells)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("flamelet: building case: %v", err)
		}
		copy(f.Internal, v)
	}
	if _, ok := c.Cells[VarH]; !ok {
		for i, z := range s.Z.Internal {
			s.H.Internal[i] = cfg.Had(z)
		}
	}

	faceFields := map[string]*Field{VarZ: s.Z, VarZvar: s.Zvar, VarChiSt: s.ChiSt, VarH: s.H,
		VarT: mix.Property(VarT)}
	for pi, p := range c.Patch {
		for name, f := range faceFields {
			if name == VarT {
				continue
			}
			for j, cell := range p.FaceCells {
				f.Boundary[pi][j] = f.Internal[cell]
			}
		}
		for name, vals := range p.Values {
			f, ok := faceFields[name]
			if !ok {
				return nil, nil, nil, fmt.Errorf("flamelet: building case: patch %s: invalid face variable '%s'", p.Name, name)
			}
			v, err := expand(fmt.Sprintf("patch %s variable %s", p.Name, name), vals, len(p.FaceCells))
			if err != nil {
				return nil, nil, nil, fmt.Errorf("flamelet: building case: %v", err)
			}
			copy(f.Boundary[pi], v)
		}
		if _, ok := p.Values[VarH]; !ok {
			for j := range p.FaceCells {
				s.H.Boundary[pi][j] = cfg.Had(s.Z.Boundary[pi][j])
			}
		}
	}
	return m, s, mix, nil
}
