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

// Package gridtable contains a flamelet table that is tabulated on a
// regular grid of mean mixture fraction, mixture fraction variance,
// stoichiometric scalar dissipation rate, and enthalpy defect, and
// interpolated multilinearly between grid nodes.
package gridtable

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/flamelet"
	"gonum.org/v1/gonum/floats"
)

// Axes hold the node coordinates of a table along each dimension.
// Coordinates must be strictly increasing. An axis with a single node
// means the table does not vary along that dimension.
type Axes struct {
	Z      []float64
	Zvar   []float64
	ChiSt  []float64
	Defect []float64
}

func (a Axes) list() [4][]float64 {
	return [4][]float64{a.Z, a.Zvar, a.ChiSt, a.Defect}
}

// axisNames are the names of the axes, in storage order.
var axisNames = [4]string{flamelet.VarZ, flamelet.VarZvar, flamelet.VarChiSt, flamelet.VarDefect}

// propertyNames are the names of the tabulated bulk properties,
// in the order of the Table.props array.
var propertyNames = [5]string{flamelet.VarT, flamelet.VarDensity, flamelet.VarViscosity,
	flamelet.VarDiffusivity, flamelet.VarAbsorption}

// Table is a flamelet table on a regular grid. It fulfils the
// github.com/spatialmodel/flamelet.Table interface.
type Table struct {
	axes    Axes
	n       [4]int
	species []string

	props [5][]float64
	y     [][]float64
}

// New returns an empty table with the given axes and species.
// Use Fill to set the values at the nodes.
func New(axes Axes, species []string) (*Table, error) {
	t := &Table{axes: axes, species: append([]string(nil), species...)}
	for i, a := range axes.list() {
		if len(a) == 0 {
			return nil, fmt.Errorf("gridtable: axis %s has no nodes", axisNames[i])
		}
		if floats.HasNaN(a) {
			return nil, fmt.Errorf("gridtable: axis %s has NaN nodes", axisNames[i])
		}
		for j := 1; j < len(a); j++ {
			if a[j] <= a[j-1] {
				return nil, fmt.Errorf("gridtable: axis %s is not strictly increasing", axisNames[i])
			}
		}
		t.n[i] = len(a)
	}
	if len(species) == 0 {
		return nil, fmt.Errorf("gridtable: no species")
	}
	size := t.size()
	for i := range t.props {
		t.props[i] = make([]float64, size)
	}
	t.y = make([][]float64, len(species))
	for i := range t.y {
		t.y[i] = make([]float64, size)
	}
	return t, nil
}

// size returns the number of nodes in the table.
func (t *Table) size() int {
	return t.n[0] * t.n[1] * t.n[2] * t.n[3]
}

// index returns the storage index of the node with the given axis indices.
func (t *Table) index(i [4]int) int {
	return ((i[0]*t.n[1]+i[1])*t.n[2]+i[2])*t.n[3] + i[3]
}

// Fill sets the properties at every node of the table to the values
// returned by f.
func (t *Table) Fill(f func(p flamelet.Point) *flamelet.Properties) error {
	a := t.axes
	var i [4]int
	for i[0] = 0; i[0] < t.n[0]; i[0]++ {
		for i[1] = 0; i[1] < t.n[1]; i[1]++ {
			for i[2] = 0; i[2] < t.n[2]; i[2]++ {
				for i[3] = 0; i[3] < t.n[3]; i[3]++ {
					p := flamelet.Point{Z: a.Z[i[0]], Zvar: a.Zvar[i[1]], ChiSt: a.ChiSt[i[2]], Defect: a.Defect[i[3]]}
					r := f(p)
					if len(r.MassFractions) != len(t.species) {
						return fmt.Errorf("gridtable: node %v has %d species but the table has %d",
							p, len(r.MassFractions), len(t.species))
					}
					k := t.index(i)
					for j, v := range [5]float64{r.T, r.Density, r.Viscosity, r.Diffusivity, r.Absorption} {
						t.props[j][k] = v
					}
					for j, y := range r.MassFractions {
						t.y[j][k] = y
					}
				}
			}
		}
	}
	return nil
}

// Axes returns the node coordinates of t.
func (t *Table) Axes() Axes { return t.axes }

// Species fulfils the flamelet.Table interface.
func (t *Table) Species() []string { return t.species }

// String returns a description of the table.
func (t *Table) String() string {
	b := new(strings.Builder)
	for i, a := range t.axes.list() {
		fmt.Fprintf(b, "%s: %d nodes in [%g, %g]; ", axisNames[i], len(a), a[0], a[len(a)-1])
	}
	fmt.Fprintf(b, "species: %s", strings.Join(t.species, ","))
	return b.String()
}

// bracket returns the indices of the nodes of axis a that surround v and
// the interpolation weights of those nodes.
func bracket(a []float64, v float64) (idx [2]int, w [2]float64, n int, ok bool) {
	if len(a) == 1 {
		return [2]int{0, 0}, [2]float64{1, 0}, 1, true
	}
	if v < a[0] || v > a[len(a)-1] {
		return idx, w, 0, false
	}
	j := sort.SearchFloat64s(a, v)
	if j == 0 {
		return [2]int{0, 0}, [2]float64{1, 0}, 1, true
	}
	frac := (v - a[j-1]) / (a[j] - a[j-1])
	return [2]int{j - 1, j}, [2]float64{1 - frac, frac}, 2, true
}

// Lookup fulfils the flamelet.Table interface. Properties are interpolated
// multilinearly between the surrounding nodes. It returns a
// *flamelet.LookupFault if p is not physically valid or is outside
// the axes of the table.
func (t *Table) Lookup(p flamelet.Point) (*flamelet.Properties, error) {
	if err := flamelet.CheckPoint(p); err != nil {
		return nil, err
	}
	var (
		idx [4][2]int
		w   [4][2]float64
		n   [4]int
	)
	for i, v := range [4]float64{p.Z, p.Zvar, p.ChiSt, p.Defect} {
		var ok bool
		a := t.axes.list()[i]
		idx[i], w[i], n[i], ok = bracket(a, v)
		if !ok {
			return nil, &flamelet.LookupFault{
				Point:  p,
				Reason: fmt.Sprintf("%s=%g is outside the tabulated range [%g, %g]", axisNames[i], v, a[0], a[len(a)-1]),
			}
		}
	}

	var vals [5]float64
	y := make([]float64, len(t.species))
	for a := 0; a < n[0]; a++ {
		for b := 0; b < n[1]; b++ {
			for c := 0; c < n[2]; c++ {
				for d := 0; d < n[3]; d++ {
					weight := w[0][a] * w[1][b] * w[2][c] * w[3][d]
					if weight == 0 {
						continue
					}
					k := t.index([4]int{idx[0][a], idx[1][b], idx[2][c], idx[3][d]})
					for j := range vals {
						vals[j] += weight * t.props[j][k]
					}
					for j := range y {
						y[j] += weight * t.y[j][k]
					}
				}
			}
		}
	}
	return &flamelet.Properties{
		T:             vals[0],
		Density:       vals[1],
		Viscosity:     vals[2],
		Diffusivity:   vals[3],
		Absorption:    vals[4],
		MassFractions: y,
	}, nil
}
