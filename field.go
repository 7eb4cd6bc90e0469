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

// Names of the variables handled by the closure engine.
const (
	VarZ           = "Z"      // mean mixture fraction
	VarZvar        = "Zvar"   // mixture fraction variance
	VarChiSt       = "chi_st" // stoichiometric scalar dissipation rate
	VarH           = "H"      // mixture enthalpy
	VarDefect      = "defect" // enthalpy defect
	VarT           = "T"      // temperature
	VarDensity     = "rho"    // Reynolds-averaged density
	VarViscosity   = "mu"     // Favre-averaged dynamic viscosity
	VarDiffusivity = "alpha"  // Favre-averaged thermal diffusivity
	VarAbsorption  = "as"     // Planck absorption coefficient
)

// units holds the units of the named variables.
var units = map[string]string{
	VarZ:           "-",
	VarZvar:        "-",
	VarChiSt:       "1/s",
	VarH:           "J/kg",
	VarDefect:      "J/kg",
	VarT:           "K",
	VarDensity:     "kg/m³",
	VarViscosity:   "kg/m/s",
	VarDiffusivity: "kg/m/s",
	VarAbsorption:  "1/m",
}

// Field holds the values of a scalar variable in every cell of
// a mesh and on every face of each boundary patch.
type Field struct {
	Name  string
	Units string

	Internal []float64   // one value per cell
	Boundary [][]float64 // [patch][face]
}

// NewField returns a field named name that is sized for m, with every
// value set to val.
func NewField(name string, m Mesh, val float64) *Field {
	f := &Field{
		Name:     name,
		Units:    units[name],
		Internal: make([]float64, m.NumCells()),
	}
	patches := m.Patches()
	f.Boundary = make([][]float64, len(patches))
	for i, p := range patches {
		f.Boundary[i] = make([]float64, len(p.FaceCells))
	}
	f.Set(val)
	return f
}

// Set sets every internal and boundary value of f to val.
func (f *Field) Set(val float64) {
	for i := range f.Internal {
		f.Internal[i] = val
	}
	for _, b := range f.Boundary {
		for i := range b {
			b[i] = val
		}
	}
}

// Copy returns a deep copy of f.
func (f *Field) Copy() *Field {
	o := &Field{
		Name:     f.Name,
		Units:    f.Units,
		Internal: append([]float64(nil), f.Internal...),
		Boundary: make([][]float64, len(f.Boundary)),
	}
	for i, b := range f.Boundary {
		o.Boundary[i] = append([]float64(nil), b...)
	}
	return o
}

// fits returns an error if f is not sized for m.
func (f *Field) fits(m Mesh) error {
	if len(f.Internal) != m.NumCells() {
		return fmt.Errorf("field %s has %d cell values but the mesh has %d cells",
			f.Name, len(f.Internal), m.NumCells())
	}
	patches := m.Patches()
	if len(f.Boundary) != len(patches) {
		return fmt.Errorf("field %s has %d boundary patches but the mesh has %d",
			f.Name, len(f.Boundary), len(patches))
	}
	for i, p := range patches {
		if len(f.Boundary[i]) != len(p.FaceCells) {
			return fmt.Errorf("field %s has %d faces on patch %s but the mesh has %d",
				f.Name, len(f.Boundary[i]), p.Name, len(p.FaceCells))
		}
	}
	return nil
}

// Mesh provides the cells and boundary patches that fields are stored on.
type Mesh interface {
	// NumCells returns the number of cells in this partition.
	NumCells() int

	// Patches returns the boundary patches, in a fixed order.
	Patches() []*Patch
}

// Synchronizer can optionally be implemented by a Mesh whose coupled patches
// receive their values from another region or partition. Synchronize must
// block until the boundary values of the given fields are up to date.
type Synchronizer interface {
	Synchronize(fields ...*Field) error
}

// Patch is a named boundary region of a mesh.
type Patch struct {
	Name string

	// FaceCells holds the index of the cell adjacent to each face.
	FaceCells []int

	// Types holds the boundary condition type name (for example
	// "fixedValue", "zeroGradient", or "processor") of each of the
	// classified variables T, H, and Z.
	Types map[string]string
}

// UnstructuredMesh is a Mesh that holds its cell count and patches directly.
type UnstructuredMesh struct {
	Cells    int
	Boundary []*Patch
}

// NumCells fulfils the Mesh interface.
func (m *UnstructuredMesh) NumCells() int { return m.Cells }

// Patches fulfils the Mesh interface.
func (m *UnstructuredMesh) Patches() []*Patch { return m.Boundary }

// checkMesh makes sure the face-to-cell connectivity of m is valid.
func checkMesh(m Mesh) error {
	if m.NumCells() < 1 {
		return fmt.Errorf("the mesh has no cells")
	}
	names := make(map[string]struct{})
	for _, p := range m.Patches() {
		if _, ok := names[p.Name]; ok {
			return fmt.Errorf("repeated boundary patch name '%s'", p.Name)
		}
		names[p.Name] = struct{}{}
		for i, c := range p.FaceCells {
			if c < 0 || c >= m.NumCells() {
				return fmt.Errorf("face %d of patch %s is adjacent to cell %d, which is not in the mesh",
					i, p.Name, c)
			}
		}
	}
	return nil
}
