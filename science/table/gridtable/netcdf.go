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

package gridtable

import (
	"fmt"
	"strings"

	"github.com/ctessum/cdf"
)

// speciesPrefix is prepended to species names to make the names
// of the mass fraction variables.
const speciesPrefix = "Y_"

var units = map[string]string{
	"T":     "K",
	"rho":   "kg m-3",
	"mu":    "kg m-1 s-1",
	"alpha": "kg m-1 s-1",
	"as":    "m-1",
}

// Write writes t to w in netCDF format. Each axis is stored as a coordinate
// variable, and each property and species mass fraction as a variable over
// all four axes.
func (t *Table) Write(w cdf.ReaderWriterAt) error {
	dims := axisNames[:]
	h := cdf.NewHeader(dims, t.n[:])
	for _, a := range axisNames {
		h.AddVariable(a, []string{a}, []float64{0})
	}
	for _, p := range propertyNames {
		h.AddVariable(p, dims, []float64{0})
		h.AddAttribute(p, "units", units[p])
	}
	for _, s := range t.species {
		v := speciesPrefix + s
		h.AddVariable(v, dims, []float64{0})
		h.AddAttribute(v, "description", fmt.Sprintf("%s mass fraction", s))
	}
	h.AddAttribute("", "species", strings.Join(t.species, ","))
	h.AddAttribute("", "title", "flamelet table")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("gridtable: creating netcdf header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("gridtable: creating netcdf file: %v", err)
	}
	for i, a := range t.axes.list() {
		if err := writeVar(f, axisNames[i], []int{0}, []int{len(a)}, a); err != nil {
			return err
		}
	}
	begin := []int{0, 0, 0, 0}
	end := t.n[:]
	for i, p := range propertyNames {
		if err := writeVar(f, p, begin, end, t.props[i]); err != nil {
			return err
		}
	}
	for i, s := range t.species {
		if err := writeVar(f, speciesPrefix+s, begin, end, t.y[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeVar(f *cdf.File, name string, begin, end []int, data []float64) error {
	w := f.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("gridtable: writing variable %s: %v", name, err)
	}
	return nil
}

// Read reads a table in the format created by Write.
func Read(r cdf.ReaderWriterAt) (*Table, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("gridtable: opening netcdf file: %v", err)
	}
	s, ok := f.Header.GetAttribute("", "species").(string)
	if !ok || s == "" {
		return nil, fmt.Errorf("gridtable: netcdf file has no species attribute")
	}
	species := strings.Split(s, ",")

	var axes [4][]float64
	for i, a := range axisNames {
		if axes[i], err = readVar(f, a); err != nil {
			return nil, err
		}
	}
	t, err := New(Axes{Z: axes[0], Zvar: axes[1], ChiSt: axes[2], Defect: axes[3]}, species)
	if err != nil {
		return nil, err
	}
	for i, p := range propertyNames {
		if t.props[i], err = readVar(f, p); err != nil {
			return nil, err
		}
	}
	for i, sp := range species {
		if t.y[i], err = readVar(f, speciesPrefix+sp); err != nil {
			return nil, err
		}
	}
	for i, p := range t.props {
		if len(p) != t.size() {
			return nil, fmt.Errorf("gridtable: variable %s has %d values but the axes have %d nodes",
				propertyNames[i], len(p), t.size())
		}
	}
	for i, y := range t.y {
		if len(y) != t.size() {
			return nil, fmt.Errorf("gridtable: variable %s has %d values but the axes have %d nodes",
				speciesPrefix+species[i], len(y), t.size())
		}
	}
	return t, nil
}

// readVar reads a full float64 variable.
func readVar(f *cdf.File, name string) ([]float64, error) {
	if f.Header.Lengths(name) == nil {
		return nil, fmt.Errorf("gridtable: netcdf file has no variable %s", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("gridtable: reading variable %s: %v", name, err)
	}
	data, ok := buf.([]float64)
	if !ok {
		return nil, fmt.Errorf("gridtable: variable %s is not float64", name)
	}
	return data, nil
}
