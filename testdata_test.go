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
	"bytes"
	"io/ioutil"
	"math"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var testSpecies = []string{"fuel", "oxidizer", "products"}

// zSt is the stoichiometric mixture fraction of the analytic table.
const zSt = 0.055

// analyticProperties returns properties that depend smoothly on every
// coordinate of p and whose species always sum to one.
func analyticProperties(p Point) *Properties {
	var prod float64
	if p.Z <= zSt {
		prod = p.Z / zSt
	} else {
		prod = (1 - p.Z) / (1 - zSt)
	}
	prod *= (1 - p.Zvar) / (1 + p.ChiSt/100)
	T := 300 + 1700*prod - p.Defect/1000
	mu := 1.8e-5 * math.Pow(T/300, 0.7)
	return &Properties{
		T:             T,
		Density:       101325 / (287 * T),
		Viscosity:     mu,
		Diffusivity:   mu / 0.7,
		Absorption:    0.1 * prod,
		MassFractions: []float64{p.Z * (1 - prod), (1 - p.Z) * (1 - prod), prod},
	}
}

// analyticTable is a flamelet table with closed-form properties.
type analyticTable struct {
	lookups int64

	// modify, if not nil, is applied to every result.
	modify func(p Point, r *Properties)
}

func (a *analyticTable) Species() []string { return testSpecies }

func (a *analyticTable) Lookup(p Point) (*Properties, error) {
	atomic.AddInt64(&a.lookups, 1)
	if err := CheckPoint(p); err != nil {
		return nil, err
	}
	r := analyticProperties(p)
	if a.modify != nil {
		a.modify(p, r)
	}
	return r, nil
}

func (a *analyticTable) count() int { return int(atomic.LoadInt64(&a.lookups)) }

var testZ = []float64{0.02, zSt, 0.1, 0.3}

// testMesh returns a mesh with four cells, a fixed-value fuel inlet
// at cell 3, and a zero-gradient outlet at cells 0 and 1.
func testMesh() *UnstructuredMesh {
	return &UnstructuredMesh{
		Cells: len(testZ),
		Boundary: []*Patch{
			{
				Name:      "fuel",
				FaceCells: []int{3},
				Types:     map[string]string{VarT: "fixedValue", VarH: "fixedValue", VarZ: "fixedValue"},
			},
			{
				Name:      "outlet",
				FaceCells: []int{0, 1},
				Types:     map[string]string{VarT: "zeroGradient", VarH: "zeroGradient", VarZ: "zeroGradient"},
			},
		},
	}
}

func testConfig() Config {
	return Config{
		AdiabaticMode:       true,
		PropertyUpdate:      1,
		MassFractionsUpdate: 1,
		HFuel:               -2.e5,
		HOxidizer:           0,
		Species:             append([]string(nil), testSpecies...),
	}
}

// testState returns the initial state for testMesh.
func testState(m Mesh, cfg *Config) *State {
	s := NewState(m, 0)
	for i, z := range testZ {
		s.Z.Internal[i] = z
		s.Zvar.Internal[i] = 0.001
		s.ChiSt.Internal[i] = 10
		s.H.Internal[i] = cfg.Had(z)
	}
	for pi, p := range m.Patches() {
		for f, c := range p.FaceCells {
			s.Z.Boundary[pi][f] = s.Z.Internal[c]
			s.Zvar.Boundary[pi][f] = s.Zvar.Internal[c]
			s.ChiSt.Boundary[pi][f] = s.ChiSt.Internal[c]
			s.H.Boundary[pi][f] = s.H.Internal[c]
		}
	}
	// Pure fuel at the inlet.
	s.Z.Boundary[0][0] = 1
	s.Zvar.Boundary[0][0] = 0
	s.ChiSt.Boundary[0][0] = 0
	s.H.Boundary[0][0] = cfg.HFuel
	return s
}

// testLogger returns a logger that writes text records to buf,
// or discards them if buf is nil.
func testLogger(buf *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	if buf == nil {
		l.Out = ioutil.Discard
	} else {
		l.Out = buf
	}
	l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	l.Level = logrus.DebugLevel
	return l
}

// newTestThermo creates a Thermo for testMesh with the given configuration.
func newTestThermo(cfg Config, tab Table, opts ...Option) (*Thermo, error) {
	m := testMesh()
	opts = append([]Option{WithLogger(testLogger(nil)), WithState(testState(m, &cfg))}, opts...)
	return NewThermo(cfg, m, tab, opts...)
}

// different returns true if a and b are not within tol of each other.
func different(a, b, tol float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tol || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
