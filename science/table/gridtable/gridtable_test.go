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
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spatialmodel/flamelet"
)

var testAxes = Axes{
	Z:      []float64{0, 0.02, 0.055, 0.1, 0.2, 0.5, 1},
	Zvar:   []float64{0, 0.01, 0.05, 0.25},
	ChiSt:  []float64{0, 1, 10, 100},
	Defect: []float64{-1.e5, 0, 1.e5},
}

var testSpecies = []string{"CH4", "O2", "N2", "CO2", "H2O"}

// burkeSchumann returns infinitely fast chemistry properties
// for a methane-air flame, broadened by variance and strain.
func burkeSchumann(p flamelet.Point) *flamelet.Properties {
	const zSt = 0.055
	var prog float64
	if p.Z <= zSt {
		prog = p.Z / zSt
	} else {
		prog = (1 - p.Z) / (1 - zSt)
	}
	prog *= (1 - 2*p.Zvar) / (1 + p.ChiSt/50)
	fuel := p.Z * (1 - prog)
	air := (1 - p.Z) * (1 - prog)
	T := 300 + 1800*prog - p.Defect/2000
	mu := 1.8e-5 * math.Pow(T/300, 0.7)
	return &flamelet.Properties{
		T:             T,
		Density:       101325 / (287 * T),
		Viscosity:     mu,
		Diffusivity:   mu / 0.7,
		Absorption:    0.2 * prog,
		MassFractions: []float64{fuel, 0.233 * air, 0.767 * air, 0.6 * prog, 0.4 * prog},
	}
}

func newTestTable(t *testing.T) *Table {
	tab, err := New(testAxes, testSpecies)
	if err != nil {
		t.Fatal(err)
	}
	if err := tab.Fill(burkeSchumann); err != nil {
		t.Fatal(err)
	}
	return tab
}

func different(a, b, tol float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tol || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestNew(t *testing.T) {
	for name, axes := range map[string]Axes{
		"empty":          {Z: nil, Zvar: []float64{0}, ChiSt: []float64{0}, Defect: []float64{0}},
		"not increasing": {Z: []float64{0, 1, 1}, Zvar: []float64{0}, ChiSt: []float64{0}, Defect: []float64{0}},
		"NaN":            {Z: []float64{0, 1}, Zvar: []float64{0}, ChiSt: []float64{math.NaN()}, Defect: []float64{0}},
	} {
		if _, err := New(axes, testSpecies); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := New(testAxes, nil); err == nil {
		t.Error("tables without species should be rejected")
	}
	tab, _ := New(testAxes, testSpecies)
	err := tab.Fill(func(p flamelet.Point) *flamelet.Properties {
		return &flamelet.Properties{MassFractions: []float64{1}}
	})
	if err == nil {
		t.Error("nodes with the wrong number of species should be rejected")
	}
}

func TestLookupAtNodes(t *testing.T) {
	tab := newTestTable(t)
	for _, z := range testAxes.Z {
		for _, chi := range testAxes.ChiSt {
			p := flamelet.Point{Z: z, Zvar: 0, ChiSt: chi, Defect: 1.e5}
			have, err := tab.Lookup(p)
			if err != nil {
				t.Fatal(err)
			}
			want := burkeSchumann(p)
			if different(have.T, want.T, 1.e-14) {
				t.Errorf("%+v: T=%g, want %g", p, have.T, want.T)
			}
			for i := range want.MassFractions {
				if math.Abs(have.MassFractions[i]-want.MassFractions[i]) > 1.e-15 {
					t.Errorf("%+v: species %d=%g, want %g", p, i, have.MassFractions[i], want.MassFractions[i])
				}
			}
		}
	}
}

func TestLookupLinear(t *testing.T) {
	tab, err := New(testAxes, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	linear := func(p flamelet.Point) *flamelet.Properties {
		return &flamelet.Properties{
			T:             1000 + 100*p.Z + 10*p.Zvar + p.ChiSt + p.Defect/1000,
			Density:       1,
			Viscosity:     1,
			Diffusivity:   1,
			MassFractions: []float64{p.Z, 1 - p.Z},
		}
	}
	if err := tab.Fill(linear); err != nil {
		t.Fatal(err)
	}
	p := flamelet.Point{Z: 0.3, Zvar: 0.02, ChiSt: 37, Defect: -2.5e4}
	have, err := tab.Lookup(p)
	if err != nil {
		t.Fatal(err)
	}
	want := linear(p)
	if different(have.T, want.T, 1.e-12) {
		t.Errorf("T: have %g, want %g", have.T, want.T)
	}
	if different(have.MassFractions[0], 0.3, 1.e-12) {
		t.Errorf("species a: have %g, want 0.3", have.MassFractions[0])
	}
}

func TestSpeciesSumToOne(t *testing.T) {
	tab := newTestTable(t)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 2000; i++ {
		z := rng.Float64()
		p := flamelet.Point{
			Z:      z,
			Zvar:   rng.Float64() * flamelet.MaxVariance(z),
			ChiSt:  rng.Float64() * 100,
			Defect: (rng.Float64() - 0.5) * 2.e5,
		}
		r, err := tab.Lookup(p)
		if err != nil {
			t.Fatalf("%+v: %v", p, err)
		}
		sum := 0.
		for j, y := range r.MassFractions {
			if y < 0 || y > 1 {
				t.Errorf("%+v: species %d=%g", p, j, y)
			}
			sum += y
		}
		if math.Abs(sum-1) > 1.e-6 {
			t.Errorf("%+v: species sum to %g", p, sum)
		}
	}
}

func TestLookupFaults(t *testing.T) {
	tab := newTestTable(t)
	for _, test := range []struct {
		p      flamelet.Point
		reason string
	}{
		{flamelet.Point{Z: 1.5}, "mixture fraction outside [0, 1]"},
		{flamelet.Point{Z: 0.5, ChiSt: 150}, "chi_st=150 is outside the tabulated range [0, 100]"},
		{flamelet.Point{Z: 0.5, Defect: 2.e5}, "defect=200000 is outside the tabulated range"},
		{flamelet.Point{Z: 0.1, Zvar: 0.2}, "variance exceeds"},
	} {
		_, err := tab.Lookup(test.p)
		var lf *flamelet.LookupFault
		if !errors.As(err, &lf) {
			t.Errorf("%+v: want LookupFault, have %v", test.p, err)
			continue
		}
		if !strings.Contains(lf.Reason, test.reason) {
			t.Errorf("%+v: reason %q should contain %q", test.p, lf.Reason, test.reason)
		}
	}
}

func TestSingleNodeAxis(t *testing.T) {
	axes := testAxes
	axes.Defect = []float64{0}
	tab, err := New(axes, testSpecies)
	if err != nil {
		t.Fatal(err)
	}
	if err := tab.Fill(burkeSchumann); err != nil {
		t.Fatal(err)
	}
	a, err := tab.Lookup(flamelet.Point{Z: 0.1, ChiSt: 10, Defect: 0})
	if err != nil {
		t.Fatal(err)
	}
	b, err := tab.Lookup(flamelet.Point{Z: 0.1, ChiSt: 10, Defect: 5.e4})
	if err != nil {
		t.Fatal(err)
	}
	if a.T != b.T {
		t.Errorf("tables should not vary along single-node axes: %g != %g", a.T, b.T)
	}
}

func TestNetCDF(t *testing.T) {
	tab := newTestTable(t)
	fname := filepath.Join(t.TempDir(), "table.nc")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := tab.Write(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	f, err = os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	tab2, err := Read(f)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tab.Axes(), tab2.Axes()) {
		t.Errorf("axes: have %v, want %v", tab2.Axes(), tab.Axes())
	}
	if !reflect.DeepEqual(tab.Species(), tab2.Species()) {
		t.Errorf("species: have %v, want %v", tab2.Species(), tab.Species())
	}
	p := flamelet.Point{Z: 0.07, Zvar: 0.003, ChiSt: 4, Defect: 2.e4}
	want, _ := tab.Lookup(p)
	have, err := tab2.Lookup(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("lookup after reading: have %+v, want %+v", have, want)
	}
}

func TestString(t *testing.T) {
	tab := newTestTable(t)
	want := "Z: 7 nodes in [0, 1]; Zvar: 4 nodes in [0, 0.25]; chi_st: 4 nodes in [0, 100]; defect: 3 nodes in [-100000, 100000]; species: CH4,O2,N2,CO2,H2O"
	if s := tab.String(); s != want {
		t.Errorf("have %s\nwant %s", s, want)
	}
}
