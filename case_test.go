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
	"strings"
	"testing"
)

const testCase = `
NumCells = 3

[Cells]
Z = [0.02, 0.055, 0.3]
Zvar = [0.001]
chi_st = [10.0]

[[Patch]]
Name = "fuel"
FaceCells = [2]
Types = {T = "fixedValue", H = "fixedValue", Z = "fixedValue"}
Values = {Z = [1.0], Zvar = [0.0], chi_st = [0.0], T = [320.0]}

[[Patch]]
Name = "outlet"
FaceCells = [0, 1]
Types = {T = "zeroGradient", H = "zeroGradient", Z = "zeroGradient"}
`

func TestCase(t *testing.T) {
	c, err := ReadCase(strings.NewReader(testCase))
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	m, s, mix, err := c.Build(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumCells() != 3 || len(m.Patches()) != 2 {
		t.Fatalf("wrong mesh %+v", m)
	}
	if s.Zvar.Internal[2] != 0.001 || s.ChiSt.Internal[1] != 10 {
		t.Error("single values should apply to every cell")
	}
	if s.H.Internal[1] != cfg.Had(0.055) {
		t.Errorf("H should default to the adiabatic enthalpy: have %g", s.H.Internal[1])
	}
	if s.Z.Boundary[0][0] != 1 || s.H.Boundary[0][0] != cfg.HFuel {
		t.Errorf("inlet: Z=%g, H=%g", s.Z.Boundary[0][0], s.H.Boundary[0][0])
	}
	if s.Z.Boundary[1][1] != 0.055 || s.Zvar.Boundary[1][1] != 0.001 {
		t.Error("outlet values should be copied from the adjacent cells")
	}
	if mix.Property(VarT).Boundary[0][0] != 320 || mix.Property(VarT).Boundary[1][0] != defaultTemperature {
		t.Error("wrong boundary temperatures")
	}

	th, err := NewThermo(cfg, m, &analyticTable{}, WithLogger(testLogger(nil)), WithState(s), WithMixture(mix))
	if err != nil {
		t.Fatal(err)
	}
	if th.T().Boundary[0][0] != 320 {
		t.Errorf("fixed inlet temperature: have %g", th.T().Boundary[0][0])
	}
}

func TestCaseErrors(t *testing.T) {
	cfg := testConfig()
	for name, text := range map[string]string{
		"length":        "NumCells = 3\n[Cells]\nZ = [0.1, 0.2]\n",
		"cell variable": "NumCells = 1\n[Cells]\nT = [300.0]\n",
		"face variable": "NumCells = 1\n[[Patch]]\nName = \"a\"\nFaceCells = [0]\nValues = {rho = [1.0]}\n",
		"face cell":     "NumCells = 1\n[[Patch]]\nName = \"a\"\nFaceCells = [1]\n",
		"no cells":      "NumCells = 0\n",
	} {
		c, err := ReadCase(strings.NewReader(text))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if _, _, _, err := c.Build(&cfg); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := ReadCase(strings.NewReader("NumCells = [")); err == nil {
		t.Error("invalid TOML should be rejected")
	}
}
