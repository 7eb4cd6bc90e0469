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
	"testing"
)

func TestSaveLoad(t *testing.T) {
	cfg := testConfig()
	cfg.AdiabaticMode = false
	th, err := newTestThermo(cfg, &analyticTable{})
	if err != nil {
		t.Fatal(err)
	}
	th.H().Internal[1] -= 1000
	th.ChiSt().Internal[2] = 50
	buf := new(bytes.Buffer)
	if err := Save(buf)(&Simulation{Thermo: th}); err != nil {
		t.Fatal(err)
	}
	if err := th.Correct(); err != nil {
		t.Fatal(err)
	}

	s, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	th2, err := NewThermo(cfg, th.Mesh(), &analyticTable{}, WithLogger(testLogger(nil)), WithState(s))
	if err != nil {
		t.Fatal(err)
	}
	for i := range th.T().Internal {
		if th.T().Internal[i] != th2.T().Internal[i] {
			t.Errorf("cell %d: T=%g after loading, want %g", i, th2.T().Internal[i], th.T().Internal[i])
		}
		if th.Defect().Internal[i] != th2.Defect().Internal[i] {
			t.Errorf("cell %d: defect=%g after loading, want %g", i, th2.Defect().Internal[i], th.Defect().Internal[i])
		}
	}
	if th2.Z().Boundary[0][0] != 1 {
		t.Error("boundary values should be restored")
	}

	if _, err := Load(bytes.NewBufferString("not a checkpoint")); err == nil {
		t.Error("loading garbage should fail")
	}
}
