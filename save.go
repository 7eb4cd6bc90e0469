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
	"encoding/gob"
	"fmt"
	"io"
)

// checkpoint is the saved form of a simulation.
type checkpoint struct {
	Z, Zvar, ChiSt, H *Field
}

// Save returns a function that saves the mixture fraction statistics and
// enthalpy of the simulation to a gob file
// (format description at https://golang.org/pkg/encoding/gob/).
func Save(w io.Writer) StepManipulator {
	return func(s *Simulation) error {
		st := s.Thermo.state
		e := gob.NewEncoder(w)
		if err := e.Encode(checkpoint{
			Z:     st.Z,
			Zvar:  st.Zvar,
			ChiSt: st.ChiSt,
			H:     st.H,
		}); err != nil {
			return fmt.Errorf("flamelet: saving checkpoint: %v", err)
		}
		return nil
	}
}

// Load reads a State that was previously saved with Save. The
// result can be passed to NewThermo using WithState.
func Load(r io.Reader) (*State, error) {
	dec := gob.NewDecoder(r)
	var c checkpoint
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("flamelet: loading checkpoint: %v", err)
	}
	if c.Z == nil || c.Zvar == nil || c.ChiSt == nil || c.H == nil {
		return nil, fmt.Errorf("flamelet: loading checkpoint: missing field")
	}
	return &State{Z: c.Z, Zvar: c.Zvar, ChiSt: c.ChiSt, H: c.H}, nil
}
