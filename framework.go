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
	"time"
)

// Simulation drives a Thermo through a sequence of iterations,
// standing in for the outer solver loop.
type Simulation struct {
	Thermo *Thermo

	// InitFuncs are run once, before the first iteration.
	InitFuncs []StepManipulator

	// RunFuncs are run in order every iteration until
	// one of them sets Done.
	RunFuncs []StepManipulator

	// CleanupFuncs are run once, after the last iteration.
	CleanupFuncs []StepManipulator

	// Iteration is the number of the current iteration, starting at 1.
	Iteration int

	// Done specifies that the simulation is finished.
	Done bool
}

// StepManipulator is a function that operates on a simulation.
type StepManipulator func(s *Simulation) error

// Init runs the InitFuncs.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run runs the RunFuncs until one of them sets Done, and
// then runs the CleanupFuncs.
func (s *Simulation) Run() error {
	for !s.Done {
		s.Iteration++
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Correct returns a function that calls Correct on the Thermo
// of the simulation.
func Correct() StepManipulator {
	return func(s *Simulation) error {
		if err := s.Thermo.Correct(); err != nil {
			return fmt.Errorf("flamelet: iteration %d: %w", s.Iteration, err)
		}
		return nil
	}
}

// IterationLimit returns a function that marks the simulation
// as done after n iterations.
func IterationLimit(n int) StepManipulator {
	return func(s *Simulation) error {
		if n < 1 {
			return fmt.Errorf("flamelet: number of iterations must be at least 1 but is %d", n)
		}
		if s.Iteration >= n {
			s.Done = true
		}
		return nil
	}
}

// Log returns a function that writes the iteration number, the
// elapsed wall time, and the number of refreshes to w.
func Log(w io.Writer) StepManipulator {
	startTime := time.Now()
	timeOfLastIteration := startTime
	return func(s *Simulation) error {
		now := time.Now()
		st := s.Thermo.Stats()
		_, err := fmt.Fprintf(w, "Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  bulk refreshes=%d  species refreshes=%d\n",
			s.Iteration, now.Sub(startTime).Hours(), now.Sub(timeOfLastIteration).Seconds(),
			st.BulkRefreshes, st.SpeciesRefreshes)
		timeOfLastIteration = now
		return err
	}
}
