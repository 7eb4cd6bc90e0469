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

// Location identifies the cell or boundary face where a fault occurred.
// Patch is empty for interior cells.
type Location struct {
	Cell  int
	Patch string
	Face  int
}

func (l Location) String() string {
	if l.Patch == "" {
		return fmt.Sprintf("cell %d", l.Cell)
	}
	return fmt.Sprintf("patch %s face %d (cell %d)", l.Patch, l.Face, l.Cell)
}

// ConfigurationFault is returned when the engine is constructed with
// invalid parameters, for example a non-positive update period, a species
// list that does not match the table, or a malformed patch classification.
type ConfigurationFault struct {
	Reason string
}

func (e *ConfigurationFault) Error() string {
	return "flamelet: configuration: " + e.Reason
}

func configFault(format string, args ...interface{}) *ConfigurationFault {
	return &ConfigurationFault{Reason: fmt.Sprintf(format, args...)}
}

// LookupFault is returned when a flamelet table cannot be queried at a point,
// either because the point is outside the physical domain or outside the
// range covered by the table. Tables return it with Location unset; the
// engine fills Location in before reporting it.
type LookupFault struct {
	Point    Point
	Location *Location
	Reason   string

	// Err holds the underlying error from the table, if any.
	Err error
}

func (e *LookupFault) Error() string {
	var where string
	if e.Location != nil {
		where = " at " + e.Location.String()
	}
	return fmt.Sprintf("flamelet: table lookup failed%s (Z=%g, Zvar=%g, chi_st=%g, defect=%g): %s",
		where, e.Point.Z, e.Point.Zvar, e.Point.ChiSt, e.Point.Defect, e.Reason)
}

func (e *LookupFault) Unwrap() error { return e.Err }

// ConsistencyFault is returned when a table result fails a post-query check:
// species mass fractions outside [0,1] or not summing to 1, non-physical
// transport properties, or the wrong number of species.
type ConsistencyFault struct {
	Point    Point
	Location Location
	Reason   string
}

func (e *ConsistencyFault) Error() string {
	return fmt.Sprintf("flamelet: inconsistent table result at %s (Z=%g, Zvar=%g, chi_st=%g, defect=%g): %s",
		e.Location, e.Point.Z, e.Point.Zvar, e.Point.ChiSt, e.Point.Defect, e.Reason)
}
