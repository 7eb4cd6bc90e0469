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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

func (t *Thermo) mode() string {
	if t.cfg.AdiabaticMode {
		return "adiabatic"
	}
	return "non-adiabatic"
}

// errorMessage reports err, which is returned unchanged. Faults that
// occurred at a cell or face are reported with their location and inputs.
func (t *Thermo) errorMessage(err error) error {
	fields := logrus.Fields{
		"mode":                t.mode(),
		"PropertyUpdate":      t.cfg.PropertyUpdate,
		"MassFractionsUpdate": t.cfg.MassFractionsUpdate,
	}
	var (
		cf   *ConfigurationFault
		lf   *LookupFault
		sf   *ConsistencyFault
		kind = "other"
	)
	switch {
	case errors.As(err, &cf):
		kind = "configuration"
	case errors.As(err, &lf):
		kind = "lookup"
		if lf.Location != nil {
			fields["location"] = lf.Location.String()
		}
		addPoint(fields, lf.Point)
	case errors.As(err, &sf):
		kind = "consistency"
		fields["location"] = sf.Location.String()
		addPoint(fields, sf.Point)
	}
	fields["fault"] = kind
	faultsTotal.WithLabelValues(kind).Inc()
	t.log.WithFields(fields).Error(err.Error())
	return err
}

func addPoint(f logrus.Fields, p Point) {
	f[VarZ] = p.Z
	f[VarZvar] = p.Zvar
	f[VarChiSt] = p.ChiSt
	f[VarDefect] = p.Defect
}

// InfoMessage logs the configuration of t. It does not modify any field
// and may be called at any time.
func (t *Thermo) InfoMessage() {
	t.log.WithFields(logrus.Fields{
		"mode":                t.mode(),
		"PropertyUpdate":      t.cfg.PropertyUpdate,
		"MassFractionsUpdate": t.cfg.MassFractionsUpdate,
		"HFuel":               t.cfg.HFuel,
		"HOxidizer":           t.cfg.HOxidizer,
		"species":             strings.Join(t.cfg.Species, ","),
		"patches":             t.classification.Summary(t.mesh),
	}).Info("flamelet closure configuration")
}

// Summary returns a multi-line, human-readable
// description of the configuration of t.
func (t *Thermo) Summary() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "Mode:                %s\n", t.mode())
	fmt.Fprintf(b, "PropertyUpdate:      %d\n", t.cfg.PropertyUpdate)
	fmt.Fprintf(b, "MassFractionsUpdate: %d\n", t.cfg.MassFractionsUpdate)
	fmt.Fprintf(b, "HFuel:               %g J/kg\n", t.cfg.HFuel)
	fmt.Fprintf(b, "HOxidizer:           %g J/kg\n", t.cfg.HOxidizer)
	fmt.Fprintf(b, "Species:             %s\n", strings.Join(t.cfg.Species, ", "))
	fmt.Fprintf(b, "Cells:               %d\n", t.mesh.NumCells())
	for i, p := range t.mesh.Patches() {
		fmt.Fprintf(b, "Patch %-14s %d faces, T=%v H=%v Z=%v\n", p.Name+":", len(p.FaceCells),
			t.classification.Policy(VarT, i), t.classification.Policy(VarH, i),
			t.classification.Policy(VarZ, i))
	}
	return b.String()
}

// showFlameletLibrary logs a description of the table.
func (t *Thermo) showFlameletLibrary() {
	entry := t.log.WithField("species", strings.Join(t.table.Species(), ","))
	if s, ok := t.table.(fmt.Stringer); ok {
		entry = entry.WithField("table", s.String())
	}
	entry.Info("flamelet library")
}

// showFlamelet logs a summary of a completed refresh.
func (t *Thermo) showFlamelet(pass string, queries int, d time.Duration) {
	fields := logrus.Fields{
		"pass":     pass,
		"queries":  queries,
		"duration": d,
	}
	if pass == bulkPass {
		temp := t.mix.Property(VarT).Internal
		rho := t.mix.Property(VarDensity).Internal
		fields["T_min"] = floats.Min(temp)
		fields["T_max"] = floats.Max(temp)
		fields["rho_min"] = floats.Min(rho)
		fields["rho_max"] = floats.Max(rho)
	}
	t.log.WithFields(fields).Debug("flamelet refresh")
}
