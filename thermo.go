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
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Version is the version of the closure engine.
const Version = "0.1.0"

// defaultTemperature is the initial temperature [K] of
// mixtures that are not supplied by the caller.
const defaultTemperature = 300.

// Config holds the construction parameters of a Thermo.
type Config struct {
	// AdiabaticMode specifies that the enthalpy follows the
	// adiabatic mixing line, so the enthalpy defect is zero.
	AdiabaticMode bool

	// PropertyUpdate is the number of calls to Correct between
	// refreshes of T, density, viscosity, diffusivity, and absorption.
	PropertyUpdate int

	// MassFractionsUpdate is the number of calls to Correct between
	// refreshes of the species mass fractions.
	MassFractionsUpdate int

	// HFuel and HOxidizer are the enthalpies [J/kg] of the fuel
	// and oxidizer streams.
	HFuel, HOxidizer float64

	// Species are the names of the species to track. They must match
	// the species of the flamelet table, in the same order.
	Species []string

	// ShowFlamelet turns on a debug-level log record after every refresh.
	ShowFlamelet bool

	// ShowFlameletLibrary turns on a description of the flamelet
	// table when the engine is created.
	ShowFlameletLibrary bool
}

// Had returns the adiabatic enthalpy at mixture fraction z.
func (c *Config) Had(z float64) float64 {
	return c.HOxidizer + z*(c.HFuel-c.HOxidizer)
}

// Stats hold the number of refreshes performed by Correct.
type Stats struct {
	BulkRefreshes    int
	SpeciesRefreshes int
}

// Thermo is a presumed-PDF flamelet closure. It holds the mixture fraction
// statistics and enthalpy of every cell and boundary face of a mesh and
// computes the mixture temperature, transport properties, absorption
// coefficient, and species mass fractions from a flamelet table on two
// independent schedules.
//
// A Thermo is not safe for concurrent use; table queries within a
// refresh are run in parallel internally.
type Thermo struct {
	cfg   Config
	mesh  Mesh
	table Table

	state  *State
	defect *Field
	mix    Mixture

	classification PatchClassification
	bulk, species  refreshTimer
	stats          Stats

	log    logrus.FieldLogger
	nprocs int
}

// Option sets an optional parameter of a Thermo.
type Option func(*Thermo) error

// WithLogger sets the logger that diagnostics are written to. The default is
// logrus.StandardLogger(), which is also kept if l is nil.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Thermo) error {
		if l == nil {
			return nil
		}
		t.log = l
		return nil
	}
}

// WithState sets the initial mixture fraction statistics and enthalpy.
// The default is pure oxidizer.
func WithState(s *State) Option {
	return func(t *Thermo) error {
		if s == nil {
			return configFault("initial state is nil")
		}
		if err := s.fits(t.mesh); err != nil {
			return configFault("initial state: %v", err)
		}
		t.state = s
		return nil
	}
}

// WithMixture sets the storage for the computed properties. The default
// is a FieldMixture. Boundary values of T on fixed-value patches are read
// from the supplied mixture.
func WithMixture(m Mixture) Option {
	return func(t *Thermo) error {
		t.mix = m
		return nil
	}
}

// WithProcessors sets the number of parallel table queries. The default
// is GOMAXPROCS.
func WithProcessors(n int) Option {
	return func(t *Thermo) error {
		if n < 1 {
			return configFault("number of processors must be at least 1 but is %d", n)
		}
		t.nprocs = n
		return nil
	}
}

// NewThermo creates a closure for the cells and patches of m using the
// flamelet table tab. It refreshes every output once before returning,
// so the outputs are valid before the first call to Correct.
func NewThermo(cfg Config, m Mesh, tab Table, opts ...Option) (*Thermo, error) {
	t := &Thermo{
		cfg:    cfg,
		mesh:   m,
		table:  tab,
		log:    logrus.StandardLogger(),
		nprocs: runtime.GOMAXPROCS(-1),
	}
	t.cfg.Species = append([]string(nil), cfg.Species...)
	if m == nil {
		return nil, t.errorMessage(configFault("no mesh"))
	}
	if err := checkMesh(m); err != nil {
		return nil, t.errorMessage(configFault("%v", err))
	}
	for _, o := range opts {
		if err := o(t); err != nil {
			return nil, t.errorMessage(err)
		}
	}
	if err := t.setup(); err != nil {
		return nil, t.errorMessage(err)
	}
	if t.cfg.ShowFlameletLibrary {
		t.showFlameletLibrary()
	}
	t.InfoMessage()

	if err := t.calculate(); err != nil {
		return nil, err
	}
	if err := t.updateMassFractions(); err != nil {
		return nil, err
	}
	return t, nil
}

// setup checks the configuration and allocates any fields
// that were not supplied as options.
func (t *Thermo) setup() error {
	var err error
	if t.bulk, err = newRefreshTimer("PropertyUpdate", t.cfg.PropertyUpdate); err != nil {
		return err
	}
	if t.species, err = newRefreshTimer("MassFractionsUpdate", t.cfg.MassFractionsUpdate); err != nil {
		return err
	}
	for _, h := range []float64{t.cfg.HFuel, t.cfg.HOxidizer} {
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return configFault("stream enthalpies must be finite (HFuel=%g, HOxidizer=%g)",
				t.cfg.HFuel, t.cfg.HOxidizer)
		}
	}
	if t.table == nil {
		return configFault("no flamelet table")
	}
	if err := checkSpeciesNames(t.cfg.Species, t.table.Species()); err != nil {
		return err
	}
	if t.classification, err = Classify(t.mesh); err != nil {
		return err
	}
	if t.classification.hasCoupled() {
		if _, ok := t.mesh.(Synchronizer); !ok {
			return configFault("the mesh has coupled patches but cannot synchronize them")
		}
	}

	if t.state == nil {
		t.state = NewState(t.mesh, t.cfg.Had(0))
	}
	if t.mix == nil {
		t.mix = NewFieldMixture(t.mesh, t.cfg.Species, defaultTemperature)
	}
	if n := t.mix.NumSpecies(); n != len(t.cfg.Species) {
		return configFault("mixture has %d species but %d are configured", n, len(t.cfg.Species))
	}
	for _, name := range mixtureProperties {
		if err := t.mix.Property(name).fits(t.mesh); err != nil {
			return configFault("mixture: %v", err)
		}
	}
	for i := 0; i < t.mix.NumSpecies(); i++ {
		if err := t.mix.MassFraction(i).fits(t.mesh); err != nil {
			return configFault("mixture: %v", err)
		}
	}
	t.defect = NewField(VarDefect, t.mesh, 0)
	return nil
}

// checkSpeciesNames makes sure the configured species
// match the table species exactly.
func checkSpeciesNames(configured, table []string) error {
	if len(configured) == 0 {
		return configFault("no species are configured")
	}
	if len(configured) != len(table) {
		return configFault("%d species are configured but the table has %d", len(configured), len(table))
	}
	for i, s := range configured {
		if s != table[i] {
			return configFault("configured species %d is '%s' but table species %d is '%s'", i, s, i, table[i])
		}
	}
	return nil
}

// Correct advances both refresh timers by one call and refreshes the
// bulk properties, then the species mass fractions, if they are due.
// It is the only method that outer solvers need to call each iteration.
//
// If a refresh fails, the outputs of that refresh are left unchanged and
// its timer is not reset, so it is attempted again on the next call.
func (t *Thermo) Correct() error {
	bulkDue := t.bulk.tick()
	speciesDue := t.species.tick()
	if bulkDue {
		if err := t.calculate(); err != nil {
			return err
		}
		t.bulk.reset()
		t.stats.BulkRefreshes++
	}
	if speciesDue {
		if err := t.updateMassFractions(); err != nil {
			return err
		}
		t.species.reset()
		t.stats.SpeciesRefreshes++
	}
	return nil
}

// sample is a cell or boundary face where the table is queried.
type sample struct {
	loc   Location
	patch int // -1 for interior cells
	point Point
}

// cellPoint returns the table query point of cell c.
func (t *Thermo) cellPoint(c int) Point {
	s := t.state
	p := Point{Z: s.Z.Internal[c], Zvar: s.Zvar.Internal[c], ChiSt: s.ChiSt.Internal[c]}
	if !t.cfg.AdiabaticMode {
		p.Defect = t.cfg.Had(p.Z) - s.H.Internal[c]
	}
	return p
}

// faceZ returns the mixture fraction of face f of patch pi.
func (t *Thermo) faceZ(pi, f int) float64 {
	if t.classification.rule(VarZ, pi).owned {
		return t.state.Z.Internal[t.mesh.Patches()[pi].FaceCells[f]]
	}
	return t.state.Z.Boundary[pi][f]
}

// faceH returns the enthalpy of face f of patch pi, where z
// is the mixture fraction of the face.
func (t *Thermo) faceH(pi, f int, z float64) float64 {
	if !t.classification.rule(VarH, pi).owned {
		return t.state.H.Boundary[pi][f]
	}
	if t.cfg.AdiabaticMode {
		return t.cfg.Had(z)
	}
	return t.state.H.Internal[t.mesh.Patches()[pi].FaceCells[f]]
}

// facePoint returns the table query point of face f of patch pi.
func (t *Thermo) facePoint(pi, f int) Point {
	z := t.faceZ(pi, f)
	p := Point{Z: z, Zvar: t.state.Zvar.Boundary[pi][f], ChiSt: t.state.ChiSt.Boundary[pi][f]}
	if !t.cfg.AdiabaticMode {
		p.Defect = t.cfg.Had(z) - t.faceH(pi, f, z)
	}
	return p
}

// samples returns the points to query: every cell, followed by every
// face whose temperature is not coupled.
func (t *Thermo) samples() []sample {
	s := make([]sample, 0, t.mesh.NumCells())
	for c := 0; c < t.mesh.NumCells(); c++ {
		s = append(s, sample{loc: Location{Cell: c}, patch: -1, point: t.cellPoint(c)})
	}
	for pi, p := range t.mesh.Patches() {
		if !t.classification.rule(VarT, pi).query {
			continue
		}
		for f, c := range p.FaceCells {
			s = append(s, sample{
				loc:   Location{Cell: c, Patch: p.Name, Face: f},
				patch: pi,
				point: t.facePoint(pi, f),
			})
		}
	}
	return s
}

// synchronize waits for the values on coupled patches to be exchanged.
// Coupled faces are never queried, so every input and every table output
// on them is received from the neighbour.
func (t *Thermo) synchronize() error {
	if !t.classification.hasCoupled() {
		return nil
	}
	fields := t.state.fields()
	for _, name := range mixtureProperties {
		fields = append(fields, t.mix.Property(name))
	}
	for i := 0; i < t.mix.NumSpecies(); i++ {
		fields = append(fields, t.mix.MassFraction(i))
	}
	if err := t.mesh.(Synchronizer).Synchronize(fields...); err != nil {
		return fmt.Errorf("flamelet: synchronizing coupled patches: %w", err)
	}
	return nil
}

// extract queries the table at every sample in parallel and checks each
// result with check. If any sample fails, it returns the fault of the
// failing sample with the lowest index.
func (t *Thermo) extract(samples []sample, check func(*Properties) string) ([]*Properties, error) {
	results := make([]*Properties, len(samples))
	nprocs := t.nprocs
	failed := make([]int, nprocs)
	errs := make([]error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(samples); i += nprocs {
				r, err := t.update(samples[i], check)
				if err != nil {
					failed[pp], errs[pp] = i, err
					return
				}
				results[i] = r
			}
		}(pp)
	}
	wg.Wait()
	var err error
	first := len(samples)
	for pp, e := range errs {
		if e != nil && failed[pp] < first {
			first, err = failed[pp], e
		}
	}
	return results, err
}

// update queries the table at one sample and checks the result.
func (t *Thermo) update(s sample, check func(*Properties) string) (*Properties, error) {
	lookupsTotal.Inc()
	loc := s.loc
	p, err := t.table.Lookup(s.point)
	if err != nil {
		var lf *LookupFault
		if errors.As(err, &lf) {
			f := *lf
			f.Point = s.point
			f.Location = &loc
			return nil, &f
		}
		return nil, &LookupFault{Point: s.point, Location: &loc, Reason: err.Error(), Err: err}
	}
	if p == nil {
		return nil, &LookupFault{Point: s.point, Location: &loc, Reason: "table returned no properties"}
	}
	if reason := check(p); reason != "" {
		return nil, &ConsistencyFault{Point: s.point, Location: loc, Reason: reason}
	}
	return p, nil
}

// calculate refreshes the enthalpy, enthalpy defect, temperature, density,
// viscosity, diffusivity, and absorption coefficient of every cell and
// engine-owned boundary face. Nothing is written unless every query
// succeeds.
func (t *Thermo) calculate() error {
	start := time.Now()
	if err := t.synchronize(); err != nil {
		return t.errorMessage(err)
	}
	samples := t.samples()
	results, err := t.extract(samples, checkBulk)
	if err != nil {
		return t.errorMessage(err)
	}

	s := t.state
	for c := range s.H.Internal {
		if t.cfg.AdiabaticMode {
			s.H.Internal[c] = t.cfg.Had(s.Z.Internal[c])
		}
		t.defect.Internal[c] = samples[c].point.Defect
	}
	for pi, p := range t.mesh.Patches() {
		zOwned := t.classification.rule(VarZ, pi).owned
		hOwned := t.classification.rule(VarH, pi).owned
		for f := range p.FaceCells {
			z := t.faceZ(pi, f)
			h := t.faceH(pi, f, z)
			if zOwned {
				s.Z.Boundary[pi][f] = z
			}
			if hOwned {
				s.H.Boundary[pi][f] = h
			}
			if !t.cfg.AdiabaticMode {
				t.defect.Boundary[pi][f] = t.cfg.Had(z) - h
			}
		}
	}

	out := make([]*Field, len(mixtureProperties))
	for i, name := range mixtureProperties {
		out[i] = t.mix.Property(name)
	}
	for i, smp := range samples {
		r := results[i]
		vals := [...]float64{r.T, r.Density, r.Viscosity, r.Diffusivity, r.Absorption}
		if smp.patch < 0 {
			for j, v := range vals {
				out[j].Internal[smp.loc.Cell] = v
			}
			continue
		}
		tOwned := t.classification.rule(VarT, smp.patch).owned
		for j, v := range vals {
			if j == 0 && !tOwned {
				continue // out[0] is T
			}
			out[j].Boundary[smp.patch][smp.loc.Face] = v
		}
	}

	refreshesTotal.WithLabelValues(bulkPass).Inc()
	refreshDuration.WithLabelValues(bulkPass).Observe(time.Since(start).Seconds())
	if t.cfg.ShowFlamelet {
		t.showFlamelet(bulkPass, len(samples), time.Since(start))
	}
	return nil
}

// updateMassFractions refreshes the species mass fractions of every cell
// and queried boundary face. Nothing is written unless every query
// succeeds.
func (t *Thermo) updateMassFractions() error {
	start := time.Now()
	if err := t.synchronize(); err != nil {
		return t.errorMessage(err)
	}
	n := t.mix.NumSpecies()
	samples := t.samples()
	results, err := t.extract(samples, func(p *Properties) string {
		return checkSpecies(p, n)
	})
	if err != nil {
		return t.errorMessage(err)
	}
	for k := 0; k < n; k++ {
		y := t.mix.MassFraction(k)
		for i, smp := range samples {
			if smp.patch < 0 {
				y.Internal[smp.loc.Cell] = results[i].MassFractions[k]
			} else {
				y.Boundary[smp.patch][smp.loc.Face] = results[i].MassFractions[k]
			}
		}
	}

	refreshesTotal.WithLabelValues(speciesPass).Inc()
	refreshDuration.WithLabelValues(speciesPass).Observe(time.Since(start).Seconds())
	if t.cfg.ShowFlamelet {
		t.showFlamelet(speciesPass, len(samples), time.Since(start))
	}
	return nil
}

// Z returns the mean mixture fraction, which may be modified by the caller.
func (t *Thermo) Z() *Field { return t.state.Z }

// Zvar returns the mixture fraction variance, which may be modified by the caller.
func (t *Thermo) Zvar() *Field { return t.state.Zvar }

// ChiSt returns the stoichiometric scalar dissipation rate, which may be
// modified by the caller.
func (t *Thermo) ChiSt() *Field { return t.state.ChiSt }

// H returns the mixture enthalpy, which may be modified by the caller.
// In adiabatic mode it is overwritten by every bulk refresh.
func (t *Thermo) H() *Field { return t.state.H }

// As returns the absorption coefficient, which may be modified by the
// caller, for example by a radiation model.
func (t *Thermo) As() *Field { return t.mix.Property(VarAbsorption) }

// T returns the temperature. It must not be modified.
func (t *Thermo) T() *Field { return t.mix.Property(VarT) }

// Density returns the Reynolds-averaged density. It must not be modified.
func (t *Thermo) Density() *Field { return t.mix.Property(VarDensity) }

// Viscosity returns the Favre-averaged dynamic viscosity. It must not be modified.
func (t *Thermo) Viscosity() *Field { return t.mix.Property(VarViscosity) }

// Diffusivity returns the Favre-averaged thermal diffusivity. It must not be modified.
func (t *Thermo) Diffusivity() *Field { return t.mix.Property(VarDiffusivity) }

// Defect returns the enthalpy defect as of the last bulk refresh.
// It must not be modified.
func (t *Thermo) Defect() *Field { return t.defect }

// MassFraction returns the mass fraction of species i. It must not be modified.
func (t *Thermo) MassFraction(i int) *Field { return t.mix.MassFraction(i) }

// Species returns the names of the species.
func (t *Thermo) Species() []string { return t.cfg.Species }

// Config returns the configuration of t.
func (t *Thermo) Config() Config { return t.cfg }

// Mesh returns the mesh t was created with.
func (t *Thermo) Mesh() Mesh { return t.mesh }

// Table returns the flamelet table that t queries.
func (t *Thermo) Table() Table { return t.table }

// Classification returns the boundary policies of t.
func (t *Thermo) Classification() PatchClassification { return t.classification }

// Stats returns the number of refreshes performed by Correct. The
// refreshes performed by NewThermo are not included.
func (t *Thermo) Stats() Stats { return t.stats }

// Counters returns the number of calls to Correct since the last
// bulk and species refreshes.
func (t *Thermo) Counters() (bulk, species int) { return t.bulk.count, t.species.count }
