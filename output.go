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
	"math"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/cdf"
)

// Outputter is a holder for output parameters.
//
// fileName contains the path where the output will be saved.
//
// outputVariables maps the names of the variables for which data
// should be returned to expressions that define how the
// requested data should be calculated. These expressions can utilize variables
// built into the model, other output variables, and functions.
//
// Functions are defined in the outputFunctions variable.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	expressions     map[string]*govaluate.EvaluableExpression
	order           []string // output variables in evaluation order
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
}

func oneArg(name string, f func(float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("flamelet: got %d arguments for function '%s', but needs 1", len(arg), name)
		}
		return f(arg[0].(float64)), nil
	}
}

func twoArgs(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
	return func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 2 {
			return nil, fmt.Errorf("flamelet: got %d arguments for function '%s', but needs 2", len(arg), name)
		}
		return f(arg[0].(float64), arg[1].(float64)), nil
	}
}

// NewOutputter initializes a new Outputter holder and adds a set of default
// output functions: 'exp(x)', 'log(x)', 'sqrt(x)', 'pow(x, y)',
// 'min(x, y)', and 'max(x, y)'.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	funcs := map[string]govaluate.ExpressionFunction{
		"exp":  oneArg("exp", math.Exp),
		"log":  oneArg("log", math.Log),
		"sqrt": oneArg("sqrt", math.Sqrt),
		"pow":  twoArgs("pow", math.Pow),
		"min":  twoArgs("min", math.Min),
		"max":  twoArgs("max", math.Max),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	o := &Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
		outputFunctions: funcs,
	}
	for _, name := range sortedKeys(outputVariables) {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(outputVariables[name], funcs)
		if err != nil {
			return nil, fmt.Errorf("flamelet: output variable %s: %v", name, err)
		}
		o.expressions[name] = expr
	}
	if err := o.sortVariables(); err != nil {
		return nil, err
	}
	return o, nil
}

// sortVariables orders the output variables so that each is evaluated after
// any other output variables its expression refers to, and records the
// model variables that the expressions need. An expression that refers to
// its own name, such as "T": "T", refers to the model variable.
func (o *Outputter) sortVariables() error {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int)
	model := make(map[string]struct{})
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("flamelet: output variable %s is defined in terms of itself", name)
		case visited:
			return nil
		}
		state[name] = visiting
		for _, v := range o.expressions[name].Vars() {
			if _, ok := o.expressions[v]; ok && v != name {
				if err := visit(v); err != nil {
					return err
				}
			} else {
				model[v] = struct{}{}
			}
		}
		state[name] = visited
		o.order = append(o.order, name)
		return nil
	}
	for _, name := range sortedKeys(o.outputVariables) {
		if err := visit(name); err != nil {
			return err
		}
	}
	for v := range model {
		o.modelVariables = append(o.modelVariables, v)
	}
	sort.Strings(o.modelVariables)
	return nil
}

// checkOutputNames checks that output variable names are valid
// netCDF variable names.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		if !valid.MatchString(key) {
			return fmt.Errorf("flamelet: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OutputOptions returns the names of the variables that can be used in
// output expressions, along with their descriptions and units.
func (t *Thermo) OutputOptions() (names, descriptions, units []string) {
	add := func(f *Field, desc string) {
		names = append(names, f.Name)
		descriptions = append(descriptions, desc)
		units = append(units, f.Units)
	}
	add(t.state.Z, "Mean mixture fraction")
	add(t.state.Zvar, "Mixture fraction variance")
	add(t.state.ChiSt, "Stoichiometric scalar dissipation rate")
	add(t.state.H, "Mixture enthalpy")
	add(t.defect, "Enthalpy defect")
	add(t.T(), "Temperature")
	add(t.Density(), "Reynolds-averaged density")
	add(t.Viscosity(), "Favre-averaged dynamic viscosity")
	add(t.Diffusivity(), "Favre-averaged thermal diffusivity")
	add(t.As(), "Planck absorption coefficient")
	for i, s := range t.cfg.Species {
		names = append(names, s)
		descriptions = append(descriptions, fmt.Sprintf("Mass fraction of %s", s))
		units = append(units, t.MassFraction(i).Units)
	}
	return
}

// variables returns the fields that hold the model variables, by name.
func (t *Thermo) variables() map[string]*Field {
	v := map[string]*Field{
		VarZ:           t.state.Z,
		VarZvar:        t.state.Zvar,
		VarChiSt:       t.state.ChiSt,
		VarH:           t.state.H,
		VarDefect:      t.defect,
		VarT:           t.T(),
		VarDensity:     t.Density(),
		VarViscosity:   t.Viscosity(),
		VarDiffusivity: t.Diffusivity(),
		VarAbsorption:  t.As(),
	}
	for i, s := range t.cfg.Species {
		v[s] = t.MassFraction(i)
	}
	return v
}

// CheckOutputVars ensures the output variables can be calculated.
func (o *Outputter) CheckOutputVars() StepManipulator {
	return func(s *Simulation) error {
		vars := s.Thermo.variables()
		for _, v := range o.modelVariables {
			if _, ok := vars[v]; !ok {
				return fmt.Errorf("flamelet: undefined variable name '%s'", v)
			}
		}
		return nil
	}
}

// Results returns the cell values of the output variables of o.
func (t *Thermo) Results(o *Outputter) (map[string][]float64, error) {
	vars := t.variables()
	model := make([]*Field, len(o.modelVariables))
	for i, v := range o.modelVariables {
		f, ok := vars[v]
		if !ok {
			return nil, fmt.Errorf("flamelet: undefined variable name '%s'", v)
		}
		model[i] = f
	}
	n := t.mesh.NumCells()
	results := make(map[string][]float64, len(o.order))
	for _, name := range o.order {
		results[name] = make([]float64, n)
	}
	params := make(map[string]interface{}, len(model)+len(o.order))
	for c := 0; c < n; c++ {
		for i, v := range o.modelVariables {
			params[v] = model[i].Internal[c]
		}
		for _, name := range o.order {
			val, err := o.expressions[name].Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("flamelet: evaluating output variable %s in cell %d: %v", name, c, err)
			}
			f, ok := val.(float64)
			if !ok {
				return nil, fmt.Errorf("flamelet: output variable %s is not numeric", name)
			}
			results[name][c] = f
			params[name] = f
		}
	}
	return results, nil
}

// Output returns a function that writes the output variables of o
// to a netCDF file.
func (o *Outputter) Output() StepManipulator {
	return func(s *Simulation) error {
		results, err := s.Thermo.Results(o)
		if err != nil {
			return err
		}
		n := s.Thermo.mesh.NumCells()

		h := cdf.NewHeader([]string{"cell"}, []int{n})
		for _, v := range o.order {
			h.AddVariable(v, []string{"cell"}, []float64{0})
			h.AddAttribute(v, "description", o.outputVariables[v])
		}
		h.AddAttribute("", "mode", s.Thermo.mode())
		h.AddAttribute("", "species", strings.Join(s.Thermo.cfg.Species, ","))
		h.Define()
		for _, err := range h.Check() {
			return fmt.Errorf("flamelet: creating output file: %v", err)
		}

		ff, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("flamelet: creating output file: %v", err)
		}
		f, err := cdf.Create(ff, h)
		if err != nil {
			ff.Close()
			return fmt.Errorf("flamelet: creating output file: %v", err)
		}
		for _, v := range o.order {
			w := f.Writer(v, []int{0}, []int{n})
			if _, err := w.Write(results[v]); err != nil {
				ff.Close()
				return fmt.Errorf("flamelet: writing variable %s to output file: %v", v, err)
			}
		}
		return ff.Close()
	}
}
