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
	"sort"
	"strings"
)

// PatchPolicy determines how the engine treats the boundary values of
// a classified variable on a patch.
type PatchPolicy int

const (
	// FixedValue faces are prescribed by the user. The engine never
	// writes them; they are read as table query inputs.
	FixedValue PatchPolicy = iota

	// Derived faces are computed by the engine the same way as
	// interior cells.
	Derived

	// Coupled faces receive their values from another region or
	// partition. The engine neither writes nor queries them.
	Coupled
)

func (p PatchPolicy) String() string {
	switch p {
	case FixedValue:
		return "FixedValue"
	case Derived:
		return "Derived"
	case Coupled:
		return "Coupled"
	default:
		return fmt.Sprintf("PatchPolicy(%d)", int(p))
	}
}

// PolicyNames maps lower-case boundary condition type names to the
// policy that applies to them.
var PolicyNames = map[string]PatchPolicy{
	"fixedvalue":        FixedValue,
	"uniformfixedvalue": FixedValue,
	"fixed":             FixedValue,
	"dirichlet":         FixedValue,
	"zerogradient":      Derived,
	"calculated":        Derived,
	"derived":           Derived,
	"extrapolated":      Derived,
	"outflow":           Derived,
	"coupled":           Coupled,
	"processor":         Coupled,
	"cyclic":            Coupled,
	"mapped":            Coupled,
	"regioncoupled":     Coupled,
}

// ParsePolicy returns the policy for the boundary condition type name.
// Matching is case insensitive.
func ParsePolicy(name string) (PatchPolicy, error) {
	p, ok := PolicyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown boundary condition type '%s'", name)
	}
	return p, nil
}

// policyRule describes what the engine does to a face under a policy.
type policyRule struct {
	owned bool // the engine writes the face value
	query bool // the face state is sent to the table
}

var policyRules = map[PatchPolicy]policyRule{
	FixedValue: {owned: false, query: true},
	Derived:    {owned: true, query: true},
	Coupled:    {owned: false, query: false},
}

// ClassifiedVariables are the variables whose boundary treatment
// depends on the patch type.
var ClassifiedVariables = []string{VarT, VarH, VarZ}

// PatchClassification holds the resolved policy of every classified
// variable on every patch, in patch order.
type PatchClassification map[string][]PatchPolicy

// Classify builds the classification of the patches in m. Every patch must
// name a type for each of T, H, and Z.
func Classify(m Mesh) (PatchClassification, error) {
	patches := m.Patches()
	pc := make(PatchClassification, len(ClassifiedVariables))
	for _, v := range ClassifiedVariables {
		pc[v] = make([]PatchPolicy, len(patches))
		for i, p := range patches {
			name, ok := p.Types[v]
			if !ok {
				return nil, configFault("patch %s has no boundary type for %s", p.Name, v)
			}
			policy, err := ParsePolicy(name)
			if err != nil {
				return nil, configFault("patch %s, variable %s: %v", p.Name, v, err)
			}
			pc[v][i] = policy
		}
	}
	return pc, nil
}

func (pc PatchClassification) rule(v string, patch int) policyRule {
	return policyRules[pc[v][patch]]
}

// Policy returns the policy of variable v on the patch with index patch.
func (pc PatchClassification) Policy(v string, patch int) PatchPolicy {
	return pc[v][patch]
}

// hasCoupled reports whether any variable is coupled on any patch.
func (pc PatchClassification) hasCoupled() bool {
	for _, policies := range pc {
		for _, p := range policies {
			if p == Coupled {
				return true
			}
		}
	}
	return false
}

// Summary returns a one-line description of the classification of
// the patches in m, for example "inlet(H=FixedValue T=FixedValue Z=FixedValue)".
func (pc PatchClassification) Summary(m Mesh) string {
	vars := append([]string(nil), ClassifiedVariables...)
	sort.Strings(vars)
	var parts []string
	for i, p := range m.Patches() {
		s := make([]string, len(vars))
		for j, v := range vars {
			s[j] = fmt.Sprintf("%s=%v", v, pc[v][i])
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", p.Name, strings.Join(s, " ")))
	}
	return strings.Join(parts, " ")
}
