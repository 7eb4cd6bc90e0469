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

package flameletutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/flamelet"
	"github.com/spf13/cast"
)

// ThermoConfig unmarshals a viper configuration for the closure engine.
func ThermoConfig(cfg *viper.Viper) (*flamelet.Config, error) {
	c := flamelet.Config{
		AdiabaticMode:       cfg.GetBool("AdiabaticMode"),
		PropertyUpdate:      cfg.GetInt("PropertyUpdate"),
		MassFractionsUpdate: cfg.GetInt("MassFractionsUpdate"),
		HFuel:               cfg.GetFloat64("HFuel"),
		HOxidizer:           cfg.GetFloat64("HOxidizer"),
		Species:             expandEnv(cfg.GetStringSlice("Species")),
		ShowFlamelet:        cfg.GetBool("ShowFlamelet"),
		ShowFlameletLibrary: cfg.GetBool("ShowFlameletLibrary"),
	}

	for _, lim := range []struct {
		name  string
		least int
	}{
		{"PropertyUpdate", 1},
		{"MassFractionsUpdate", 1},
		{"NumIterations", 1},
		{"CacheSize", 0},
	} {
		if v := cfg.GetInt(lim.name); v < lim.least {
			return nil, fmt.Errorf("flamelet: %s must be at least %d, not %d", lim.name, lim.least, v)
		}
	}
	return &c, nil
}

// runOutputs holds where the run command writes its results.
type runOutputs struct {
	// File is the netCDF output file.
	File string
	// Log is the log file. It defaults to File with a .log extension.
	Log string
	// Vars maps output names to expressions of the closure fields.
	Vars map[string]string
}

// outputsConfig reads the OutputFile, LogFile and OutputVariables
// settings, expanding environment variables in all of them.
func outputsConfig(cfg *viper.Viper) (*runOutputs, error) {
	o := &runOutputs{File: os.ExpandEnv(cfg.GetString("OutputFile"))}
	if o.File == "" {
		return nil, fmt.Errorf("flamelet: OutputFile is not set")
	}
	if _, err := os.Stat(filepath.Dir(o.File)); err != nil {
		return nil, fmt.Errorf("flamelet: OutputFile directory: %w", err)
	}
	o.Log = os.ExpandEnv(cfg.GetString("LogFile"))
	if o.Log == "" {
		o.Log = strings.TrimSuffix(o.File, filepath.Ext(o.File)) + ".log"
	}

	vars, err := stringMap(cfg, "OutputVariables")
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("flamelet: OutputVariables is empty")
	}
	// Expressions may span lines in a configuration file.
	flatten := strings.NewReplacer("\r\n", " ", "\n", " ")
	o.Vars = make(map[string]string, len(vars))
	for name, expr := range vars {
		o.Vars[os.ExpandEnv(name)] = os.ExpandEnv(flatten.Replace(expr))
	}
	return o, nil
}

// expandEnv returns a copy of s with environment variables expanded.
func expandEnv(s []string) []string {
	o := make([]string, len(s))
	for i, v := range s {
		o[i] = os.ExpandEnv(v)
	}
	return o
}

// stringMap reads a map setting, which is a JSON object
// when it is set from a command-line flag or environment variable.
func stringMap(cfg *viper.Viper, name string) (map[string]string, error) {
	switch v := cfg.Get(name).(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		var o map[string]string
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, fmt.Errorf("flamelet: parsing %s as a JSON object: %w", name, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("flamelet: %s must be a map of names to expressions, not %T", name, v)
	}
}
