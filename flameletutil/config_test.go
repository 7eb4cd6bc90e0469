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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lnashier/viper"
)

func TestThermoConfig(t *testing.T) {
	newCfg := func() *viper.Viper {
		cfg := viper.New()
		cfg.Set("AdiabaticMode", false)
		cfg.Set("PropertyUpdate", 2)
		cfg.Set("MassFractionsUpdate", 5)
		cfg.Set("HFuel", -4.e4)
		cfg.Set("HOxidizer", 1.e3)
		cfg.Set("Species", []string{"fuel", "$FLAMELET_TEST_SPECIES"})
		cfg.Set("NumIterations", 10)
		cfg.Set("CacheSize", 0)
		return cfg
	}
	os.Setenv("FLAMELET_TEST_SPECIES", "oxidizer")
	defer os.Unsetenv("FLAMELET_TEST_SPECIES")

	c, err := ThermoConfig(newCfg())
	if err != nil {
		t.Fatal(err)
	}
	if c.AdiabaticMode || c.PropertyUpdate != 2 || c.MassFractionsUpdate != 5 ||
		c.HFuel != -4.e4 || c.HOxidizer != 1.e3 {
		t.Errorf("wrong configuration %+v", c)
	}
	if !reflect.DeepEqual(c.Species, []string{"fuel", "oxidizer"}) {
		t.Errorf("species: %v", c.Species)
	}

	for _, test := range []struct {
		name string
		val  interface{}
	}{
		{name: "PropertyUpdate", val: 0},
		{name: "MassFractionsUpdate", val: -1},
		{name: "CacheSize", val: -1},
		{name: "NumIterations", val: 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := newCfg()
			cfg.Set(test.name, test.val)
			_, err := ThermoConfig(cfg)
			if err == nil || !strings.Contains(err.Error(), test.name) {
				t.Errorf("error should name %s, have %v", test.name, err)
			}
		})
	}
}

func TestStringMap(t *testing.T) {
	want := map[string]string{"T": "T", "Tc": "T - 273.15"}
	for _, test := range []struct {
		name    string
		val     interface{}
		want    map[string]string
		wantErr bool
	}{
		{name: "json", val: `{"T":"T","Tc":"T - 273.15"}`, want: want},
		{name: "map", val: map[string]string{"T": "T", "Tc": "T - 273.15"}, want: want},
		{name: "blank", val: "  "},
		{name: "bad json", val: `{"T":`, wantErr: true},
		{name: "json list", val: `["T"]`, wantErr: true},
		{name: "number", val: 3, wantErr: true},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("OutputVariables", test.val)
			have, err := stringMap(cfg, "OutputVariables")
			if (err != nil) != test.wantErr {
				t.Fatalf("error: %v", err)
			}
			if len(have) != len(test.want) || (len(have) > 0 && !reflect.DeepEqual(have, test.want)) {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}

	t.Run("interface", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("OutputVariables", map[string]interface{}{"T": "T"})
		have, err := stringMap(cfg, "OutputVariables")
		if err != nil {
			t.Fatal(err)
		}
		// Keys set from generic maps are not case sensitive.
		if have["t"] != "T" && have["T"] != "T" {
			t.Errorf("have %v", have)
		}
	})

	t.Run("unset", func(t *testing.T) {
		have, err := stringMap(viper.New(), "OutputVariables")
		if err != nil || len(have) != 0 {
			t.Errorf("have %v, %v", have, err)
		}
	})
}

func TestOutputsConfig(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("FLAMELET_TEST_DIR", dir)
	os.Setenv("FLAMELET_TEST_OFFSET", "273.15")
	defer os.Unsetenv("FLAMELET_TEST_DIR")
	defer os.Unsetenv("FLAMELET_TEST_OFFSET")

	newCfg := func() *viper.Viper {
		cfg := viper.New()
		cfg.Set("OutputFile", "$FLAMELET_TEST_DIR/out.nc")
		cfg.Set("OutputVariables", map[string]string{"Tc": "T -\r\n$FLAMELET_TEST_OFFSET"})
		return cfg
	}

	o, err := outputsConfig(newCfg())
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "out.nc"); o.File != want {
		t.Errorf("output file: have %s, want %s", o.File, want)
	}
	if want := filepath.Join(dir, "out.log"); o.Log != want {
		t.Errorf("log file: have %s, want %s", o.Log, want)
	}
	if want := map[string]string{"Tc": "T - 273.15"}; !reflect.DeepEqual(o.Vars, want) {
		t.Errorf("variables: have %v, want %v", o.Vars, want)
	}

	cfg := newCfg()
	cfg.Set("LogFile", "my.log")
	if o, err := outputsConfig(cfg); err != nil || o.Log != "my.log" {
		t.Errorf("log file: have %+v, %v", o, err)
	}

	for _, test := range []struct {
		name string
		key  string
		val  interface{}
	}{
		{name: "no output file", key: "OutputFile", val: ""},
		{name: "missing directory", key: "OutputFile", val: filepath.Join(dir, "missing", "out.nc")},
		{name: "no variables", key: "OutputVariables", val: ""},
		{name: "bad variables", key: "OutputVariables", val: `{"Tc":`},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := newCfg()
			cfg.Set(test.key, test.val)
			if _, err := outputsConfig(cfg); err == nil {
				t.Error("should be an error")
			}
		})
	}
}
