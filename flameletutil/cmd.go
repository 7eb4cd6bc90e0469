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

// Package flameletutil contains the command-line interface and configuration
// handling for the flamelet closure engine.
package flameletutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/flamelet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to flamelet.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Case",
			usage: `
              Case is the path to the TOML file describing the mesh, its
              boundary patches, and the initial mixture fraction, variance,
              scalar dissipation rate, and enthalpy fields. It can include
              environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Table",
			usage: `
              Table is the path to the netCDF flamelet table. It can include
              environment variables and can be an http:// or https:// URL,
              in which case the table is downloaded before the run starts.`,
			shorthand:  "t",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags(), tableCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired netCDF output file location.
              It can include environment variables.`,
			defaultVal: "flamelet_output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the logfile
              will be saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be included in the
              output file. It can include environment variables. Each entry is an
              expression over the model variables (T, rho, mu, alpha, as, Z, Zvar,
              chi_st, H, defect, and the species names), for example
              {"T":"T", "Tc":"T - 273.15"}.`,
			defaultVal: map[string]string{"T": "T", "rho": "rho", "Z": "Z"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "NumIterations",
			usage: `
              NumIterations is the number of outer-solver iterations to run.`,
			shorthand:  "n",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AdiabaticMode",
			usage: `
              AdiabaticMode specifies that the enthalpy follows the adiabatic
              mixing line between the fuel and oxidizer streams, so that the
              enthalpy defect is zero.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "PropertyUpdate",
			usage: `
              PropertyUpdate is the number of iterations between refreshes of
              temperature, density, viscosity, thermal diffusivity, and the
              absorption coefficient.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "MassFractionsUpdate",
			usage: `
              MassFractionsUpdate is the number of iterations between refreshes
              of the species mass fractions.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "HFuel",
			usage: `
              HFuel is the enthalpy of the fuel stream [J/kg].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "HOxidizer",
			usage: `
              HOxidizer is the enthalpy of the oxidizer stream [J/kg].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "Species",
			usage: `
              Species lists the species to track. They must match the species
              of the flamelet table, in the same order. If Species is empty,
              all of the species in the table are tracked.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "ShowFlamelet",
			usage: `
              ShowFlamelet turns on a summary of each property refresh in the log.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ShowFlameletLibrary",
			usage: `
              ShowFlameletLibrary turns on a description of the flamelet table
              in the log when the simulation starts.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "CacheSize",
			usage: `
              CacheSize is the number of table query results to hold in memory.
              Set it to 0 to query the table directly.`,
			defaultVal: 10000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), infoCmd.Flags()},
		},
		{
			name: "MetricsAddress",
			usage: `
              MetricsAddress is the address (for example ":9090") where
              refresh, query, and fault counts are served in the Prometheus
              format at the /metrics path while the simulation runs. If it
              is empty, no metrics are served.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FLAMELET")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(tableCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("flamelet: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "flamelet",
	Short: "A presumed-PDF flamelet closure for non-premixed combustion.",
	Long: `flamelet computes the temperature, transport properties, and species
mass fractions of a turbulent non-premixed flame from a precomputed flamelet
table, given the mean mixture fraction, its variance, the stoichiometric
scalar dissipation rate, and the enthalpy in every cell.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'FLAMELET_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of flamelet.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("flamelet v%s\n", flamelet.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the closure.",
	Long: `run loads a case and a flamelet table, iterates the closure for
NumIterations iterations, and writes the OutputVariables to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ThermoConfig(Cfg)
		if err != nil {
			return err
		}
		out, err := outputsConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd,
			out.Log,
			out.File,
			out.Vars,
			os.ExpandEnv(Cfg.GetString("Case")),
			os.ExpandEnv(Cfg.GetString("Table")),
			Cfg.GetInt("CacheSize"),
			Cfg.GetInt("NumIterations"),
			os.ExpandEnv(Cfg.GetString("MetricsAddress")),
			cfg,
		)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the closure configuration.",
	Long: `info loads a case and a flamelet table, checks that they are compatible
with the configuration, and prints a summary of the configuration and the
boundary patch classification.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ThermoConfig(Cfg)
		if err != nil {
			return err
		}
		return Info(cmd.OutOrStdout(),
			os.ExpandEnv(Cfg.GetString("Case")),
			os.ExpandEnv(Cfg.GetString("Table")),
			Cfg.GetInt("CacheSize"),
			cfg,
		)
	},
	DisableAutoGenTag: true,
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Describe a flamelet table.",
	Long:  `table prints the axes and species of the netCDF flamelet table at Table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return DescribeTable(cmd.OutOrStdout(), os.ExpandEnv(Cfg.GetString("Table")))
	},
	DisableAutoGenTag: true,
}
