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
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/flamelet"
	"github.com/spatialmodel/flamelet/science/table/cachedtable"
	"github.com/spatialmodel/flamelet/science/table/gridtable"
	"github.com/spf13/cobra"
)

// loadTable reads the netCDF flamelet table at tablePath, downloading it
// first if it is a URL. If cacheSize > 0, query results are cached.
func loadTable(tablePath string, cacheSize int, log logrus.FieldLogger) (flamelet.Table, error) {
	if tablePath == "" {
		return nil, fmt.Errorf("you need to specify a flamelet table configuration variable (for example: Table=\"table.nc\")")
	}
	p, err := maybeDownload(tablePath, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("flamelet: problem opening table: %v", err)
	}
	defer f.Close()
	tab, err := gridtable.Read(f)
	if err != nil {
		return nil, fmt.Errorf("flamelet: problem loading table %s: %v", p, err)
	}
	if cacheSize > 0 {
		return cachedtable.New(tab, cacheSize), nil
	}
	return tab, nil
}

// loadCase reads the TOML case file at casePath and creates the mesh,
// state, and mixture it describes.
func loadCase(casePath string, cfg *flamelet.Config) (*flamelet.UnstructuredMesh, *flamelet.State, *flamelet.FieldMixture, error) {
	if casePath == "" {
		return nil, nil, nil, fmt.Errorf("you need to specify a case configuration variable (for example: Case=\"case.toml\")")
	}
	f, err := os.Open(casePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("flamelet: problem opening case: %v", err)
	}
	defer f.Close()
	c, err := flamelet.ReadCase(f)
	if err != nil {
		return nil, nil, nil, err
	}
	return c.Build(cfg)
}

// newThermo loads the table and the case and creates the closure engine.
func newThermo(casePath, tablePath string, cacheSize int, cfg *flamelet.Config, log logrus.FieldLogger) (*flamelet.Thermo, error) {
	tab, err := loadTable(tablePath, cacheSize, log)
	if err != nil {
		return nil, err
	}
	c := *cfg
	if len(c.Species) == 0 {
		c.Species = tab.Species()
	}
	m, s, mix, err := loadCase(casePath, &c)
	if err != nil {
		return nil, err
	}
	return flamelet.NewThermo(c, m, tab,
		flamelet.WithLogger(log),
		flamelet.WithState(s),
		flamelet.WithMixture(mix),
	)
}

// Run runs the closure.
//
// cmd is the cobra.Command instance where Run is called from. Log messages
// are written both to its output and to LogFile.
//
// OutputFile is the path to the netCDF output file, and OutputVariables
// specifies which model variables should be included in it.
//
// CaseFile and TableFile are the paths to the TOML case and the netCDF
// flamelet table. TableFile can be an http(s) URL.
//
// CacheSize is the number of table query results to hold in memory, or 0
// to query the table directly.
//
// NumIterations is the number of iterations to run.
//
// If MetricsAddress is not empty, metrics are served at MetricsAddress/metrics
// while the closure runs.
func Run(cmd *cobra.Command, LogFile, OutputFile string, OutputVariables map[string]string,
	CaseFile, TableFile string, CacheSize, NumIterations int, MetricsAddress string,
	cfg *flamelet.Config) error {

	startTime := time.Now()

	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("flamelet: problem creating log file: %v", err)
	}
	defer logfile.Close()
	mw := io.MultiWriter(cmd.OutOrStdout(), logfile)

	log := logrus.New()
	log.Out = mw
	if cfg.ShowFlamelet {
		log.Level = logrus.DebugLevel
	}

	if MetricsAddress != "" {
		srv := serveMetrics(MetricsAddress, log)
		defer srv.Close()
	}

	o, err := flamelet.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}
	log.Info("Parsed output variable expressions")

	t, err := newThermo(CaseFile, TableFile, CacheSize, cfg, log)
	if err != nil {
		return err
	}

	s := &flamelet.Simulation{
		Thermo: t,
		InitFuncs: []flamelet.StepManipulator{
			o.CheckOutputVars(),
		},
		RunFuncs: []flamelet.StepManipulator{
			flamelet.Correct(),
			flamelet.Log(mw),
			flamelet.IterationLimit(NumIterations),
		},
		CleanupFuncs: []flamelet.StepManipulator{
			o.Output(),
		},
	}
	if err = s.Init(); err != nil {
		return err
	}
	if err = s.Run(); err != nil {
		return err
	}
	if c, ok := t.Table().(*cachedtable.Table); ok {
		log.WithFields(logrus.Fields{
			"requests": c.Requests(),
			"misses":   c.Misses(),
		}).Info("flamelet table cache")
	}
	log.WithField("walltime", time.Since(startTime)).Info("flamelet closure completed")
	return nil
}

// serveMetrics serves the Prometheus metrics registry at address.
func serveMetrics(address string, log logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: address, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("address", address).Errorf("metrics server: %v", err)
		}
	}()
	return srv
}

// Info loads the case and the table, checks that they are compatible
// with cfg, and writes a summary of the configuration to w.
func Info(w io.Writer, CaseFile, TableFile string, CacheSize int, cfg *flamelet.Config) error {
	log := logrus.New()
	log.Out = w
	t, err := newThermo(CaseFile, TableFile, CacheSize, cfg, log)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, t.Summary())
	return err
}

// DescribeTable writes a description of the flamelet table at TableFile to w.
func DescribeTable(w io.Writer, TableFile string) error {
	log := logrus.New()
	log.Out = w
	tab, err := loadTable(TableFile, 0, log)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, tab.(fmt.Stringer).String())
	return err
}
