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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// refreshesTotal counts completed refreshes.
	// Labels: pass (bulk, species)
	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flamelet",
		Name:      "refreshes_total",
		Help:      "Total completed closure refreshes",
	}, []string{"pass"})

	// refreshDuration measures the wall time of each refresh.
	// Labels: pass (bulk, species)
	refreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flamelet",
		Name:      "refresh_duration_seconds",
		Help:      "Closure refresh wall time in seconds",
		Buckets:   prometheus.ExponentialBuckets(1.e-4, 4, 10),
	}, []string{"pass"})

	// lookupsTotal counts table queries, including failed ones.
	lookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flamelet",
		Name:      "table_lookups_total",
		Help:      "Total flamelet table queries",
	})

	// faultsTotal counts reported faults.
	// Labels: kind (configuration, lookup, consistency, other)
	faultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flamelet",
		Name:      "faults_total",
		Help:      "Total faults reported by the closure engine",
	}, []string{"kind"})
)

const (
	bulkPass    = "bulk"
	speciesPass = "species"
)
