// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package membership

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opLabels = []string{"operation"}

var latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// metrics holds the Manager's operation counters and duration
// histograms, one instance per Manager so that tests constructing
// multiple Managers don't collide on the default Prometheus registry.
type metrics struct {
	opDurations *prometheus.HistogramVec
	opErrors    *prometheus.CounterVec
	rowsStaged  *prometheus.CounterVec
	rowsCommitted prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		opDurations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "membership_index_op_duration_seconds",
			Help:    "the length of time an index manager operation took to complete",
			Buckets: latencyBuckets,
		}, opLabels),
		opErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_index_op_errors_total",
			Help: "the number of times an index manager operation returned a store error",
		}, opLabels),
		rowsStaged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "membership_index_rows_staged_total",
			Help: "the number of staging rows written, by operation kind",
		}, opLabels),
		rowsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "membership_index_rows_committed_total",
			Help: "the number of staging rows drained into the committed relation",
		}),
	}
}

// observe records the duration of op and, if err is non-nil, bumps the
// error counter for op. It returns err unchanged so that callers can
// return its result directly.
func (m *metrics) observe(op string, seconds float64, err error) error {
	m.opDurations.WithLabelValues(op).Observe(seconds)
	if err != nil {
		m.opErrors.WithLabelValues(op).Inc()
	}
	return err
}
