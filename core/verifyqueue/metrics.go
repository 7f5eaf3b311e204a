// Copyright 2024 The go-ferrite Authors
// This file is part of the go-ferrite library.
//
// The go-ferrite library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ferrite library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ferrite library. If not, see <http://www.gnu.org/licenses/>.

package verifyqueue

import gometrics "github.com/rcrowley/go-metrics"

// queueMetrics instruments a Pipeline with rcrowley/go-metrics counters and
// gauges. The counters are bumped at the import, rejection and verification
// call sites; the per-stage gauges are refreshed only when QueueInfo is
// called, and the active-verifier gauge only when the pool is rescaled.
// Entirely optional — a nil *queueMetrics is a no-op receiver for the
// update methods below, not an error.
type queueMetrics struct {
	imported gometrics.Counter
	rejected gometrics.Counter
	verified gometrics.Counter

	unverifiedGauge gometrics.Gauge
	verifyingGauge  gometrics.Gauge
	verifiedGauge   gometrics.Gauge
	activeVerifiers gometrics.Gauge
}

// newQueueMetrics registers a fresh set of metrics under r, namespaced by
// prefix (e.g. "blocks/queue/" or "headers/queue/").
func newQueueMetrics(r gometrics.Registry, prefix string) *queueMetrics {
	if r == nil {
		return nil
	}
	m := &queueMetrics{
		imported:        gometrics.NewRegisteredCounter(prefix+"imported", r),
		rejected:        gometrics.NewRegisteredCounter(prefix+"rejected", r),
		verified:        gometrics.NewRegisteredCounter(prefix+"verified", r),
		unverifiedGauge: gometrics.NewRegisteredGauge(prefix+"unverified", r),
		verifyingGauge:  gometrics.NewRegisteredGauge(prefix+"verifying", r),
		verifiedGauge:   gometrics.NewRegisteredGauge(prefix+"verified_queue", r),
		activeVerifiers: gometrics.NewRegisteredGauge(prefix+"active_verifiers", r),
	}
	return m
}

func (m *queueMetrics) updateQueueInfo(info QueueInfo) {
	if m == nil {
		return
	}
	m.unverifiedGauge.Update(int64(info.UnverifiedQueueSize))
	m.verifyingGauge.Update(int64(info.VerifyingQueueSize))
	m.verifiedGauge.Update(int64(info.VerifiedQueueSize))
}

func (m *queueMetrics) updateActiveVerifiers(n int) {
	if m == nil {
		return
	}
	m.activeVerifiers.Update(int64(n))
}
