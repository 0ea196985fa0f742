// Copyright (C) 2025 wultra
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes the Prometheus instrumentation for every core
// operation: signature compute/verify, activation transitions, token
// digests, status-blob codec calls, and non-personalized message
// encrypt/decrypt. A Collector is safe to share across goroutines; a nil
// *Collector is valid and every method on it is then a no-op, so callers
// that don't care about metrics can pass nil straight through.
//
// The core packages (signature, token, statusblob, e2e, activation) call
// the package-level Observe* functions below directly, against a
// process-wide default collector, the same way they use the package-level
// logging functions in internal/logger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powerauth"

// Collector holds every metric this repository emits, registered against
// its own private Registry so embedding applications don't collide with
// the default global registry.
type Collector struct {
	Registry *prometheus.Registry

	SignatureOperations   *prometheus.CounterVec
	ActivationTransitions *prometheus.CounterVec
	TokenDigests          *prometheus.CounterVec
	StatusBlobOperations  *prometheus.CounterVec
	E2EOperations         *prometheus.CounterVec
	RngRetryExhaustions   prometheus.Counter

	OperationDuration *prometheus.HistogramVec
}

// New constructs a Collector with all metrics registered against a fresh
// private registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	return newWithRegistry(reg)
}

func newWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,

		SignatureOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "signature",
			Name:      "operations_total",
			Help:      "Signature compute/verify calls by protocol family and factor count.",
		}, []string{"operation", "family", "factors"}),

		ActivationTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "activation",
			Name:      "transitions_total",
			Help:      "Activation ceremony state transitions by outcome.",
		}, []string{"side", "outcome"}),

		TokenDigests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "digests_total",
			Help:      "Token digest compute/verify calls.",
		}, []string{"operation", "result"}),

		StatusBlobOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "statusblob",
			Name:      "operations_total",
			Help:      "Status blob encode/decode calls.",
		}, []string{"operation", "result"}),

		E2EOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2e",
			Name:      "operations_total",
			Help:      "Non-personalized encrypt/decrypt calls.",
		}, []string{"operation", "result"}),

		RngRetryExhaustions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "e2e",
			Name:      "rng_retry_exhausted_total",
			Help:      "Times the ad-hoc/MAC index retry loop ran out of attempts.",
		}),

		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of core cryptographic operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Handler returns an http.Handler serving this collector's registry in the
// Prometheus exposition format, suitable for mounting at the configured
// metrics path.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})
}

// ObserveSignature records one signature compute or verify call.
func (c *Collector) ObserveSignature(operation, family string, factors int) {
	if c == nil {
		return
	}
	c.SignatureOperations.WithLabelValues(operation, family, itoa(factors)).Inc()
}

// ObserveActivationTransition records one ceremony state transition.
func (c *Collector) ObserveActivationTransition(side, outcome string) {
	if c == nil {
		return
	}
	c.ActivationTransitions.WithLabelValues(side, outcome).Inc()
}

// ObserveTokenDigest records one token digest compute or verify call.
func (c *Collector) ObserveTokenDigest(operation, result string) {
	if c == nil {
		return
	}
	c.TokenDigests.WithLabelValues(operation, result).Inc()
}

// ObserveStatusBlob records one status-blob encode or decode call.
func (c *Collector) ObserveStatusBlob(operation, result string) {
	if c == nil {
		return
	}
	c.StatusBlobOperations.WithLabelValues(operation, result).Inc()
}

// ObserveE2E records one non-personalized encrypt or decrypt call.
func (c *Collector) ObserveE2E(operation, result string) {
	if c == nil {
		return
	}
	c.E2EOperations.WithLabelValues(operation, result).Inc()
}

// IncRngRetryExhaustion records one bounded-retry-loop exhaustion.
func (c *Collector) IncRngRetryExhaustion() {
	if c == nil {
		return
	}
	c.RngRetryExhaustions.Inc()
}

func itoa(n int) string {
	if n < 0 || n > 9 {
		return "n"
	}
	return string(rune('0' + n))
}

// std is the process-wide Collector the core packages instrument
// themselves against, so that signature.ComputeForCounter, token.ComputeDigest
// and friends emit metrics without every caller having to thread a Collector
// through. Embedding applications that want an isolated registry should
// call SetDefault with their own New() before the core starts handling
// traffic.
var std = New()

// SetDefault replaces the process-wide collector, e.g. with one built
// against the registry an embedding HTTP server already exposes.
func SetDefault(c *Collector) {
	std = c
}

// Default returns the process-wide collector.
func Default() *Collector {
	return std
}

// Handler returns an http.Handler serving the process-wide collector's
// registry, suitable for mounting at the configured metrics path.
func Handler() http.Handler {
	return std.Handler()
}

// ObserveSignature records one signature compute or verify call against
// the process-wide collector.
func ObserveSignature(operation, family string, factors int) {
	std.ObserveSignature(operation, family, factors)
}

// ObserveActivationTransition records one ceremony state transition
// against the process-wide collector.
func ObserveActivationTransition(side, outcome string) {
	std.ObserveActivationTransition(side, outcome)
}

// ObserveTokenDigest records one token digest call against the
// process-wide collector.
func ObserveTokenDigest(operation, result string) {
	std.ObserveTokenDigest(operation, result)
}

// ObserveStatusBlob records one status-blob codec call against the
// process-wide collector.
func ObserveStatusBlob(operation, result string) {
	std.ObserveStatusBlob(operation, result)
}

// ObserveE2E records one non-personalized encrypt/decrypt call against the
// process-wide collector.
func ObserveE2E(operation, result string) {
	std.ObserveE2E(operation, result)
}

// IncRngRetryExhaustion records one bounded-retry-loop exhaustion against
// the process-wide collector.
func IncRngRetryExhaustion() {
	std.IncRngRetryExhaustion()
}
