// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics provides Prometheus instrumentation for the driver: a
// struct of collectors built and registered together by New, with
// nil-receiver methods so a *Metrics obtained from NullMetrics can be
// passed everywhere a real one is expected.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks driver-wide Prometheus metrics, all under the corecomm_
// prefix.
type Metrics struct {
	ControlOpsTotal    *prometheus.CounterVec
	ControlOpDuration  *prometheus.HistogramVec
	RPCRequestsTotal   *prometheus.CounterVec
	RPCRequestDuration prometheus.Histogram
	RPCExceptionsTotal prometheus.Counter
	SessionsOpen       prometheus.Gauge
}

// New creates and registers the driver's metrics against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ControlOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corecomm_control_ops_total",
				Help: "Total control-link operations by name and outcome",
			},
			[]string{"op", "outcome"},
		),
		ControlOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corecomm_control_op_duration_seconds",
				Help:    "Control-link operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		RPCRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corecomm_rpc_requests_total",
				Help: "Total RPC_REQUEST messages dispatched by outcome",
			},
			[]string{"outcome"},
		),
		RPCRequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "corecomm_rpc_request_duration_seconds",
				Help:    "RPC_REQUEST dispatch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		RPCExceptionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "corecomm_rpc_exceptions_total",
				Help: "Total RPC_EXCEPTION replies written to the device",
			},
		),
		SessionsOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "corecomm_sessions_open",
				Help: "Number of driver sessions currently holding an open link",
			},
		),
	}

	reg.MustRegister(
		m.ControlOpsTotal,
		m.ControlOpDuration,
		m.RPCRequestsTotal,
		m.RPCRequestDuration,
		m.RPCExceptionsTotal,
		m.SessionsOpen,
	)

	return m
}

// NullMetrics returns nil, a no-op collector: every method below tolerates
// a nil receiver so callers never need a conditional.
func NullMetrics() *Metrics {
	return nil
}

func (m *Metrics) RecordControlOp(op, outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ControlOpsTotal.WithLabelValues(op, outcome).Inc()
	m.ControlOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func (m *Metrics) RecordRPCRequest(outcome string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RPCRequestsTotal.WithLabelValues(outcome).Inc()
	m.RPCRequestDuration.Observe(durationSeconds)
}

func (m *Metrics) RecordRPCException() {
	if m == nil {
		return
	}
	m.RPCExceptionsTotal.Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsOpen.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsOpen.Dec()
}

// Handler returns the HTTP handler serving the registered collectors in the
// Prometheus exposition format, for wiring under a "serve-metrics" command.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
