// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestRecordControlOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordControlOp("check_ident", "ok", 0.01)

	mf, err := reg.Gather()
	require.NoError(t, err)
	require.True(t, containsMetric(mf, "corecomm_control_ops_total"))
}

func TestNullMetricsToleratesNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordControlOp("load", "error", 1)
	m.RecordRPCRequest("ok", 0.5)
	m.RecordRPCException()
	m.SessionOpened()
	m.SessionClosed()
}

func containsMetric(families []*dto.MetricFamily, name string) bool {
	for _, f := range families {
		if f.GetName() == name {
			return true
		}
	}
	return false
}
