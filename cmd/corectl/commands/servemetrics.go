// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	corecommmetrics "github.com/coredev/corecomm/internal/metrics"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve the Prometheus /metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		listen := cfg.Metrics.Listen
		if listen == "" {
			listen = ":9100"
		}

		reg := prometheus.NewRegistry()
		corecommmetrics.New(reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", corecommmetrics.Handler(reg))

		fmt.Printf("serving metrics on %s/metrics\n", listen)
		return http.ListenAndServe(listen, mux)
	},
}
