package main

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/roomfit/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement engine over HTTP",
		Long: `Serve the placement engine over HTTP until interrupted.

Endpoints:
  POST /v1/solve     scenario JSON in, {runId, scenario, result} out
                     (?format=geojson returns a feature collection)
  POST /v1/compare   scenario JSON in, what-if variant summary out
  GET  /healthz      liveness
  GET  /metrics      Prometheus metrics

Examples:
  roomfit serve
  roomfit serve --addr 127.0.0.1:9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.ListenAddr
			}
			return server.New(a.settings(), a.logger).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
