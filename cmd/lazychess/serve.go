package main

import (
	"github.com/benwyrosdick/lazychess/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Starts the engine behind a JSON API over HTTP, with server-sent events
on /events and Prometheus metrics on /metrics. The API is described on /openapi.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return cli.RunServe(globalOptions(cmd), addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config)")
}
