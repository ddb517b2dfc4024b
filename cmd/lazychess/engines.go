package main

import (
	"github.com/benwyrosdick/lazychess/internal/cli"
	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List engine profiles",
	Long:  `Lists the engine profiles of engines.yaml (next to the config file) and the engine that would be started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListEngines(globalOptions(cmd))
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return cli.InitConfig(globalOptions(cmd), force)
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
