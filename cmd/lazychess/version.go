package main

import (
	"fmt"

	"github.com/benwyrosdick/lazychess"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lazychess",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lazychess version %s\n", lazychess.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
