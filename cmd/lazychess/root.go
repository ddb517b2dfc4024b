package main

import (
	"fmt"
	"os"

	"github.com/benwyrosdick/lazychess"
	"github.com/benwyrosdick/lazychess/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lazychess",
	Short: "lazychess drives UCI chess engines from the terminal",
	Long: `lazychess runs a UCI chess engine such as Stockfish and shows its analysis:
once for a position (analyze), live while you play moves (watch), over HTTP (serve)
or as tools for AI agents (mcp).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default is <user config dir>/lazychess/config.yaml)")
	rootCmd.PersistentFlags().StringP("engine", "e", "", "Engine path, name on PATH or profile name")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of text")
}

// globalOptions reads the persistent flags.
func globalOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	engine, _ := cmd.Flags().GetString("engine")
	debug, _ := cmd.Flags().GetBool("debug")
	jsonOut, _ := cmd.Flags().GetBool("json")
	return cli.Options{
		ConfigPath: configPath,
		Engine:     engine,
		Debug:      debug,
		JSON:       jsonOut,
		Version:    lazychess.Version,
		In:         cmd.InOrStdin(),
		Out:        cmd.OutOrStdout(),
	}
}
