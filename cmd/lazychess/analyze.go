package main

import (
	"github.com/benwyrosdick/lazychess/internal/cli"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [moves...]",
	Short: "Analyze a position once and print the best lines",
	Long: `Analyzes the position reached by playing the given moves from --fen (or the
start position) to a fixed depth or time, then prints the engine's lines.
Moves may be in SAN (e4, Nf3, O-O) or coordinate notation (e2e4).
With --pgn the moves are played after the last move of the game.`,
	Example: `  lazychess analyze e4 e5 Nf3 --depth 22 --multipv 3
  lazychess analyze --pgn game.pgn --depth 25
  lazychess analyze --fen "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3" --movetime 2000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunAnalyze(globalOptions(cmd), analyzeOptions(cmd, args))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [moves...]",
	Short: "Analyze continuously while you play moves",
	Long: `Starts an infinite analysis and redraws it as the engine searches.
Type moves to play them; type help for the other commands and q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunWatch(globalOptions(cmd), analyzeOptions(cmd, args))
	},
}

func analyzeOptions(cmd *cobra.Command, args []string) cli.AnalyzeOptions {
	fen, _ := cmd.Flags().GetString("fen")
	pgn, _ := cmd.Flags().GetString("pgn")
	multipv, _ := cmd.Flags().GetInt("multipv")
	depth, _ := cmd.Flags().GetInt("depth")
	movetime, _ := cmd.Flags().GetInt("movetime")
	markdown, _ := cmd.Flags().GetBool("markdown")
	return cli.AnalyzeOptions{
		FEN:      fen,
		PGN:      pgn,
		Moves:    args,
		MultiPV:  multipv,
		Depth:    depth,
		MoveTime: movetime,
		Markdown: markdown,
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(watchCmd)

	for _, c := range []*cobra.Command{analyzeCmd, watchCmd} {
		c.Flags().String("fen", "", "Start position in FEN (default is the standard start position)")
		c.Flags().String("pgn", "", "PGN file whose final position is analyzed")
		c.Flags().IntP("multipv", "m", 0, "Number of lines (default from config)")
	}
	analyzeCmd.Flags().IntP("depth", "d", 0, "Search depth (default from config)")
	analyzeCmd.Flags().Int("movetime", 0, "Search time in milliseconds")
	analyzeCmd.Flags().Bool("markdown", false, "Render the result as markdown")
}
