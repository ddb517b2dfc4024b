/*
Package lazychess drives UCI chess engines and keeps track of their analysis.

An engine is a child process speaking the Universal Chess Interface on its standard
input and output. lazychess spawns it, decodes everything it prints without blocking the
caller, and folds the search output into per-line analysis that always belongs to the
position currently being searched.

# Layers

  - pkg/uci encodes commands and decodes engine output, one line at a time.
  - pkg/analysis keeps the analysis of the current epoch (one search request).
  - pkg/session drives one engine through Idle, Analyzing, Stopping and Terminated.
  - pkg/runner serializes access to a session for concurrent hosts.
  - pkg/adapters/process spawns the engine; pkg/adapters/mcp serves it to MCP clients.

# Usage

	eng, err := lazychess.Open(ctx, "stockfish", lazychess.WithMultiPV(3))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	status, err := eng.EvaluateFEN(ctx, "", []string{"e4", "e5"}, 3, 20)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(status.Analysis.BestMove)
*/
package lazychess
