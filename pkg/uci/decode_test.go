package uci_test

import (
	"testing"
	"time"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SearchInfo(t *testing.T) {
	t.Run("centipawn line", func(t *testing.T) {
		msg := uci.Decode("info depth 12 multipv 1 score cp 34 pv e2e4 e7e5")
		assert.Equal(t, domain.SearchInfo{
			Depth:   12,
			MultiPV: 1,
			Score:   domain.Centipawns(34),
			PV:      []string{"e2e4", "e7e5"},
		}, msg)
	})

	t.Run("mate line", func(t *testing.T) {
		msg := uci.Decode("info depth 10 multipv 2 score mate -3 pv d7d5")
		assert.Equal(t, domain.SearchInfo{
			Depth:   10,
			MultiPV: 2,
			Score:   domain.MateIn(-3),
			PV:      []string{"d7d5"},
		}, msg)
	})

	t.Run("multipv defaults to slot one", func(t *testing.T) {
		msg := uci.Decode("info depth 5 score cp -12 pv g1f3")
		info, ok := msg.(domain.SearchInfo)
		require.True(t, ok)
		assert.Equal(t, 1, info.MultiPV)
		assert.Equal(t, -12, info.Score.Value)
	})

	t.Run("full stockfish line", func(t *testing.T) {
		line := "info depth 24 seldepth 31 multipv 3 score cp 18 upperbound nodes 4813299 nps 1603232 hashfull 512 tbhits 0 time 3002 pv d2d4 g8f6 c2c4"
		info, ok := uci.Decode(line).(domain.SearchInfo)
		require.True(t, ok)
		assert.Equal(t, 24, info.Depth)
		assert.Equal(t, 31, info.SelDepth)
		assert.Equal(t, 3, info.MultiPV)
		assert.Equal(t, domain.Score{Kind: domain.ScoreCentipawns, Value: 18, Bound: domain.BoundUpper}, info.Score)
		assert.Equal(t, int64(4813299), info.Nodes)
		assert.Equal(t, int64(1603232), info.NPS)
		assert.Equal(t, 512, info.HashFull)
		assert.Equal(t, 3002*time.Millisecond, info.Time)
		assert.Equal(t, []string{"d2d4", "g8f6", "c2c4"}, info.PV)
	})

	t.Run("unknown tokens are skipped", func(t *testing.T) {
		info, ok := uci.Decode("info depth 8 wdl 500 400 100 score cp 3 futuretoken pv e2e4").(domain.SearchInfo)
		require.True(t, ok)
		assert.Equal(t, 8, info.Depth)
		assert.Equal(t, []string{"e2e4"}, info.PV)
	})
}

func TestDecode_BestMove(t *testing.T) {
	assert.Equal(t, domain.BestMove{Move: "e2e4", Ponder: "e7e5"}, uci.Decode("bestmove e2e4 ponder e7e5"))
	assert.Equal(t, domain.BestMove{Move: "g1f3"}, uci.Decode("bestmove g1f3"))
	assert.Equal(t, domain.BestMove{Move: "(none)"}, uci.Decode("bestmove (none)"))
	assert.Equal(t, domain.Unrecognized{Line: "bestmove"}, uci.Decode("bestmove"))
}

func TestDecode_Handshake(t *testing.T) {
	assert.Equal(t, domain.ReadyOk{}, uci.Decode("readyok"))
	assert.Equal(t, domain.UCIOk{}, uci.Decode("uciok\r\n"))
	assert.Equal(t, domain.EngineID{Field: "name", Value: "Stockfish 16.1"}, uci.Decode("id name Stockfish 16.1"))
	assert.Equal(t, domain.EngineID{Field: "author", Value: "the Stockfish developers (see AUTHORS file)"},
		uci.Decode("id author the Stockfish developers (see AUTHORS file)"))

	t.Run("spin option", func(t *testing.T) {
		assert.Equal(t, domain.EngineOption{
			Name: "MultiPV", Type: "spin", Default: "1", Min: "1", Max: "500",
		}, uci.Decode("option name MultiPV type spin default 1 min 1 max 500"))
	})

	t.Run("combo option with spaced name", func(t *testing.T) {
		assert.Equal(t, domain.EngineOption{
			Name: "Analysis Contempt", Type: "combo", Default: "Both", Vars: []string{"Off", "White", "Black", "Both"},
		}, uci.Decode("option name Analysis Contempt type combo default Both var Off var White var Black var Both"))
	})

	t.Run("button option", func(t *testing.T) {
		assert.Equal(t, domain.EngineOption{Name: "Clear Hash", Type: "button"}, uci.Decode("option name Clear Hash type button"))
	})
}

func TestDecode_Unrecognized(t *testing.T) {
	lines := []string{
		"Stockfish 16.1 by the Stockfish developers (see AUTHORS file)",
		"info string NNUE evaluation using nn-baff1ede1f90.nnue enabled",
		"info depth 3 currmove e2e4 currmovenumber 1",
		"info depth twelve score cp 34 pv e2e4",
		"info depth 12 multipv x score cp 34 pv e2e4",
		"info depth 12 score cp abc pv e2e4",
		"info depth 12 score wdl 1 2 3",
		"info depth 12 score cp",
		"readyok now",
		"option name Hash",
		"",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, domain.Unrecognized{Line: line}, uci.Decode(line))
		})
	}
}

func TestDecode_LineLocal(t *testing.T) {
	line := "info depth 12 multipv 1 score cp 34 pv e2e4 e7e5"

	// Same input, same output.
	assert.Equal(t, uci.Decode(line), uci.Decode(line))

	// A malformed line in between does not affect the next one.
	first := uci.Decode(line)
	_ = uci.Decode("info depth 99999999999999999999 score cp 1")
	assert.Equal(t, first, uci.Decode(line))
}

func TestDecode_EncodeRoundTripOfMovesInPV(t *testing.T) {
	info, ok := uci.Decode("info depth 1 score cp 0 pv e7e8q a2a1n").(domain.SearchInfo)
	require.True(t, ok)
	assert.Equal(t, "position startpos moves e7e8q a2a1n\n", uci.Encode(domain.Position{Moves: info.PV}))
}
