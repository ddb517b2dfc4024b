package analysis_test

import (
	"testing"

	"github.com/benwyrosdick/lazychess/pkg/analysis"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/uci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(multipv, depth, cp int, pv ...string) domain.SearchInfo {
	return domain.SearchInfo{Depth: depth, MultiPV: multipv, Score: domain.Centipawns(cp), PV: pv}
}

func TestStore_Drain(t *testing.T) {
	ch := make(chan domain.Message, 8)
	store := analysis.New(ch)

	assert.Empty(t, store.Drain(), "nothing pending")

	ch <- domain.ReadyOk{}
	ch <- domain.Unrecognized{Line: "hello"}
	ch <- domain.BestMove{Move: "e2e4"}

	msgs := store.Drain()
	assert.Equal(t, []domain.Message{
		domain.ReadyOk{},
		domain.Unrecognized{Line: "hello"},
		domain.BestMove{Move: "e2e4"},
	}, msgs, "arrival order is kept")
	assert.Empty(t, store.Drain(), "drained messages are not returned twice")

	ch <- domain.EngineLost{}
	close(ch)
	assert.Equal(t, []domain.Message{domain.EngineLost{}}, store.Drain())
	assert.True(t, store.SourceClosed())
	assert.Empty(t, store.Drain())
}

func TestStore_NilSource(t *testing.T) {
	store := analysis.New(nil)
	assert.Nil(t, store.Drain())
}

func TestStore_DecodeAndApply(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(3)

	require.True(t, store.Apply(uci.Decode("info depth 12 multipv 1 score cp 34 pv e2e4 e7e5")))
	snap := store.Snapshot()
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, domain.AnalysisLine{
		Index: 1, Score: domain.Centipawns(34), PV: []string{"e2e4", "e7e5"}, Depth: 12,
	}, snap.Lines[0])

	require.True(t, store.Apply(uci.Decode("info depth 10 multipv 2 score mate -3 pv d7d5")))
	snap = store.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 2, snap.Lines[1].Index)
	assert.Equal(t, domain.MateIn(-3), snap.Lines[1].Score)
	assert.Equal(t, []string{"d7d5"}, snap.Lines[1].PV)

	require.True(t, store.Apply(uci.Decode("bestmove e2e4 ponder e7e5")))
	snap = store.Snapshot()
	assert.True(t, snap.Complete)
	assert.Equal(t, "e2e4", snap.BestMove)
	assert.Equal(t, "e7e5", snap.Ponder)
	assert.False(t, store.Open())
}

func TestStore_LastMessageWins(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(2)

	store.Apply(info(1, 20, 50, "e2e4"))
	store.Apply(domain.Unrecognized{Line: "info string noise"})
	store.Apply(info(2, 20, 10, "d2d4"))
	// Lower depth after higher depth: order is trusted, depth is not compared.
	store.Apply(info(1, 18, 45, "g1f3"))
	store.Apply(domain.ReadyOk{})

	snap := store.Snapshot()
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 18, snap.Lines[0].Depth)
	assert.Equal(t, []string{"g1f3"}, snap.Lines[0].PV)
	assert.Equal(t, 10, snap.Lines[1].Score.Value)
}

func TestStore_UnrecognizedDoesNotChangeSnapshot(t *testing.T) {
	plain := analysis.New(nil)
	noisy := analysis.New(nil)
	plain.Begin(2)
	noisy.Begin(2)

	sequence := []domain.Message{info(1, 5, 12, "e2e4"), info(2, 5, 3, "c2c4"), info(1, 6, 20, "d2d4")}
	for _, msg := range sequence {
		plain.Apply(msg)
		noisy.Apply(domain.Unrecognized{Line: "garbage"})
		noisy.Apply(msg)
		noisy.Apply(domain.Unrecognized{Line: "info depth 6 currmove e2e4"})
	}

	assert.Equal(t, plain.Snapshot(), noisy.Snapshot())
}

func TestStore_IndexBounds(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(2)

	assert.False(t, store.Apply(info(0, 10, 1, "a2a3")))
	assert.False(t, store.Apply(info(-1, 10, 1, "a2a3")))
	assert.False(t, store.Apply(info(3, 10, 1, "a2a3")))
	assert.True(t, store.Apply(info(2, 10, 1, "a2a3")))

	assert.Len(t, store.Snapshot().Lines, 1)
}

func TestStore_Epochs(t *testing.T) {
	store := analysis.New(nil)

	assert.False(t, store.Apply(info(1, 5, 0, "e2e4")), "no epoch yet")
	assert.False(t, store.Apply(domain.BestMove{Move: "e2e4"}), "no epoch yet")

	store.Begin(1)
	store.Apply(info(1, 5, 0, "e2e4"))
	store.Apply(domain.SearchInfo{MultiPV: 1, Score: domain.Centipawns(1), Nodes: 5000, NPS: 100000, HashFull: 12})
	store.Apply(domain.BestMove{Move: "e2e4"})
	assert.Equal(t, 1, store.Snapshot().Epoch)
	assert.Equal(t, int64(5000), store.Snapshot().Nodes)

	assert.False(t, store.Apply(info(1, 6, 0, "d2d4")), "epoch closed by bestmove")

	store.Begin(1)
	snap := store.Snapshot()
	assert.Equal(t, 2, snap.Epoch)
	assert.Empty(t, snap.Lines, "a new epoch starts empty")
	assert.False(t, snap.Complete)
	assert.Empty(t, snap.BestMove)
	assert.Zero(t, snap.Nodes)
	assert.Zero(t, snap.HashFull)
}

func TestStore_Freeze(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(1)
	store.Apply(info(1, 12, 30, "e2e4"))

	store.Freeze()
	assert.True(t, store.Frozen())
	assert.False(t, store.Apply(info(1, 13, -500, "a2a3")), "updates after stop are not applied")
	assert.Equal(t, 30, store.Snapshot().Lines[0].Score.Value)

	assert.True(t, store.Apply(domain.BestMove{Move: "e2e4"}))
	assert.True(t, store.Snapshot().Complete)
	assert.False(t, store.Frozen())
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(1)

	pv := []string{"e2e4", "e7e5"}
	store.Apply(info(1, 1, 0, pv...))
	pv[0] = "a2a3"

	snap := store.Snapshot()
	assert.Equal(t, "e2e4", snap.Lines[0].PV[0], "store does not alias the message")

	snap.Lines[0].PV[1] = "h7h6"
	assert.Equal(t, "e7e5", store.Snapshot().Lines[0].PV[1], "snapshot does not alias the store")
}

func TestStore_BeginClampsMultiPV(t *testing.T) {
	store := analysis.New(nil)
	store.Begin(0)

	assert.True(t, store.Apply(info(1, 1, 0, "e2e4")))
	assert.False(t, store.Apply(info(2, 1, 0, "d2d4")))
}
