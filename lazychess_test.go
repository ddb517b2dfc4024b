package lazychess_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benwyrosdick/lazychess"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellEngine = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    uci) echo "id name ShellFish 1.0"; echo "id author the lazychess tests"; echo "uciok" ;;
    isready) echo "readyok" ;;
    go*)
      echo "info depth 1 multipv 1 score cp 40 nodes 10 pv d2d4"
      echo "info depth 2 multipv 1 score mate 3 nodes 30 nps 3000 pv e2e4 e7e5"
      echo "bestmove e2e4"
      ;;
    quit) exit 0 ;;
  esac
done
`

func writeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell engines require a POSIX sh")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, lazychess.Version)
	assert.NotContains(t, lazychess.Version, "\n")
}

func TestOpen_Evaluate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var states []domain.SessionState
	eng, err := lazychess.Open(ctx, writeEngine(t, shellEngine),
		lazychess.WithTick(5*time.Millisecond),
		lazychess.WithGracePeriod(500*time.Millisecond),
		lazychess.WithLifecycleHooks(domain.Hooks{
			OnStateChange: func(_, to domain.SessionState) { states = append(states, to) },
		}),
	)
	require.NoError(t, err)
	assert.Greater(t, eng.PID(), 0)

	status, err := eng.EvaluateFEN(ctx, "", nil, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", status.Analysis.BestMove)
	assert.Equal(t, 2, status.Analysis.Depth())
	best, ok := status.Analysis.Best()
	require.True(t, ok)
	assert.Equal(t, domain.MateIn(3), best.Score)
	assert.Equal(t, "ShellFish 1.0", eng.Identity().Name)

	require.NoError(t, eng.Close())
	require.NoError(t, eng.Close(), "idempotent")
	assert.Contains(t, states, domain.StateTerminated)
}

func TestOpen_InvalidPosition(t *testing.T) {
	ctx := context.Background()
	eng, err := lazychess.Open(ctx, writeEngine(t, shellEngine), lazychess.WithGracePeriod(500*time.Millisecond))
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.EvaluateFEN(ctx, "", []string{"e2e5"}, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidPosition)
}

func TestOpen_Errors(t *testing.T) {
	_, err := lazychess.Open(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrSpawn)

	silent := writeEngine(t, "#!/bin/sh\nwhile IFS= read -r line; do :; done\n")
	_, err = lazychess.Open(context.Background(), silent,
		lazychess.WithReadyTimeout(100*time.Millisecond),
		lazychess.WithGracePeriod(200*time.Millisecond),
	)
	assert.ErrorIs(t, err, domain.ErrHandshakeTimeout)
}
