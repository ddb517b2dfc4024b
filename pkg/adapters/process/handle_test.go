package process_test

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benwyrosdick/lazychess/pkg/adapters/process"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shellEngine = `#!/bin/sh
echo "ShellFish 1.0 by the lazychess tests"
while IFS= read -r line; do
  case "$line" in
    uci) echo "id name ShellFish 1.0"; echo "uciok" ;;
    isready) echo "readyok" ;;
    quit) exit 0 ;;
  esac
done
`

// writeScript stores an executable shell script in a temp dir and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell engines require a POSIX sh")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))
	return path
}

func TestHandle_Contract(t *testing.T) {
	h, err := process.Spawn(writeScript(t, shellEngine))
	require.NoError(t, err)

	ports.RunEngineProcessContract(t, h)
}

func TestHandle_Handshake(t *testing.T) {
	h, err := process.Spawn(writeScript(t, shellEngine))
	require.NoError(t, err)
	defer h.Terminate(time.Second)

	assert.Greater(t, h.PID(), 0)

	banner, err := h.ReadLine()
	require.NoError(t, err)
	assert.Contains(t, banner, "ShellFish")

	require.NoError(t, h.WriteLine("uci"))
	line, err := h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "id name ShellFish 1.0", line)
	line, err = h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "uciok", line)
}

func TestHandle_Spawn_Missing(t *testing.T) {
	_, err := process.Spawn(filepath.Join(t.TempDir(), "no-such-engine"))
	assert.ErrorIs(t, err, domain.ErrSpawn)
}

func TestHandle_ReadLine_Terminators(t *testing.T) {
	h, err := process.Spawn(writeScript(t, "#!/bin/sh\nprintf 'readyok\\r\\nbestmove e2e4'\n"))
	require.NoError(t, err)
	defer h.Terminate(time.Second)

	line, err := h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "readyok", line, "CRLF is stripped")

	line, err = h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "bestmove e2e4", line, "final line without newline is kept")

	_, err = h.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestHandle_Terminate_KillsStubbornEngine(t *testing.T) {
	h, err := process.Spawn(writeScript(t, "#!/bin/sh\ntrap '' TERM\nexec sleep 30\n"))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, h.Terminate(100*time.Millisecond))
	assert.Less(t, time.Since(start), 3*time.Second)

	select {
	case <-h.Exited():
	default:
		t.Fatal("process should be reaped after Terminate")
	}
}

func TestHandle_WriteAfterExit(t *testing.T) {
	h, err := process.Spawn(writeScript(t, "#!/bin/sh\nexit 0\n"))
	require.NoError(t, err)

	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not exit")
	}
	require.NoError(t, h.Terminate(time.Second))

	err = h.WriteLine("isready")
	assert.ErrorIs(t, err, domain.ErrEngineLost)
}

func TestHandle_Environment(t *testing.T) {
	script := "#!/bin/sh\necho \"$LAZYCHESS_TEST_VAR\"\npwd\n"
	dir := t.TempDir()
	cfg := process.ProcessConfig{
		Environment: map[string]string{"LAZYCHESS_TEST_VAR": "hello"},
		Dir:         dir,
	}

	h, err := process.Spawn(writeScript(t, script), cfg.SpawnOptions()...)
	require.NoError(t, err)
	defer h.Terminate(time.Second)

	line, err := h.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = h.ReadLine()
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(line)
	assert.Equal(t, want, got)
}
