package ports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEngineProcessContract runs a suite of tests to verify that an EngineProcess implementation
// adheres to the defined interface contract. The process must answer "isready" with "readyok"
// and exit on "quit", which is the minimum every UCI engine does.
func RunEngineProcessContract(t *testing.T, proc EngineProcess) {
	t.Helper()

	t.Run("Write and Read", func(t *testing.T) {
		require.NoError(t, proc.WriteLine("isready"))

		line, err := readUntil(proc, "readyok")
		require.NoError(t, err, "ReadLine should not return error")
		assert.Equal(t, "readyok", line, "lines come back without terminator")
	})

	t.Run("Terminate", func(t *testing.T) {
		start := time.Now()
		err := proc.Terminate(time.Second)
		assert.NoError(t, err, "Terminate should not return error")
		assert.Less(t, time.Since(start), 5*time.Second, "Terminate must be bounded by the grace period")
	})

	t.Run("Terminate Twice", func(t *testing.T) {
		assert.NoError(t, proc.Terminate(time.Second), "Terminate must be idempotent")
	})

	t.Run("Read After Terminate", func(t *testing.T) {
		_, err := readUntil(proc, "")
		assert.Error(t, err, "the output stream ends once the engine is gone")
	})
}

// readUntil skips banner and info lines until want shows up. An empty want drains to the end.
func readUntil(proc EngineProcess, want string) (string, error) {
	for i := 0; i < 1000; i++ {
		line, err := proc.ReadLine()
		if err != nil {
			return "", err
		}
		if want != "" && line == want {
			return line, nil
		}
	}
	return "", nil
}
