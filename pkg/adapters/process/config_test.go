package process

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("Missing File", func(t *testing.T) {
		profiles, err := LoadProfiles(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "engines.yaml")
		content := `
engines:
  - name: sf
    command: /usr/games/stockfish
    args: ["--bench-off"]
    options:
      Threads: "8"
      Hash: "1024"
  - name: unnamed-is-skipped
  - command: /bin/true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		profiles, err := LoadProfiles(path)
		require.NoError(t, err)
		require.Len(t, profiles, 1)
		sf := profiles["sf"]
		assert.Equal(t, "/usr/games/stockfish", sf.Command)
		assert.Equal(t, []string{"--bench-off"}, sf.Args)
		assert.Equal(t, "1024", sf.Options["Hash"])
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "engines.json")
		content := `{"engines":[{"name":"lc0","command":"lc0","env":{"CUDA_VISIBLE_DEVICES":"0"}}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		profiles, err := LoadProfiles(path)
		require.NoError(t, err)
		assert.Equal(t, "0", profiles["lc0"].Environment["CUDA_VISIBLE_DEVICES"])
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("engines: [::"), 0o644))

		_, err := LoadProfiles(path)
		assert.Error(t, err)
	})
}

func TestResolveExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX executables")
	}

	t.Run("Explicit Path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

		got, err := ResolveExecutable(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("Missing Path", func(t *testing.T) {
		_, err := ResolveExecutable(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, domain.ErrSpawn)
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := ResolveExecutable(t.TempDir())
		assert.ErrorIs(t, err, domain.ErrSpawn)
	})

	t.Run("PATH Search", func(t *testing.T) {
		got, err := ResolveExecutable("sh")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})

	t.Run("Not On PATH", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		_, err := ResolveExecutable("")
		assert.ErrorIs(t, err, domain.ErrSpawn)
	})
}
