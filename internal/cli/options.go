package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/benwyrosdick/lazychess/internal/config"
	"github.com/benwyrosdick/lazychess/pkg/position"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	Engine     string // path, PATH name or profile name; overrides the config
	Debug      bool
	JSON       bool
	Version    string

	In  io.Reader
	Out io.Writer
}

// AnalyzeOptions describe the position and search of analyze and watch.
type AnalyzeOptions struct {
	FEN      string
	PGN      string // path of a PGN file
	Moves    []string
	MultiPV  int
	Depth    int
	MoveTime int // milliseconds
	Markdown bool
}

// position builds the start position from the FEN or PGN file and the moves.
func (a AnalyzeOptions) position() (*position.Position, error) {
	pgn, err := readPGN(a.PGN)
	if err != nil {
		return nil, err
	}
	return position.Parse(a.FEN, pgn, a.Moves...)
}

// readPGN reads a PGN file. An empty path yields no game.
func readPGN(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PGN: %w", err)
	}
	return string(data), nil
}

func (o Options) stdin() io.Reader {
	if o.In != nil {
		return o.In
	}
	return os.Stdin
}

func (o Options) stdout() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o Options) configPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return config.DefaultPath()
}

// loadConfig loads the configuration file and applies the flag overrides.
func (o Options) loadConfig() (config.Config, string, error) {
	path, err := o.configPath()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, path, err
	}
	if cfg.Engine.ProfilesFile == "" {
		cfg.Engine.ProfilesFile = filepath.Join(filepath.Dir(path), "engines.yaml")
	}
	if o.Engine != "" {
		cfg.Engine.Profile = ""
		cfg.Engine.Path = o.Engine
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, path, nil
}
