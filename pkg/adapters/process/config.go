package process

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/benwyrosdick/lazychess/pkg/domain"
	"gopkg.in/yaml.v3"
)

// DefaultEngine is looked up on PATH when no engine is configured.
const DefaultEngine = "stockfish"

// ProcessConfig is a named engine profile: how to launch it and which UCI options to set.
type ProcessConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Dir         string            `yaml:"dir" json:"dir"`
	Options     map[string]string `yaml:"options" json:"options"`
	Description string            `yaml:"description" json:"description"`
}

// SpawnOptions translates the profile into Spawn options.
func (c ProcessConfig) SpawnOptions() []Option {
	var opts []Option
	if len(c.Args) > 0 {
		opts = append(opts, WithArgs(c.Args...))
	}
	if c.Dir != "" {
		opts = append(opts, WithDir(c.Dir))
	}
	if len(c.Environment) > 0 {
		opts = append(opts, WithEnv(c.Environment))
	}
	return opts
}

// ConfigFile represents the structure of engines.yaml
type ConfigFile struct {
	Engines []ProcessConfig `yaml:"engines" json:"engines"`
}

// LoadProfiles reads a configuration file (YAML or JSON) and returns a map of profile names to configs.
// A missing file means no profiles.
func LoadProfiles(path string) (map[string]ProcessConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ProcessConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read engine profiles: %w", err)
	}

	var cfg ConfigFile
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	profiles := make(map[string]ProcessConfig)
	for _, p := range cfg.Engines {
		if p.Name == "" || p.Command == "" {
			continue
		}
		profiles[p.Name] = p
	}

	return profiles, nil
}

// ResolveExecutable turns an engine name or path into an executable path.
// Anything containing a path separator must exist; bare names are searched on PATH.
// An empty name means DefaultEngine.
func ResolveExecutable(nameOrPath string) (string, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultEngine
	}

	if strings.ContainsRune(nameOrPath, filepath.Separator) || strings.Contains(nameOrPath, "/") {
		info, err := os.Stat(nameOrPath)
		if err != nil {
			return "", spawnError(nameOrPath, err)
		}
		if info.IsDir() {
			return "", spawnError(nameOrPath, fmt.Errorf("is a directory"))
		}
		return nameOrPath, nil
	}

	path, err := exec.LookPath(nameOrPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s not found in PATH: %w", domain.ErrSpawn, nameOrPath, err)
	}
	return path, nil
}
