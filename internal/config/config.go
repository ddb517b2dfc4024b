// Package config loads the lazychess configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the whole configuration file.
type Config struct {
	Engine Engine `json:"engine" mapstructure:"engine"`
	UI     UI     `json:"ui" mapstructure:"ui"`
	Server Server `json:"server" mapstructure:"server"`
	Log    Log    `json:"log" mapstructure:"log"`
}

// Engine says which engine to run and how to configure it.
type Engine struct {
	Path         string            `json:"path" mapstructure:"path"`
	Profile      string            `json:"profile" mapstructure:"profile"`
	ProfilesFile string            `json:"profiles_file" mapstructure:"profiles_file"`
	Args         []string          `json:"args" mapstructure:"args"`
	Depth        int               `json:"depth" mapstructure:"depth"`
	MultiPV      int               `json:"multipv" mapstructure:"multipv"`
	Threads      int               `json:"threads" mapstructure:"threads"`
	Hash         int               `json:"hash" mapstructure:"hash"`
	Contempt     int               `json:"contempt" mapstructure:"contempt"`
	GracePeriod  time.Duration     `json:"grace_period" mapstructure:"grace_period"`
	Options      map[string]string `json:"options" mapstructure:"options"`
}

// UI controls the terminal output.
type UI struct {
	Tick     time.Duration `json:"tick" mapstructure:"tick"`
	Color    bool          `json:"color" mapstructure:"color"`
	Markdown bool          `json:"markdown" mapstructure:"markdown"`
}

// Server controls the HTTP adapter.
type Server struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// Log controls the application logger.
type Log struct {
	Level string `json:"level" mapstructure:"level"`
	JSON  bool   `json:"json" mapstructure:"json"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Engine: Engine{
			Depth:       20,
			MultiPV:     3,
			Threads:     4,
			Hash:        256,
			GracePeriod: 2 * time.Second,
		},
		UI: UI{
			Tick:  100 * time.Millisecond,
			Color: true,
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Log:    Log{Level: "info"},
	}
}

// DefaultPath returns <user config dir>/lazychess/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, "lazychess", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Validate rejects values the engine session cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Engine.MultiPV < 1:
		return fmt.Errorf("engine.multipv must be at least 1, got %d", c.Engine.MultiPV)
	case c.Engine.Depth < 0:
		return fmt.Errorf("engine.depth must not be negative, got %d", c.Engine.Depth)
	case c.Engine.GracePeriod <= 0:
		return fmt.Errorf("engine.grace_period must be positive, got %s", c.Engine.GracePeriod)
	case c.UI.Tick <= 0:
		return fmt.Errorf("ui.tick must be positive, got %s", c.UI.Tick)
	}
	return nil
}

// EngineOptions returns the UCI options to set at startup.
// Threads and Hash are always sent, Contempt only when set; explicit options win.
func (c Config) EngineOptions() map[string]string {
	opts := map[string]string{}
	if c.Engine.Threads > 0 {
		opts["Threads"] = strconv.Itoa(c.Engine.Threads)
	}
	if c.Engine.Hash > 0 {
		opts["Hash"] = strconv.Itoa(c.Engine.Hash)
	}
	if c.Engine.Contempt != 0 {
		opts["Contempt"] = strconv.Itoa(c.Engine.Contempt)
	}
	for k, v := range c.Engine.Options {
		opts[k] = v
	}
	return opts
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg.document())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	return nil
}

// document is the YAML layout of the file, with durations written as "2s".
func (c Config) document() map[string]any {
	engine := map[string]any{
		"depth":        c.Engine.Depth,
		"multipv":      c.Engine.MultiPV,
		"threads":      c.Engine.Threads,
		"hash":         c.Engine.Hash,
		"contempt":     c.Engine.Contempt,
		"grace_period": c.Engine.GracePeriod.String(),
	}
	if c.Engine.Path != "" {
		engine["path"] = c.Engine.Path
	}
	if c.Engine.Profile != "" {
		engine["profile"] = c.Engine.Profile
	}
	if c.Engine.ProfilesFile != "" {
		engine["profiles_file"] = c.Engine.ProfilesFile
	}
	if len(c.Engine.Args) > 0 {
		engine["args"] = c.Engine.Args
	}
	if len(c.Engine.Options) > 0 {
		engine["options"] = c.Engine.Options
	}

	return map[string]any{
		"engine": engine,
		"ui": map[string]any{
			"tick":     c.UI.Tick.String(),
			"color":    c.UI.Color,
			"markdown": c.UI.Markdown,
		},
		"server": map[string]any{"addr": c.Server.Addr},
		"log":    map[string]any{"level": c.Log.Level, "json": c.Log.JSON},
	}
}
