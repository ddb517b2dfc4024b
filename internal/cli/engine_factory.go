package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/benwyrosdick/lazychess/internal/config"
	"github.com/benwyrosdick/lazychess/pkg/adapters/process"
	"github.com/benwyrosdick/lazychess/pkg/domain"
	"github.com/benwyrosdick/lazychess/pkg/observability"
	"github.com/benwyrosdick/lazychess/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// readyTimeout bounds the UCI handshake of a freshly spawned engine.
const readyTimeout = 10 * time.Second

// engineSetup is a resolved engine: what to run and what to configure.
type engineSetup struct {
	name    string
	path    string
	spawn   []process.Option
	options map[string]string
}

// resolveEngine picks the engine from the config. A profile wins over a path;
// a path naming a profile selects it; anything else is resolved as an executable.
func resolveEngine(cfg config.Config) (engineSetup, error) {
	profiles, err := process.LoadProfiles(cfg.Engine.ProfilesFile)
	if err != nil {
		return engineSetup{}, err
	}

	name := cfg.Engine.Profile
	if name == "" {
		if _, ok := profiles[cfg.Engine.Path]; ok {
			name = cfg.Engine.Path
		}
	}

	setup := engineSetup{options: cfg.EngineOptions()}
	if name != "" {
		profile, ok := profiles[name]
		if !ok {
			return engineSetup{}, fmt.Errorf("%w: unknown engine profile %q", domain.ErrSpawn, name)
		}
		path, err := process.ResolveExecutable(profile.Command)
		if err != nil {
			return engineSetup{}, err
		}
		setup.name = profile.Name
		setup.path = path
		setup.spawn = profile.SpawnOptions()
		for k, v := range profile.Options {
			setup.options[k] = v
		}
		return setup, nil
	}

	path, err := process.ResolveExecutable(cfg.Engine.Path)
	if err != nil {
		return engineSetup{}, err
	}
	setup.name = path
	setup.path = path
	if len(cfg.Engine.Args) > 0 {
		setup.spawn = append(setup.spawn, process.WithArgs(cfg.Engine.Args...))
	}
	return setup, nil
}

// openEngine spawns the configured engine and waits for its handshake.
// Metrics are recorded in reg when it is not nil.
func openEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*session.Session, error) {
	setup, err := resolveEngine(cfg)
	if err != nil {
		return nil, err
	}

	hooks := observability.LoggingHooks(logger)
	if reg != nil {
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		hooks = domain.CombineHooks(hooks, metrics.Hooks())
	}

	logger.Info("Starting engine", "engine", setup.name, "path", setup.path)
	handle, err := process.Spawn(setup.path, append(setup.spawn, process.WithLogger(logger))...)
	if err != nil {
		return nil, err
	}

	sess, err := session.New(handle,
		session.WithLogger(logger),
		session.WithHooks(hooks),
		session.WithMultiPV(cfg.Engine.MultiPV),
		session.WithOptions(setup.options),
		session.WithGracePeriod(cfg.Engine.GracePeriod),
	)
	if err != nil {
		return nil, err
	}

	readyCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	if err := sess.WaitReady(readyCtx); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("engine %s did not complete the UCI handshake: %w", setup.name, err)
	}

	id := sess.Identity()
	logger.Info("Engine ready", "name", id.Name, "author", id.Author, "pid", handle.PID())
	return sess, nil
}
