package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/benwyrosdick/lazychess/internal/config"
	"github.com/benwyrosdick/lazychess/pkg/adapters/process"
)

// ListEngines prints the engine profiles and which engine would be used.
func ListEngines(opts Options) error {
	cfg, _, err := opts.loadConfig()
	if err != nil {
		return err
	}
	profiles, err := process.LoadProfiles(cfg.Engine.ProfilesFile)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	out := opts.stdout()
	if opts.JSON {
		list := make([]process.ProcessConfig, 0, len(names))
		for _, name := range names {
			list = append(list, profiles[name])
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(process.ConfigFile{Engines: list})
	}

	if setup, err := resolveEngine(cfg); err == nil {
		printSystemMessage(out, "Default engine: %s (%s)", setup.name, setup.path)
	} else {
		printSystemMessage(out, "Default engine unavailable: %v", err)
	}
	if len(names) == 0 {
		printSystemMessage(out, "No profiles in %s", cfg.Engine.ProfilesFile)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOMMAND\tDESCRIPTION")
	for _, name := range names {
		p := profiles[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Command, p.Description)
	}
	return tw.Flush()
}

// ErrConfigExists is returned by InitConfig when the file exists and force is off.
var ErrConfigExists = errors.New("config file already exists")

// InitConfig writes the default configuration to the config path.
func InitConfig(opts Options, force bool) error {
	path, err := opts.configPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	printSystemMessage(opts.stdout(), "Wrote %s", path)
	return nil
}
