package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/internal/paths"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize unitforge directories",
		Long: "Create the configuration directory with a default config.yaml, the units\n" +
			"directory for user definitions and the data directory with the journal.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// setup has already created configDir and config.yaml.
	unitsDir := filepath.Join(configDir, paths.DefinitionsDirName)
	if err := os.MkdirAll(unitsDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create units directory: %w", err))
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, settings.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	if settings.GetBool(cfgKeyJournal) {
		// Attach creates the data directory and the journal schema.
		journal, err := attachJournal()
		if err != nil {
			return sysError(fmt.Errorf("initialize journal: %w", err))
		}
		if err := journal.Detach(); err != nil {
			return sysError(fmt.Errorf("finalize journal: %w", err))
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "unitforge initialized successfully")
	fmt.Fprintf(w, "config: %s\n", filepath.Join(configDir, configFileExt))
	fmt.Fprintf(w, "units:  %s\n", unitsDir)
	fmt.Fprintf(w, "data:   %s\n", dataDir)
	return nil
}
