// Package cli implements the unitforge command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/unitforge/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	dataDir     string
	definitions string
	logLevel    string
	jsonMode    bool
}

var flags rootFlags

// Loaded by PersistentPreRunE so all subcommands can use them.
var (
	configDir string
	settings  *viper.Viper
)

// NewRootCmd creates the top-level "unitforge" command with global flags
// and all subcommands registered. Without a subcommand it starts the REPL.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "unitforge",
		Short: "A calculator that keeps track of physical units",
		Long: "unitforge evaluates arithmetic on quantities with units, converts between\n" +
			"units of the same category and derives new units from products and quotients.",
		Args: cobra.NoArgs,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		RunE:              runREPL,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory holding the journal (default: platform data dir)")
	pf.StringVar(&flags.definitions, "definitions", "", "unit definition file or directory merged over the built-in units")
	pf.StringVar(&flags.logLevel, "log-level", defaultLogLevel, "log level: "+logLevelsList)
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newREPLCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newUnitsCmd())
	root.AddCommand(newHistoryCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(exitCode(err))
	}
}

// setup resolves the config directory, loads config.yaml and configures
// logging.
func setup(cmd *cobra.Command, args []string) error {
	dir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	v, err := loadConfig(dir)
	if err != nil {
		return sysError(err)
	}
	if err := v.BindPFlag(cfgKeyLogLevel, cmd.Flags().Lookup("log-level")); err != nil {
		return sysError(fmt.Errorf("bind log level: %w", err))
	}

	if err := configureLogging(v.GetString(cfgKeyLogLevel), cmd.ErrOrStderr()); err != nil {
		return userError(err)
	}

	configDir, settings = dir, v
	return nil
}

// exitError carries the process exit code for an error. An exitError with
// a nil err is silent: the command already reported the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
// Errors without an explicit code are flag and argument errors from cobra.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}
