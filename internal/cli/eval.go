package cli

import (
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval COMMAND...",
		Short: "Evaluate commands in one session",
		Long: "Evaluate each argument as a command, in order, in a single session.\n" +
			"Variables assigned by one argument are visible to the next.",
		Example: `  unitforge eval "x = 360 km" "x / 2 hour >> kmh"`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runEval,
	}
}

func runEval(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	failed := 0
	for _, command := range args {
		if !r.execute(command) {
			failed++
		}
	}
	if failed > 0 {
		// Each failure has already been reported.
		return &exitError{code: exitUserError}
	}
	return nil
}
