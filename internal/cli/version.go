package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/pkg/unitforge"
)

const modulePath = "github.com/mesh-intelligence/unitforge"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the unitforge version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "unitforge v%s\nmodule: %s\n", unitforge.Version, modulePath)
			return nil
		},
	}
}
