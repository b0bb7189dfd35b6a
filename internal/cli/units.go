package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/pkg/registry"
)

func newUnitsCmd() *cobra.Command {
	var relations bool
	cmd := &cobra.Command{
		Use:   "units",
		Short: "List the known units",
		Long: "List every category with its units, their factors to the category's base\n" +
			"unit and their derivations. --relations lists the derived-unit algebra.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case flags.jsonMode && relations:
				return writeJSON(w, reg.Relations())
			case flags.jsonMode:
				return writeJSON(w, reg.Definitions())
			case relations:
				writeRelations(w, reg)
			default:
				writeUnits(w, reg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&relations, "relations", false, "list derived-unit relations instead of units")
	return cmd
}

// writeUnits lists categories and units in declaration order.
func writeUnits(w io.Writer, reg *registry.Registry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range reg.Definitions().Categories {
		fmt.Fprintf(tw, "%s (base unit %s)\n", c.Name, c.Base())
		for _, u := range c.Units {
			line := fmt.Sprintf("  %s\t%s\t%s\t%s", u.Key, u.Symbol, u.Name, strconv.FormatFloat(u.Factor, 'g', -1, 64))
			if u.IsDerived() {
				line += "\t= " + u.Derived
			}
			fmt.Fprintln(tw, line)
		}
	}
	tw.Flush()
}

// writeRelations lists the derived-unit algebra, one "a op b = c" per line.
func writeRelations(w io.Writer, reg *registry.Registry) {
	for _, rel := range reg.Relations() {
		fmt.Fprintf(w, "%s = %s\n", rel.Relation, rel.Result)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return sysError(fmt.Errorf("encode JSON: %w", err))
	}
	return nil
}
