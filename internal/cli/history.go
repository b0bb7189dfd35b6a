package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/internal/sqlite"
	"github.com/mesh-intelligence/unitforge/pkg/types"
)

const defaultHistoryLimit = 20

// errJournalDisabled is returned by history when config.yaml turns the
// journal off.
var errJournalDisabled = errors.New("the journal is disabled, set journal: true in config.yaml")

type historyOptions struct {
	limit      int
	exportPath string
	importPath string
}

func newHistoryCmd() *cobra.Command {
	var opts historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently executed commands",
		Long: "List commands recorded in the journal, newest first. --limit 0 lists all of them.\n" +
			"--export writes the selected entries to a JSONL file, oldest first;\n" +
			"--import adds the entries of a JSONL file that are not in the journal yet.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}
	cmd.Flags().IntVar(&opts.limit, "limit", defaultHistoryLimit, "maximum number of entries to list or export")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write entries to this JSONL file")
	cmd.Flags().StringVar(&opts.importPath, "import", "", "import entries from this JSONL file")
	cmd.MarkFlagsMutuallyExclusive("export", "import")
	return cmd
}

func runHistory(cmd *cobra.Command, opts historyOptions) error {
	if opts.limit < 0 {
		return userError(fmt.Errorf("--limit must not be negative, got %d", opts.limit))
	}
	if !settings.GetBool(cfgKeyJournal) {
		return userError(errJournalDisabled)
	}

	journal, err := attachJournal()
	if err != nil {
		return sysError(err)
	}
	defer journal.Detach()

	w := cmd.OutOrStdout()
	if opts.importPath != "" {
		entries, err := sqlite.ReadJSONL(opts.importPath)
		if err != nil {
			return userError(fmt.Errorf("read %s: %w", opts.importPath, err))
		}
		added, err := journal.Import(entries)
		if err != nil {
			return userError(fmt.Errorf("import: %w", err))
		}
		fmt.Fprintf(w, "imported %d of %d entries\n", added, len(entries))
		return nil
	}

	entries, err := journal.Recent(opts.limit)
	if err != nil {
		return sysError(fmt.Errorf("read journal: %w", err))
	}
	if entries == nil {
		entries = []types.Entry{}
	}

	if opts.exportPath != "" {
		oldestFirst := slices.Clone(entries)
		slices.Reverse(oldestFirst)
		if err := sqlite.WriteJSONL(opts.exportPath, oldestFirst); err != nil {
			return sysError(fmt.Errorf("export: %w", err))
		}
		fmt.Fprintf(w, "exported %d entries to %s\n", len(entries), opts.exportPath)
		return nil
	}

	if flags.jsonMode {
		return writeJSON(w, entries)
	}
	return writeHistory(w, entries)
}

func writeHistory(w io.Writer, entries []types.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		outcome := "=> " + formatEntryValue(e)
		if e.Failed() {
			outcome = "!! " + e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), shortID(e.SessionID), e.Command, outcome)
	}
	return tw.Flush()
}

func formatEntryValue(e types.Entry) string {
	p := &printer{precision: settings.GetInt(cfgKeyPrecision)}
	n := p.formatNumber(e.Value)
	if e.Unit == "" {
		return n
	}
	return n + " " + e.Unit
}

// shortID abbreviates a session ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
