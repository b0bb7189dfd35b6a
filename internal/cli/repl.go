package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const (
	prompt     = "> "
	metaPrefix = ":"
)

const replHelp = `Enter an expression to evaluate it, for example:
  x = 2 km + 300 m
  x / 30 minute >> kmh
  _ * 2
The result of the last successful command is available as _.

Commands:
  :vars    list variables
  :units   list units
  :help    show this help
  :quit    leave the session`

func newREPLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session (the default command)",
		Args:  cobra.NoArgs,
		RunE:  runREPL,
	}
}

func runREPL(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	in := cmd.InOrStdin()
	return r.repl(in, isTerminal(in))
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// repl reads commands line by line until end of input or :quit. A failed
// command is reported and the session continues.
func (r *runner) repl(in io.Reader, interactive bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(r.out.w, prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, metaPrefix):
			if quit := r.meta(line); quit {
				return nil
			}
		default:
			r.execute(line)
		}
	}
	if interactive {
		fmt.Fprintln(r.out.w)
	}
	if err := scanner.Err(); err != nil {
		return sysError(fmt.Errorf("read input: %w", err))
	}
	return nil
}

// meta runs a REPL command and reports whether the session should end.
func (r *runner) meta(line string) bool {
	switch strings.TrimPrefix(line, metaPrefix) {
	case "quit", "q", "exit":
		return true
	case "vars":
		for _, b := range r.session.Variables() {
			fmt.Fprintf(r.out.w, "%s = %s\n", b.Name, r.out.formatValue(b.Value))
		}
	case "units":
		writeUnits(r.out.w, r.session.Registry())
	case "help":
		fmt.Fprintln(r.out.w, replHelp)
	default:
		fmt.Fprintf(r.out.errW, "unknown command %q, try :help\n", line)
	}
	return false
}
