package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/unitforge/pkg/diag"
	"github.com/mesh-intelligence/unitforge/pkg/interp"
	"github.com/mesh-intelligence/unitforge/pkg/registry"
)

// printer renders command results. In JSON mode every result, including
// failures, is one JSON object per line on stdout.
type printer struct {
	w         io.Writer
	errW      io.Writer
	jsonMode  bool
	precision int
	reg       *registry.Registry
}

func newPrinter(cmd *cobra.Command, reg *registry.Registry) *printer {
	return &printer{
		w:         cmd.OutOrStdout(),
		errW:      cmd.ErrOrStderr(),
		jsonMode:  flags.jsonMode,
		precision: settings.GetInt(cfgKeyPrecision),
		reg:       reg,
	}
}

// result is the JSON form of an executed command.
type result struct {
	Command string      `json:"command"`
	Value   *float64    `json:"value,omitempty"`
	Unit    string      `json:"unit,omitempty"`
	Symbol  string      `json:"symbol,omitempty"`
	Errors  []errorJSON `json:"errors,omitempty"`
}

type errorJSON struct {
	Begin   int    `json:"begin"`
	End     int    `json:"end"`
	Message string `json:"message"`
}

func (p *printer) formatNumber(f float64) string {
	if p.precision < 0 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', p.precision, 64)
}

// formatValue renders a value as "<number> <symbol>", or the bare number
// when it is dimensionless.
func (p *printer) formatValue(v interp.Value) string {
	n := p.formatNumber(v.Number)
	if v.Unit == "" {
		return n
	}
	return n + " " + p.reg.Symbol(v.Unit)
}

func (p *printer) printValue(command string, v interp.Value) {
	if p.jsonMode {
		n := v.Number
		r := result{Command: command, Value: &n, Unit: v.Unit}
		if v.Unit != "" {
			r.Symbol = p.reg.Symbol(v.Unit)
		}
		p.writeJSON(r)
		return
	}
	fmt.Fprintln(p.w, p.formatValue(v))
}

// printError reports a failed command. Errors with spans are shown under the
// command text.
func (p *printer) printError(command string, err error) {
	var list *diag.ErrorList
	isList := errors.As(err, &list)

	if p.jsonMode {
		r := result{Command: command}
		if isList {
			for _, e := range list.Entries {
				r.Errors = append(r.Errors, errorJSON{Begin: e.Span.Begin, End: e.Span.End, Message: e.Message})
			}
		} else {
			r.Errors = []errorJSON{{End: len(command), Message: err.Error()}}
		}
		p.writeJSON(r)
		return
	}

	if !isList {
		fmt.Fprintf(p.errW, "error: %v\n", err)
		return
	}
	for _, e := range list.Entries {
		fmt.Fprintln(p.errW, diag.Show(command, e))
	}
}

func (p *printer) writeJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(p.errW, "error: marshal JSON: %v\n", err)
		return
	}
	fmt.Fprintln(p.w, string(data))
}
