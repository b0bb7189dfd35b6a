// Package interp evaluates parsed commands against a unit registry and a
// per-session variable environment.
package interp

import (
	"sort"

	"github.com/mesh-intelligence/unitforge/pkg/diag"
	"github.com/mesh-intelligence/unitforge/pkg/parse"
	"github.com/mesh-intelligence/unitforge/pkg/registry"
)

// Value is a number tagged with a unit key. Unit is "" for a dimensionless
// number.
type Value struct {
	Number float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// Binding is a named variable of a session.
type Binding struct {
	Name string
	Value
}

// Session owns the variable environment of one interpreter. The registry is
// shared and read-only; the environment belongs to the session alone, so a
// Session must not be used from several goroutines at once.
type Session struct {
	reg  *registry.Registry
	vars map[string]Value
}

// NewSession creates a session with an empty environment.
func NewSession(reg *registry.Registry) *Session {
	return &Session{
		reg:  reg,
		vars: make(map[string]Value),
	}
}

// Registry returns the registry the session evaluates against.
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// Execute parses and evaluates one command. On success the result is also
// stored as the last result. On failure the error is a *diag.ErrorList:
// parse errors are returned as produced by the parser, an evaluation error
// is attributed to the whole command. The last result is left untouched on
// failure; assignments already performed by the failed command are kept.
func (s *Session) Execute(command string) (Value, error) {
	n, err := parse.Parse(command)
	if err != nil {
		return Value{}, err
	}

	v, err := s.eval(n)
	if err != nil {
		return Value{}, &diag.ErrorList{Entries: []*diag.Error{diag.Wrap(err, 0, len(command))}}
	}
	s.vars[parse.LastResult] = v
	return v, nil
}

// Lookup returns the value bound to name.
func (s *Session) Lookup(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Variables returns every binding sorted by name.
func (s *Session) Variables() []Binding {
	out := make([]Binding, 0, len(s.vars))
	for name, v := range s.vars {
		out = append(out, Binding{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
