// Package registry turns unit definitions into the lookup tables used to
// evaluate unit-aware expressions: a base-unit normalization table and a
// closed algebra of derived-unit relations.
//
// A Registry is built once and never mutated afterwards, so it may be shared
// by any number of concurrent sessions without locking.
package registry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// Op is an operator of the derived-unit algebra.
type Op string

// Operators accepted in derived expressions.
const (
	Mul Op = "*"
	Div Op = "/"
)

// factorTolerance bounds the relative mismatch allowed between a derived
// unit's declared factor and the factor implied by its expression.
const factorTolerance = 1e-9

// BaseUnit normalizes a unit to its category's base unit: a quantity of 1 in
// the unit equals Factor in Base.
type BaseUnit struct {
	Factor float64
	Base   string
}

// Relation is the key of the derived-unit algebra: Left Op Right.
type Relation struct {
	Left  string
	Op    Op
	Right string
}

func (r Relation) String() string {
	return fmt.Sprintf("%s %s %s", r.Left, r.Op, r.Right)
}

// Registry holds the normalization table and derived-unit algebra built from
// a set of definitions.
type Registry struct {
	defs     types.Definitions
	base     map[string]BaseUnit
	category map[string]string
	units    map[string]types.Unit
	derived  map[Relation]string
}

// Build constructs a Registry from defs. Construction is all-or-nothing; the
// returned error wraps one of the types.Err* construction sentinels.
func Build(defs types.Definitions) (*Registry, error) {
	r := &Registry{
		defs:     defs,
		base:     make(map[string]BaseUnit),
		category: make(map[string]string),
		units:    make(map[string]types.Unit),
		derived:  make(map[Relation]string),
	}
	if err := r.buildBaseUnits(); err != nil {
		return nil, err
	}
	if err := r.buildDerivedUnits(); err != nil {
		return nil, err
	}
	return r, nil
}

// buildBaseUnits records (factor, base) for every unit and enforces that unit
// keys are globally unique. Factors are rescaled so that the base unit itself
// always has factor 1.
func (r *Registry) buildBaseUnits() error {
	for _, c := range r.defs.Categories {
		if len(c.Units) == 0 {
			return types.NewNoUnitDefined(c.Name)
		}
		for _, u := range c.Units {
			if !(u.Factor > 0) || math.IsInf(u.Factor, 0) {
				return types.NewInvalidFactor(u.Key, c.Name, u.Factor)
			}
		}

		base := c.Units[0]
		for _, u := range c.Units {
			if _, dup := r.base[u.Key]; dup {
				return types.NewDuplicatedUnit(u.Key, c.Name)
			}
			factor := u.Factor / base.Factor
			if u.Key == base.Key {
				factor = 1
			}
			r.base[u.Key] = BaseUnit{Factor: factor, Base: base.Key}
			r.category[u.Key] = c.Name
			r.units[u.Key] = u
		}
	}
	return nil
}

// derivation is a derived unit waiting to be folded into the algebra.
type derivation struct {
	unit     types.Unit
	category string
	tokens   []string
}

// buildDerivedUnits resolves every derived definition. Definitions whose
// intermediate products are not registered yet are retried on the next pass;
// resolution stops when everything is resolved or a pass makes no progress.
func (r *Registry) buildDerivedUnits() error {
	var pending []derivation
	for _, c := range r.defs.Categories {
		for _, u := range c.Units {
			if !u.IsDerived() {
				continue
			}
			tokens, err := r.tokenizeDerived(u.Derived, c.Name)
			if err != nil {
				return err
			}
			pending = append(pending, derivation{unit: u, category: c.Name, tokens: tokens})
		}
	}

	for len(pending) > 0 {
		var deferred []derivation
		var errs []error
		for _, d := range pending {
			staged, err := r.stage(d)
			if err != nil {
				if m, ok := err.(missingIntermediate); ok {
					deferred = append(deferred, d)
					errs = append(errs, m.DefinitionError)
					continue
				}
				return err
			}
			for rel, result := range staged {
				r.derived[rel] = result
			}
		}

		if len(deferred) == len(pending) {
			if len(errs) == 1 {
				return errs[0]
			}
			var result *multierror.Error
			for _, err := range errs {
				result = multierror.Append(result, err)
			}
			return result.ErrorOrNil()
		}
		pending = deferred
	}
	return nil
}

// tokenizeDerived splits a derived expression into alternating unit and
// operator tokens and validates its shape and unit references.
func (r *Registry) tokenizeDerived(expr, category string) ([]string, error) {
	tokens := strings.Fields(expr)
	if len(tokens) < 3 || len(tokens)%2 == 0 {
		return nil, types.NewInvalidDerivedExpression(expr, "")
	}
	if _, ok := r.base[tokens[0]]; !ok {
		return nil, types.NewUnitNotFound(tokens[0], expr, category)
	}
	for i := 1; i < len(tokens); i += 2 {
		if op := Op(tokens[i]); op != Mul && op != Div {
			return nil, types.NewInvalidDerivedExpression(expr, "")
		}
		if _, ok := r.base[tokens[i+1]]; !ok {
			return nil, types.NewUnitNotFound(tokens[i+1], expr, category)
		}
	}
	return tokens, nil
}

// missingIntermediate marks a derivation that may succeed on a later pass.
type missingIntermediate struct {
	*types.DefinitionError
}

// stage folds d's chain left to right without touching the registry and
// returns the relations it would register. Intermediate products must
// already be registered, either by an earlier derivation or by an earlier
// step of this chain.
func (r *Registry) stage(d derivation) (map[Relation]string, error) {
	staged := make(map[Relation]string)
	lookup := func(rel Relation) (string, bool) {
		if res, ok := staged[rel]; ok {
			return res, true
		}
		res, ok := r.derived[rel]
		return res, ok
	}
	set := func(rel Relation, result string) {
		staged[rel] = result
	}

	tokens := d.tokens
	target := r.base[d.unit.Key].Base
	current := r.base[tokens[0]].Base
	factor := r.base[tokens[0]].Factor

	for i := 1; i < len(tokens); i += 2 {
		op := Op(tokens[i])
		next := r.base[tokens[i+1]]

		var result string
		if i == len(tokens)-2 {
			result = target
		} else {
			res, ok := lookup(Relation{Left: current, Op: op, Right: next.Base})
			if !ok {
				return nil, missingIntermediate{types.NewInvalidDerivedExpression(d.unit.Derived,
					fmt.Sprintf("cannot find intermediate unit for: %s %s %s", current, op, next.Base))}
			}
			result = res
		}

		relate(set, current, op, next.Base, result)
		if op == Mul {
			factor *= next.Factor
		} else {
			factor /= next.Factor
		}
		current = result
	}

	if want := r.base[d.unit.Key].Factor; !approxEqual(factor, want) {
		return nil, types.NewInvalidDerivedExpression(d.unit.Derived,
			fmt.Sprintf("factor of '%s' is %g but the expression implies %g", d.unit.Key, want, factor))
	}
	return staged, nil
}

// relate registers result = a op b together with every inverse relation
// derivable from it.
func relate(set func(Relation, string), a string, op Op, b, result string) {
	switch op {
	case Mul:
		set(Relation{Left: a, Op: Mul, Right: b}, result)
		set(Relation{Left: b, Op: Mul, Right: a}, result)
		set(Relation{Left: result, Op: Div, Right: a}, b)
		set(Relation{Left: result, Op: Div, Right: b}, a)
	case Div:
		set(Relation{Left: a, Op: Div, Right: b}, result)
		set(Relation{Left: a, Op: Div, Right: result}, b)
		set(Relation{Left: result, Op: Mul, Right: b}, a)
		set(Relation{Left: b, Op: Mul, Right: result}, a)
	}
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= factorTolerance*math.Max(math.Abs(a), math.Abs(b))
}

// Base returns the normalization entry for a unit key.
func (r *Registry) Base(unit string) (BaseUnit, bool) {
	b, ok := r.base[unit]
	return b, ok
}

// Derive returns the unit produced by left op right, if registered. Both
// operands are expected to be base unit keys.
func (r *Registry) Derive(left string, op Op, right string) (string, bool) {
	res, ok := r.derived[Relation{Left: left, Op: op, Right: right}]
	return res, ok
}

// Lookup returns the definition of a unit key and the category declaring it.
func (r *Registry) Lookup(unit string) (types.Unit, string, bool) {
	u, ok := r.units[unit]
	if !ok {
		return types.Unit{}, "", false
	}
	return u, r.category[unit], true
}

// Symbol returns the display symbol of a unit key, falling back to the key
// itself for unknown units and units without a symbol.
func (r *Registry) Symbol(unit string) string {
	if u, ok := r.units[unit]; ok && u.Symbol != "" {
		return u.Symbol
	}
	return unit
}

// Definitions returns the definitions the registry was built from.
func (r *Registry) Definitions() types.Definitions {
	return r.defs
}

// Len returns the number of known units.
func (r *Registry) Len() int {
	return len(r.base)
}

// RelationEntry is one row of the derived-unit algebra.
type RelationEntry struct {
	Relation
	Result string
}

// Relations returns the derived-unit algebra sorted by left operand,
// operator, then right operand.
func (r *Registry) Relations() []RelationEntry {
	out := make([]RelationEntry, 0, len(r.derived))
	for rel, res := range r.derived {
		out = append(out, RelationEntry{Relation: rel, Result: res})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		if a.Op != b.Op {
			return a.Op < b.Op
		}
		return a.Right < b.Right
	})
	return out
}
