package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/unitforge/pkg/types"
)

// unit is a shorthand for building definitions in tests.
type unit struct {
	category string
	key      string
	factor   float64
	derived  string
}

func definitions(units ...unit) types.Definitions {
	var defs types.Definitions
	for _, u := range units {
		factor := u.factor
		if factor == 0 {
			factor = types.DefaultFactor
		}
		defs.Add(u.category, u.key, types.UnitDefinition{
			Name:    u.key,
			Symbol:  u.key,
			Factor:  factor,
			Derived: u.derived,
		})
	}
	return defs
}

func mustBuild(t *testing.T, units ...unit) *Registry {
	t.Helper()
	reg, err := Build(definitions(units...))
	require.NoError(t, err)
	return reg
}

func assertDerive(t *testing.T, reg *Registry, left string, op Op, right, want string) {
	t.Helper()
	got, ok := reg.Derive(left, op, right)
	require.Truef(t, ok, "expected relation %s %s %s", left, op, right)
	assert.Equalf(t, want, got, "relation %s %s %s", left, op, right)
}

func TestBuild_BaseUnits(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "length", key: "cm", factor: 0.01},
		unit{category: "length", key: "km", factor: 1000},
		unit{category: "time", key: "s"},
		unit{category: "time", key: "hour", factor: 3600},
	)

	tests := []struct {
		unit   string
		factor float64
		base   string
	}{
		{"m", 1, "m"},
		{"cm", 0.01, "m"},
		{"km", 1000, "m"},
		{"s", 1, "s"},
		{"hour", 3600, "s"},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			b, ok := reg.Base(tt.unit)
			require.True(t, ok)
			assert.Equal(t, tt.base, b.Base)
			assert.InDelta(t, tt.factor, b.Factor, 1e-12)
		})
	}

	_, ok := reg.Base("furlong")
	assert.False(t, ok)
	assert.Equal(t, 5, reg.Len())
}

func TestBuild_BaseUnitIsReflexive(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "cm", factor: 0.01},
		unit{category: "length", key: "m", factor: 1},
		unit{category: "mass", key: "kg"},
	)

	for _, c := range reg.Definitions().Categories {
		b, ok := reg.Base(c.Base())
		require.True(t, ok)
		assert.Equal(t, BaseUnit{Factor: 1, Base: c.Base()}, b)
	}

	// Sibling factors are rescaled relative to the declared base.
	m, _ := reg.Base("m")
	assert.InDelta(t, 100, m.Factor, 1e-12)
}

func TestBuild_DerivedMultiplication(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "area", key: "m2", derived: "m * m"},
		unit{category: "time", key: "s"},
		unit{category: "speed", key: "mps", derived: "m / s"},
	)

	assertDerive(t, reg, "m", Mul, "m", "m2")
	assertDerive(t, reg, "m2", Div, "m", "m")

	assertDerive(t, reg, "m", Div, "s", "mps")
	assertDerive(t, reg, "mps", Mul, "s", "m")
	assertDerive(t, reg, "m", Div, "mps", "s")

	_, ok := reg.Derive("m", Mul, "s")
	assert.False(t, ok)
}

func TestBuild_CommutativeAndInverse(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "force", key: "N"},
		unit{category: "length", key: "m"},
		unit{category: "energy", key: "J", derived: "N * m"},
		unit{category: "time", key: "s"},
		unit{category: "power", key: "W", derived: "J / s"},
	)

	for _, e := range reg.Relations() {
		if e.Op == Mul {
			assertDerive(t, reg, e.Right, Mul, e.Left, e.Result)
		}
	}

	// J = N * m
	assertDerive(t, reg, "N", Mul, "m", "J")
	assertDerive(t, reg, "m", Mul, "N", "J")
	assertDerive(t, reg, "J", Div, "N", "m")
	assertDerive(t, reg, "J", Div, "m", "N")

	// W = J / s
	assertDerive(t, reg, "J", Div, "s", "W")
	assertDerive(t, reg, "J", Div, "W", "s")
	assertDerive(t, reg, "W", Mul, "s", "J")
	assertDerive(t, reg, "s", Mul, "W", "J")
}

func TestBuild_ChainDerivation(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "area", key: "m2", derived: "m * m"},
		unit{category: "volume", key: "m3", derived: "m * m * m"},
	)

	assertDerive(t, reg, "m", Mul, "m", "m2")
	assertDerive(t, reg, "m2", Mul, "m", "m3")
	assertDerive(t, reg, "m", Mul, "m2", "m3")
	assertDerive(t, reg, "m3", Div, "m", "m2")
	assertDerive(t, reg, "m3", Div, "m2", "m")
}

func TestBuild_ChainDerivationOrderIndependent(t *testing.T) {
	// The volume chain needs m * m, which is only declared afterwards.
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "volume", key: "m3", derived: "m * m * m"},
		unit{category: "area", key: "m2", derived: "m * m"},
	)

	assertDerive(t, reg, "m2", Mul, "m", "m3")
	assertDerive(t, reg, "m3", Div, "m2", "m")
}

func TestBuild_NormalizesToBaseUnits(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "length", key: "km", factor: 1000},
		unit{category: "area", key: "m2", derived: "m * m"},
		unit{category: "area", key: "km2", factor: 1e6, derived: "km * km"},
	)

	assertDerive(t, reg, "m", Mul, "m", "m2")
	_, ok := reg.Derive("km", Mul, "km")
	assert.False(t, ok, "relations are keyed by base units only")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		units []unit
		defs  *types.Definitions
		kind  error
		check func(t *testing.T, err *types.DefinitionError)
	}{
		{
			name: "duplicate unit names the category of the duplicate",
			units: []unit{
				{category: "length", key: "m"},
				{category: "area", key: "m"},
			},
			kind: types.ErrDuplicatedUnit,
			check: func(t *testing.T, err *types.DefinitionError) {
				assert.Equal(t, "m", err.Unit)
				assert.Equal(t, "area", err.Category)
			},
		},
		{
			name: "double star operator",
			units: []unit{
				{category: "length", key: "m"},
				{category: "area", key: "m2", derived: "m ** m"},
			},
			kind: types.ErrInvalidDerivedExpression,
			check: func(t *testing.T, err *types.DefinitionError) {
				assert.Equal(t, "m ** m", err.Expr)
			},
		},
		{
			name: "addition is not a derived operator",
			units: []unit{
				{category: "length", key: "m"},
				{category: "area", key: "m2", derived: "m + m"},
			},
			kind: types.ErrInvalidDerivedExpression,
		},
		{
			name: "even token count",
			units: []unit{
				{category: "length", key: "m"},
				{category: "area", key: "m2", derived: "m * m *"},
			},
			kind: types.ErrInvalidDerivedExpression,
		},
		{
			name: "single token",
			units: []unit{
				{category: "length", key: "m"},
				{category: "area", key: "m2", derived: "m"},
			},
			kind: types.ErrInvalidDerivedExpression,
		},
		{
			name: "undefined unit in derived expression",
			units: []unit{
				{category: "area", key: "m2", derived: "x * x"},
			},
			kind: types.ErrUnitNotFound,
			check: func(t *testing.T, err *types.DefinitionError) {
				assert.Equal(t, "x", err.Unit)
				assert.Equal(t, "x * x", err.Expr)
				assert.Equal(t, "area", err.Category)
			},
		},
		{
			name: "missing intermediate product",
			units: []unit{
				{category: "length", key: "m"},
				{category: "volume", key: "m3", derived: "m * m * m"},
			},
			kind: types.ErrInvalidDerivedExpression,
			check: func(t *testing.T, err *types.DefinitionError) {
				assert.Contains(t, err.Error(), "cannot find intermediate unit for: m * m")
			},
		},
		{
			name: "factor inconsistent with expression",
			units: []unit{
				{category: "length", key: "m"},
				{category: "length", key: "cm", factor: 0.01},
				{category: "area", key: "m2", derived: "m * m"},
				{category: "area", key: "cm2", factor: 1, derived: "cm * cm"},
			},
			kind: types.ErrInvalidDerivedExpression,
		},
		{
			name: "non-positive factor",
			units: []unit{
				{category: "length", key: "m"},
				{category: "length", key: "cm", factor: -0.01},
			},
			kind: types.ErrInvalidFactor,
		},
		{
			name: "empty category",
			defs: &types.Definitions{Categories: []types.Category{{Name: "length"}}},
			kind: types.ErrNoUnitDefined,
			check: func(t *testing.T, err *types.DefinitionError) {
				assert.Equal(t, "length", err.Category)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := definitions(tt.units...)
			if tt.defs != nil {
				defs = *tt.defs
			}
			reg, err := Build(defs)
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)

			var defErr *types.DefinitionError
			require.True(t, errors.As(err, &defErr))
			if tt.check != nil {
				tt.check(t, defErr)
			}
		})
	}
}

func TestBuild_ReportsEveryUnresolvedDerivation(t *testing.T) {
	_, err := Build(definitions(
		unit{category: "length", key: "m"},
		unit{category: "time", key: "s"},
		unit{category: "volume", key: "m3", derived: "m * m * m"},
		unit{category: "jerk", key: "mps3", derived: "m / s / s / s"},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidDerivedExpression))
	assert.Contains(t, err.Error(), "m * m * m")
	assert.Contains(t, err.Error(), "m / s / s / s")
}

func TestBuild_Empty(t *testing.T) {
	reg, err := Build(types.Definitions{})
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.Relations())
}

func TestRegistry_LookupAndSymbol(t *testing.T) {
	var defs types.Definitions
	defs.Add("area", "m2", types.UnitDefinition{Name: "square meter", Symbol: "m²", Factor: 1})
	defs.Add("length", "m", types.UnitDefinition{Name: "meter", Factor: 1})
	reg, err := Build(defs)
	require.NoError(t, err)

	u, category, ok := reg.Lookup("m2")
	require.True(t, ok)
	assert.Equal(t, "area", category)
	assert.Equal(t, "square meter", u.Name)

	assert.Equal(t, "m²", reg.Symbol("m2"))
	assert.Equal(t, "m", reg.Symbol("m"), "falls back to key without a symbol")
	assert.Equal(t, "", reg.Symbol(""))
}

func TestRegistry_RelationsSorted(t *testing.T) {
	reg := mustBuild(t,
		unit{category: "length", key: "m"},
		unit{category: "area", key: "m2", derived: "m * m"},
	)

	got := reg.Relations()
	want := []RelationEntry{
		{Relation: Relation{Left: "m", Op: Mul, Right: "m"}, Result: "m2"},
		{Relation: Relation{Left: "m2", Op: Div, Right: "m"}, Result: "m"},
	}
	assert.Equal(t, want, got)
}
