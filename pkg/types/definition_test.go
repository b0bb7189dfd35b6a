package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefinitionsAdd(t *testing.T) {
	var defs Definitions
	defs.Add("length", "m", UnitDefinition{Name: "meter", Symbol: "m", Factor: 1})
	defs.Add("time", "s", UnitDefinition{Name: "second", Symbol: "s", Factor: 1})
	defs.Add("length", "cm", UnitDefinition{Name: "centimeter", Symbol: "cm", Factor: 0.01})

	require.Len(t, defs.Categories, 2)
	assert.Equal(t, "length", defs.Categories[0].Name)
	assert.Equal(t, "m", defs.Categories[0].Base())
	assert.Equal(t, 3, defs.UnitCount())

	length, ok := defs.Category("length")
	require.True(t, ok)
	cm, ok := length.Unit("cm")
	require.True(t, ok)
	assert.Equal(t, 0.01, cm.Factor)

	_, ok = defs.Category("mass")
	assert.False(t, ok)
}

func TestDefinitionsMerge(t *testing.T) {
	var a, b Definitions
	a.Add("length", "m", UnitDefinition{Name: "meter", Symbol: "m", Factor: 1})
	a.Add("time", "s", UnitDefinition{Name: "second", Symbol: "s", Factor: 1})
	b.Add("time", "hour", UnitDefinition{Name: "hour", Symbol: "h", Factor: 3600})
	b.Add("mass", "kg", UnitDefinition{Name: "kilogram", Symbol: "kg", Factor: 1})

	a.Merge(b)

	require.Len(t, a.Categories, 3)
	assert.Equal(t, []string{"length", "time", "mass"}, []string{
		a.Categories[0].Name, a.Categories[1].Name, a.Categories[2].Name,
	})
	// A merged category replaces the earlier one in place.
	assert.Equal(t, "hour", a.Categories[1].Base())
}

func TestCategoryBaseEmpty(t *testing.T) {
	assert.Equal(t, "", Category{Name: "empty"}.Base())
}

func TestDefinitionErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *DefinitionError
		kind error
		want string
	}{
		{
			name: "duplicated unit",
			err:  NewDuplicatedUnit("m", "area"),
			kind: ErrDuplicatedUnit,
			want: "Duplicated unit found. Unit 'm' of category 'area'",
		},
		{
			name: "unit not found",
			err:  NewUnitNotFound("x", "x * x", "area"),
			kind: ErrUnitNotFound,
			want: "Derived unit not defined. Unit 'x' in expression 'x * x' of category 'area'",
		},
		{
			name: "invalid derived expression",
			err:  NewInvalidDerivedExpression("m ** m", ""),
			kind: ErrInvalidDerivedExpression,
			want: "Invalid derived expression format: 'm ** m'",
		},
		{
			name: "no unit defined",
			err:  NewNoUnitDefined("length"),
			kind: ErrNoUnitDefined,
			want: "No units defined in category 'length'",
		},
		{
			name: "invalid factor",
			err:  NewInvalidFactor("cm", "length", -1),
			kind: ErrInvalidFactor,
			want: "Invalid factor for unit 'cm' of category 'length': factor must be positive, got -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.kind))
		})
	}
}
