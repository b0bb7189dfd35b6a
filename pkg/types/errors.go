package types

import (
	"errors"
	"fmt"
)

// Registry construction errors. They are fatal: a registry either builds
// completely or not at all.
var (
	ErrDuplicatedUnit           = errors.New("duplicated unit")
	ErrUnitNotFound             = errors.New("derived unit not defined")
	ErrInvalidDerivedExpression = errors.New("invalid derived expression")
	ErrNoUnitDefined            = errors.New("no units defined")
	ErrInvalidFactor            = errors.New("invalid factor")
)

// DefinitionError describes why a set of definitions could not be turned
// into a registry. Kind is one of the sentinel errors above; errors.Is
// matches against it.
type DefinitionError struct {
	Kind     error
	Unit     string
	Expr     string
	Category string
	// Detail refines InvalidDerivedExpression, e.g. a missing intermediate.
	Detail string
}

func (e *DefinitionError) Error() string {
	switch e.Kind {
	case ErrDuplicatedUnit:
		return fmt.Sprintf("Duplicated unit found. Unit '%s' of category '%s'", e.Unit, e.Category)
	case ErrUnitNotFound:
		return fmt.Sprintf("Derived unit not defined. Unit '%s' in expression '%s' of category '%s'", e.Unit, e.Expr, e.Category)
	case ErrInvalidDerivedExpression:
		if e.Detail != "" {
			return fmt.Sprintf("Invalid derived expression format: '%s' (%s)", e.Expr, e.Detail)
		}
		return fmt.Sprintf("Invalid derived expression format: '%s'", e.Expr)
	case ErrNoUnitDefined:
		return fmt.Sprintf("No units defined in category '%s'", e.Category)
	case ErrInvalidFactor:
		return fmt.Sprintf("Invalid factor for unit '%s' of category '%s': %s", e.Unit, e.Category, e.Detail)
	default:
		return fmt.Sprintf("definition error: %v", e.Kind)
	}
}

func (e *DefinitionError) Unwrap() error {
	return e.Kind
}

// NewDuplicatedUnit reports a unit key that appears more than once.
func NewDuplicatedUnit(unit, category string) *DefinitionError {
	return &DefinitionError{Kind: ErrDuplicatedUnit, Unit: unit, Category: category}
}

// NewUnitNotFound reports a derived expression referencing an unknown unit.
func NewUnitNotFound(unit, expr, category string) *DefinitionError {
	return &DefinitionError{Kind: ErrUnitNotFound, Unit: unit, Expr: expr, Category: category}
}

// NewInvalidDerivedExpression reports a malformed or unresolvable derived
// expression.
func NewInvalidDerivedExpression(expr, detail string) *DefinitionError {
	return &DefinitionError{Kind: ErrInvalidDerivedExpression, Expr: expr, Detail: detail}
}

// NewNoUnitDefined reports an empty category.
func NewNoUnitDefined(category string) *DefinitionError {
	return &DefinitionError{Kind: ErrNoUnitDefined, Category: category}
}

// NewInvalidFactor reports a factor that is not a positive real.
func NewInvalidFactor(unit, category string, factor float64) *DefinitionError {
	return &DefinitionError{
		Kind:     ErrInvalidFactor,
		Unit:     unit,
		Category: category,
		Detail:   fmt.Sprintf("factor must be positive, got %g", factor),
	}
}
