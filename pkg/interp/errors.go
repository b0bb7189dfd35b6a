package interp

import (
	"errors"
	"fmt"
)

// Evaluation errors. Each aborts only the current command.
var (
	ErrUnknownUnit                = errors.New("unknown unit")
	ErrUnknownVariable            = errors.New("unknown variable")
	ErrIncompatibleUnits          = errors.New("incompatible units")
	ErrReservedVariableAssignment = errors.New("cannot assign to reserved variable")
	ErrUnconvertibleUnit          = errors.New("unconvertible unit")
)

func unknownUnit(symbol string) error {
	return fmt.Errorf("%w: %s", ErrUnknownUnit, symbol)
}

func unknownVariable(name string) error {
	return fmt.Errorf("%w: cannot find variable `%s` in scope", ErrUnknownVariable, name)
}

func incompatibleUnits(left, op, right string) error {
	return fmt.Errorf("%w: cannot evaluate %q %s %q", ErrIncompatibleUnits, left, op, right)
}

func reservedAssignment(name string) error {
	return fmt.Errorf("%w `%s`", ErrReservedVariableAssignment, name)
}

// unconvertible matches both ErrUnconvertibleUnit and ErrIncompatibleUnits.
func unconvertible(from, target string) error {
	return fmt.Errorf("%w: cannot convert %q to %q: %w", ErrUnconvertibleUnit, from, target, ErrIncompatibleUnits)
}
