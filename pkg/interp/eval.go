package interp

import (
	"fmt"

	"github.com/mesh-intelligence/unitforge/pkg/parse"
	"github.com/mesh-intelligence/unitforge/pkg/registry"
)

func (s *Session) eval(n parse.Node) (Value, error) {
	switch n := n.(type) {
	case *parse.Literal:
		return s.evalLiteral(n)
	case *parse.Variable:
		v, ok := s.vars[n.Name]
		if !ok {
			return Value{}, unknownVariable(n.Name)
		}
		return v, nil
	case *parse.Negation:
		v, err := s.eval(n.Operand)
		if err != nil {
			return Value{}, err
		}
		v.Number = -v.Number
		return v, nil
	case *parse.Binary:
		return s.evalBinary(n)
	case *parse.Assignment:
		return s.evalAssignment(n)
	case *parse.Conversion:
		return s.evalConversion(n)
	default:
		return Value{}, fmt.Errorf("unsupported node %T", n)
	}
}

func (s *Session) evalLiteral(n *parse.Literal) (Value, error) {
	if n.Unit == "" {
		return Value{Number: n.Value}, nil
	}
	b, ok := s.reg.Base(n.Unit)
	if !ok {
		return Value{}, unknownUnit(n.Unit)
	}
	return Value{Number: n.Value * b.Factor, Unit: b.Base}, nil
}

func (s *Session) evalBinary(n *parse.Binary) (Value, error) {
	left, err := s.eval(n.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := s.eval(n.Right)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case parse.Add, parse.Sub:
		// No implicit coercion: a dimensionless number never meets a unit.
		if left.Unit != right.Unit {
			return Value{}, incompatibleUnits(left.Unit, n.Op.String(), right.Unit)
		}
		if n.Op == parse.Add {
			return Value{Number: left.Number + right.Number, Unit: left.Unit}, nil
		}
		return Value{Number: left.Number - right.Number, Unit: left.Unit}, nil

	case parse.Mul, parse.Div:
		unit, err := s.combineUnits(left.Unit, n.Op, right.Unit)
		if err != nil {
			return Value{}, err
		}
		if n.Op == parse.Mul {
			return Value{Number: left.Number * right.Number, Unit: unit}, nil
		}
		return Value{Number: left.Number / right.Number, Unit: unit}, nil

	default:
		return Value{}, fmt.Errorf("unsupported operator %q", n.Op)
	}
}

// combineUnits resolves the unit of a product or quotient. A dimensionless
// side scales the other side without changing its unit.
func (s *Session) combineUnits(left string, op parse.Op, right string) (string, error) {
	switch {
	case left == "" && right == "":
		return "", nil
	case left == "":
		return right, nil
	case right == "":
		return left, nil
	}
	rop := registry.Mul
	if op == parse.Div {
		rop = registry.Div
	}
	unit, ok := s.reg.Derive(left, rop, right)
	if !ok {
		return "", incompatibleUnits(left, op.String(), right)
	}
	return unit, nil
}

func (s *Session) evalAssignment(n *parse.Assignment) (Value, error) {
	if n.Name == parse.LastResult {
		return Value{}, reservedAssignment(n.Name)
	}
	v, err := s.eval(n.Value)
	if err != nil {
		return Value{}, err
	}
	s.vars[n.Name] = v
	return v, nil
}

// evalConversion expresses a value in the requested unit. The result is
// labelled with the requested unit key rather than the base unit.
func (s *Session) evalConversion(n *parse.Conversion) (Value, error) {
	v, err := s.eval(n.Expr)
	if err != nil {
		return Value{}, err
	}
	if n.Target == "" {
		return v, nil
	}
	b, ok := s.reg.Base(n.Target)
	if !ok {
		return Value{}, unknownUnit(n.Target)
	}
	if b.Base != v.Unit {
		return Value{}, unconvertible(v.Unit, n.Target)
	}
	return Value{Number: v.Number / b.Factor, Unit: n.Target}, nil
}
