package parse

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/unitforge/pkg/diag"
)

// LastResult is the reserved variable holding the previous successful result.
const LastResult = "_"

// Op is a binary arithmetic operator.
type Op byte

// Binary operators.
const (
	Add Op = '+'
	Sub Op = '-'
	Mul Op = '*'
	Div Op = '/'
)

func (op Op) String() string {
	return string(rune(op))
}

// Node is a node of the expression tree.
type Node interface {
	// Range returns the bytes of the command the node was parsed from.
	Range() diag.Span
	node()
}

// Literal is a number with an optional unit key. Unit is "" for a
// dimensionless number.
type Literal struct {
	Span  diag.Span
	Value float64
	Unit  string
}

// Variable references a session variable, possibly LastResult.
type Variable struct {
	Span diag.Span
	Name string
}

// Negation is unary minus.
type Negation struct {
	Span    diag.Span
	Operand Node
}

// Binary is a binary arithmetic operation.
type Binary struct {
	Span  diag.Span
	Op    Op
	Left  Node
	Right Node
}

// Assignment binds the value of Value to Name. It is itself an expression
// whose result is the assigned value.
type Assignment struct {
	Span  diag.Span
	Name  string
	Value Node
}

// Conversion expresses the result of Expr in the Target unit. An empty
// Target leaves the result unchanged.
type Conversion struct {
	Span   diag.Span
	Expr   Node
	Target string
}

func (n *Literal) Range() diag.Span { return n.Span }
func (n *Variable) Range() diag.Span { return n.Span }
func (n *Negation) Range() diag.Span { return n.Span }
func (n *Binary) Range() diag.Span { return n.Span }
func (n *Assignment) Range() diag.Span { return n.Span }
func (n *Conversion) Range() diag.Span { return n.Span }

func (*Literal) node() {}
func (*Variable) node() {}
func (*Negation) node() {}
func (*Binary) node() {}
func (*Assignment) node() {}
func (*Conversion) node() {}

// String renders n in a fully parenthesized prefix form, e.g. "+(1 m,*(2,x))".
func String(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		sb.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		if n.Unit != "" {
			sb.WriteByte(' ')
			sb.WriteString(n.Unit)
		}
	case *Variable:
		sb.WriteString(n.Name)
	case *Negation:
		sb.WriteString("-(")
		writeNode(sb, n.Operand)
		sb.WriteByte(')')
	case *Binary:
		sb.WriteString(n.Op.String())
		sb.WriteByte('(')
		writeNode(sb, n.Left)
		sb.WriteByte(',')
		writeNode(sb, n.Right)
		sb.WriteByte(')')
	case *Assignment:
		sb.WriteString("=(")
		sb.WriteString(n.Name)
		sb.WriteByte(',')
		writeNode(sb, n.Value)
		sb.WriteByte(')')
	case *Conversion:
		sb.WriteString(">>(")
		writeNode(sb, n.Expr)
		sb.WriteByte(',')
		sb.WriteString(n.Target)
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<nil>")
	}
}
