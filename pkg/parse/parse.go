// Package parse turns a command into an expression tree.
//
// The grammar, from lowest to highest precedence:
//
//	statement := expr ('>>' identifier)?
//	expr      := identifier '=' expr | sum
//	sum       := term (('+' | '-') term)*
//	term      := unary (('*' | '/') unary)*
//	unary     := '-'* atom
//	atom      := literal | '(' expr ')' | identifier | '_'
//	literal   := number identifier?
//
// The parser knows nothing about units: unit keys stay opaque strings until
// evaluation. It holds no state between calls.
package parse

import (
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/unitforge/pkg/diag"
)

// Parse parses a single command. On failure the error is a *diag.ErrorList
// whose entries carry the offending byte ranges.
func Parse(src string) (Node, error) {
	toks, errs := lex(src)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	n, perr := p.statement()
	if perr != nil {
		return nil, &diag.ErrorList{Entries: []*diag.Error{perr}}
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if i := p.pos + offset; i < len(p.toks) {
		return p.toks[i]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func unexpected(t token, want string) *diag.Error {
	return diag.NewError(t.begin, t.end, fmt.Sprintf("unexpected %s, expected %s", t.describe(), want))
}

func (p *parser) statement() (Node, *diag.Error) {
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokConvert {
		p.next()
		target := p.next()
		if target.kind != tokIdent {
			return nil, unexpected(target, "unit after '>>'")
		}
		n = &Conversion{
			Span:   diag.Span{Begin: n.Range().Begin, End: target.end},
			Expr:   n,
			Target: target.text,
		}
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, unexpected(t, "operator or end of input")
	}
	return n, nil
}

func (p *parser) expr() (Node, *diag.Error) {
	head := p.peek()
	if (head.kind == tokIdent || head.kind == tokLast) && p.peekAt(1).kind == tokAssign {
		p.next()
		p.next()
		value, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &Assignment{
			Span:  diag.Span{Begin: head.begin, End: value.Range().End},
			Name:  head.text,
			Value: value,
		}, nil
	}
	return p.sum()
}

func (p *parser) sum() (Node, *diag.Error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().kind {
		case tokPlus:
			op = Add
		case tokMinus:
			op = Sub
		default:
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary(op, left, right)
	}
}

func (p *parser) term() (Node, *diag.Error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().kind {
		case tokStar:
			op = Mul
		case tokSlash:
			op = Div
		default:
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binary(op, left, right)
	}
}

func binary(op Op, left, right Node) *Binary {
	return &Binary{
		Span:  diag.Span{Begin: left.Range().Begin, End: right.Range().End},
		Op:    op,
		Left:  left,
		Right: right,
	}
}

func (p *parser) unary() (Node, *diag.Error) {
	var minuses []token
	for p.peek().kind == tokMinus {
		minuses = append(minuses, p.next())
	}
	n, err := p.atom()
	if err != nil {
		return nil, err
	}
	for i := len(minuses) - 1; i >= 0; i-- {
		n = &Negation{
			Span:    diag.Span{Begin: minuses[i].begin, End: n.Range().End},
			Operand: n,
		}
	}
	return n, nil
}

func (p *parser) atom() (Node, *diag.Error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, diag.NewError(t.begin, t.end, fmt.Sprintf("invalid number %q", t.text))
		}
		lit := &Literal{Span: diag.Span{Begin: t.begin, End: t.end}, Value: value}
		if u := p.peek(); u.kind == tokIdent {
			p.next()
			lit.Unit = u.text
			lit.Span.End = u.end
		}
		return lit, nil
	case tokLParen:
		n, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, unexpected(closing, "')'")
		}
		return n, nil
	case tokIdent, tokLast:
		return &Variable{Span: diag.Span{Begin: t.begin, End: t.end}, Name: t.text}, nil
	default:
		return nil, unexpected(t, "number, variable or '('")
	}
}
