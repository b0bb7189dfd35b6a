package parse

import (
	"fmt"
	"unicode/utf8"

	"github.com/mesh-intelligence/unitforge/pkg/diag"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokLast
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
	tokAssign
	tokConvert
)

type token struct {
	kind  tokenKind
	text  string
	begin int
	end   int
}

// describe names a token for error messages.
func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

var punctuation = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'(': tokLParen,
	')': tokRParen,
	'=': tokAssign,
}

// lex splits src into tokens. Lexing continues past bad input so that every
// offending character is reported at once.
func lex(src string) ([]token, *diag.ErrorList) {
	var (
		toks []token
		errs diag.ErrorList
	)
	pos := 0
	emit := func(kind tokenKind, begin, end int) {
		toks = append(toks, token{kind: kind, text: src[begin:end], begin: begin, end: end})
	}

	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			pos++
		case isDigit(c):
			begin := pos
			for pos < len(src) && isDigit(src[pos]) {
				pos++
			}
			if pos < len(src) && src[pos] == '.' {
				pos++
				if pos >= len(src) || !isDigit(src[pos]) {
					errs.Add(diag.NewError(begin, pos, "expected digit after decimal point"))
					continue
				}
				for pos < len(src) && isDigit(src[pos]) {
					pos++
				}
			}
			emit(tokNumber, begin, pos)
		case isLetter(c):
			begin := pos
			for pos < len(src) && (isLetter(src[pos]) || isDigit(src[pos]) || src[pos] == '_') {
				pos++
			}
			emit(tokIdent, begin, pos)
		case c == '_':
			emit(tokLast, pos, pos+1)
			pos++
		case c == '>':
			if pos+1 < len(src) && src[pos+1] == '>' {
				emit(tokConvert, pos, pos+2)
				pos += 2
				continue
			}
			errs.Add(diag.NewError(pos, pos+1, "unexpected '>', did you mean '>>'?"))
			pos++
		default:
			if kind, ok := punctuation[c]; ok {
				emit(kind, pos, pos+1)
				pos++
				continue
			}
			r, size := utf8.DecodeRuneInString(src[pos:])
			errs.Add(diag.NewError(pos, pos+size, fmt.Sprintf("unexpected character %q", r)))
			pos += size
		}
	}
	toks = append(toks, token{kind: tokEOF, begin: len(src), end: len(src)})
	return toks, &errs
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
