// Package reader turns Scheme source text into ast.Expr trees — a
// surface lexer/parser that collaborates with the evaluation core
// rather than being part of it, defined here so cmd/scheme has
// something to drive the core with.
package reader

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokQuote
	tokDot
	tokIdent
	tokInt
	tokFloat
	tokBool
	tokString
)

type token struct {
	kind tokenKind
	text string
	ival int64
	fval float64
	bval bool
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) peek() (rune, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	return r
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')' || r == '"' || r == ';' || r == '\''
}

func (l *lexer) skipAtmosphere() {
	for {
		r, ok := l.peek()
		if !ok {
			return
		}
		if unicode.IsSpace(r) {
			l.pos++
			continue
		}
		if r == ';' {
			for {
				r, ok := l.peek()
				if !ok || r == '\n' {
					break
				}
				l.pos++
			}
			continue
		}
		return
	}
}

// next returns the next token, or a Read error for malformed input
// (unterminated string, invalid numeric literal).
func (l *lexer) next() (token, error) {
	l.skipAtmosphere()
	r, ok := l.peek()
	if !ok {
		return token{kind: tokEOF}, nil
	}
	switch r {
	case '(':
		l.pos++
		return token{kind: tokLParen}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen}, nil
	case '\'':
		l.pos++
		return token{kind: tokQuote}, nil
	case '"':
		return l.lexString()
	}
	return l.lexAtom()
}

func (l *lexer) lexString() (token, error) {
	l.pos++ // opening quote
	var sb strings.Builder
	for {
		r, ok := l.peek()
		if !ok {
			return token{}, schemeerr.New(schemeerr.Read, "unterminated string literal")
		}
		l.pos++
		if r == '"' {
			return token{kind: tokString, text: sb.String()}, nil
		}
		if r == '\\' {
			esc, ok := l.peek()
			if !ok {
				return token{}, schemeerr.New(schemeerr.Read, "unterminated string literal")
			}
			l.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteRune(esc)
			}
			continue
		}
		sb.WriteRune(r)
	}
}

func (l *lexer) lexAtom() (token, error) {
	start := l.pos
	for {
		r, ok := l.peek()
		if !ok || isDelimiter(r) {
			break
		}
		l.pos++
	}
	text := string(l.src[start:l.pos])

	if text == "." {
		return token{kind: tokDot}, nil
	}
	if text == "#t" {
		return token{kind: tokBool, bval: true}, nil
	}
	if text == "#f" {
		return token{kind: tokBool, bval: false}, nil
	}
	if looksNumeric(text) {
		if !strings.ContainsAny(text, ".eE") {
			iv, err := strconv.ParseInt(text, 10, 64)
			if err == nil {
				return token{kind: tokInt, ival: iv}, nil
			}
			if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
				return token{}, schemeerr.New(schemeerr.Read, "numeric literal overflows 64-bit integer: %s", text)
			}
		} else if fv, ok := parseFloat(text); ok {
			return token{kind: tokFloat, fval: fv}, nil
		}
	}
	return token{kind: tokIdent, text: text}, nil
}

func looksNumeric(text string) bool {
	if text == "" {
		return false
	}
	i := 0
	if text[0] == '+' || text[0] == '-' {
		i++
	}
	if i >= len(text) {
		return false
	}
	sawDigit := false
	for ; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			sawDigit = true
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			continue
		}
		return false
	}
	return sawDigit
}

func parseFloat(text string) (float64, bool) {
	if !looksNumeric(text) {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
