package linsolve

import (
	"fmt"
	"strings"
)

// Normalize collapses every run of whitespace, newlines included, into a
// single space and trims both ends.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ============================================================
// Tokens
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokVar
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "EOF"
	case tokNumber:
		return "NUMBER"
	case tokPlus:
		return "PLUS"
	case tokMinus:
		return "MINUS"
	case tokVar:
		return "VAR"
	default:
		return fmt.Sprintf("tokenKind(%d)", int(k))
	}
}

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// ============================================================
// Lexer
// ============================================================

// lex scans the left-hand side of an equation. Spaces separate tokens but
// carry no meaning, so "2 x" and "2x" lex the same.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, text: "+", offset: i})
			i++
		case c == '-':
			toks = append(toks, token{kind: tokMinus, text: "-", offset: i})
			i++
		case c == 'x' || c == 'y':
			toks = append(toks, token{kind: tokVar, text: string(c), offset: i})
			i++
		case isDigit(c) || c == '.':
			end, ok := scanNumber(src, i)
			if !ok {
				return nil, parseErr(src, ReasonUnrecognizedToken, src[i:end], i)
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:end], offset: i})
			i = end
		default:
			end := i + 1
			for end < len(src) && !isDelimiter(src[end]) {
				end++
			}
			return nil, parseErr(src, ReasonUnrecognizedToken, src[i:end], i)
		}
	}
	toks = append(toks, token{kind: tokEOF, offset: len(src)})
	return toks, nil
}

// scanNumber accepts digits ['.' digits] or '.' digits starting at i and
// returns the end offset. A dot must be followed by at least one digit.
func scanNumber(src string, i int) (int, bool) {
	j := i
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	if j < len(src) && src[j] == '.' {
		j++
		frac := j
		for j < len(src) && isDigit(src[j]) {
			j++
		}
		if j == frac {
			return j, false
		}
	}
	return j, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDelimiter(c byte) bool {
	return c == ' ' || c == '+' || c == '-' || c == 'x' || c == 'y' || isDigit(c)
}
