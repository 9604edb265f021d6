package linsolve

import (
	"math/big"
)

// ============================================================
// Term: one signed occurrence of a variable
// ============================================================

// Variable is one of the two unknowns.
type Variable byte

const (
	VarX Variable = 'x'
	VarY Variable = 'y'
)

func (v Variable) String() string { return string(rune(v)) }

// Term is a sign paired with an optional explicit magnitude and a variable.
// Magnitude is nil when the coefficient is implicit ("x", "-y").
type Term struct {
	Sign      int
	Magnitude *big.Rat
	Var       Variable

	offset int
}

// Coefficient returns the signed coefficient the term contributes.
func (t Term) Coefficient() *big.Rat {
	c := big.NewRat(1, 1)
	if t.Magnitude != nil {
		c.Set(t.Magnitude)
	}
	if t.Sign < 0 {
		c.Neg(c)
	}
	return c
}

// ============================================================
// Term extractor (recursive descent)
// ============================================================
//
//	expr      := [leadsign] term (opsign term)*
//	term      := [sign magnitude | magnitude] variable
//	variable  := 'x' | 'y'

type termParser struct {
	src  string
	toks []token
	pos  int
}

func (p *termParser) peek() token { return p.toks[p.pos] }

func (p *termParser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *termParser) unexpected(t token) *ParseError {
	if t.kind == tokEOF {
		return parseErr(p.src, ReasonExpectedTerm, "", t.offset)
	}
	return parseErr(p.src, ReasonUnrecognizedToken, t.text, t.offset)
}

// ParseTerms splits a normalized left-hand side into its terms, in source
// order. Each variable may appear at most once.
func ParseTerms(lhs string) ([]Term, error) {
	toks, err := lex(lhs)
	if err != nil {
		return nil, err
	}
	p := &termParser{src: lhs, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, parseErr(lhs, ReasonExpectedTerm, "", 0)
	}

	sign := 1
	if k := p.peek().kind; k == tokPlus || k == tokMinus {
		if p.advance().kind == tokMinus {
			sign = -1
		}
	}

	var terms []Term
	seen := map[Variable]bool{}
	for {
		t, err := p.term(sign)
		if err != nil {
			return nil, err
		}
		if seen[t.Var] {
			return nil, parseErr(lhs, ReasonDuplicateVariable, t.Var.String(), t.offset)
		}
		seen[t.Var] = true
		terms = append(terms, t)

		next := p.peek()
		switch next.kind {
		case tokEOF:
			return terms, nil
		case tokPlus:
			p.advance()
			sign = 1
		case tokMinus:
			p.advance()
			sign = -1
		default:
			return nil, p.unexpected(next)
		}
	}
}

func (p *termParser) term(sign int) (Term, error) {
	t := Term{Sign: sign}

	// a sign inside a term belongs to its magnitude, so a number must follow
	tok := p.peek()
	if tok.kind == tokPlus || tok.kind == tokMinus {
		if p.toks[p.pos+1].kind != tokNumber {
			return Term{}, p.unexpected(tok)
		}
		p.advance()
		if tok.kind == tokMinus {
			t.Sign = -t.Sign
		}
		tok = p.peek()
	}

	if tok.kind == tokNumber {
		p.advance()
		text := tok.text
		if text[0] == '.' {
			text = "0" + text
		}
		m, ok := new(big.Rat).SetString(text)
		if !ok {
			return Term{}, parseErr(p.src, ReasonUnrecognizedToken, tok.text, tok.offset)
		}
		if p.peek().kind != tokVar {
			// a bare number on the left-hand side is not a term
			return Term{}, parseErr(p.src, ReasonUnrecognizedToken, tok.text, tok.offset)
		}
		t.Magnitude = m
		tok = p.peek()
	}

	if tok.kind != tokVar {
		return Term{}, p.unexpected(tok)
	}
	p.advance()
	t.Var = Variable(tok.text[0])
	t.offset = tok.offset
	return t, nil
}

// extractExact sums the terms of lhs into exact coefficients of x and y.
// An absent variable yields 0.
func extractExact(lhs string) (a, b *big.Rat, err error) {
	terms, err := ParseTerms(lhs)
	if err != nil {
		return nil, nil, err
	}
	a, b = new(big.Rat), new(big.Rat)
	for _, t := range terms {
		switch t.Var {
		case VarX:
			a = t.Coefficient()
		case VarY:
			b = t.Coefficient()
		}
	}
	return a, b, nil
}

// ExtractTerms returns the coefficients of x and y on a normalized
// left-hand side. A variable that does not appear has coefficient 0.
func ExtractTerms(lhs string) (a, b float64, err error) {
	ar, br, err := extractExact(lhs)
	if err != nil {
		return 0, 0, err
	}
	a, _ = ar.Float64()
	b, _ = br.Float64()
	return a, b, nil
}
