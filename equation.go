package linsolve

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Coefficient triples
// ============================================================

// Triple holds the coefficients of a·x + b·y = c.
type Triple struct{ A, B, C float64 }

func (t Triple) String() string { return fmt.Sprintf("(%g, %g, %g)", t.A, t.B, t.C) }

// RatTriple is the exact form of Triple.
type RatTriple struct{ A, B, C *big.Rat }

// Float converts the exact triple to float64 coefficients.
func (t RatTriple) Float() Triple {
	a, _ := t.A.Float64()
	b, _ := t.B.Float64()
	c, _ := t.C.Float64()
	return Triple{A: a, B: b, C: c}
}

func (t RatTriple) String() string {
	return fmt.Sprintf("(%s, %s, %s)", t.A.RatString(), t.B.RatString(), t.C.RatString())
}

// RatTripleOf builds an exact triple from integer coefficients.
func RatTripleOf(a, b, c int64) RatTriple {
	return RatTriple{A: big.NewRat(a, 1), B: big.NewRat(b, 1), C: big.NewRat(c, 1)}
}

// ============================================================
// Equation parser
// ============================================================

// ParseEquationExact parses "a x + b y = c" into exact coefficients. The
// input is normalized first, so offsets in a returned *ParseError refer to
// Normalize(s).
func ParseEquationExact(s string) (RatTriple, error) {
	norm := Normalize(s)
	if n := strings.Count(norm, "="); n != 1 {
		offset := -1
		if n > 1 {
			first := strings.Index(norm, "=")
			offset = first + 1 + strings.Index(norm[first+1:], "=")
		}
		return RatTriple{}, parseErr(norm, ReasonMissingEquals, "", offset)
	}

	eq := strings.Index(norm, "=")
	lhs, rhs := norm[:eq], norm[eq+1:]

	a, b, err := extractExact(lhs)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Input = norm
		}
		return RatTriple{}, err
	}
	c, err := parseConstant(norm, rhs, eq+1)
	if err != nil {
		return RatTriple{}, err
	}
	return RatTriple{A: a, B: b, C: c}, nil
}

// ParseEquation parses "a x + b y = c" into float64 coefficients.
func ParseEquation(s string) (Triple, error) {
	t, err := ParseEquationExact(s)
	if err != nil {
		return Triple{}, err
	}
	return t.Float(), nil
}

// parseConstant reads the right-hand side: an optional sign, at most one
// space, then decimal digits.
func parseConstant(norm, rhs string, base int) (*big.Rat, error) {
	lead := len(rhs) - len(strings.TrimLeft(rhs, " "))
	s := strings.TrimSpace(rhs)
	invalid := func() error {
		return parseErr(norm, ReasonInvalidConstant, s, base+lead)
	}

	body := s
	neg := false
	if body != "" && (body[0] == '+' || body[0] == '-') {
		neg = body[0] == '-'
		body = strings.TrimPrefix(body[1:], " ")
	}
	if body == "" {
		return nil, invalid()
	}
	for i := 0; i < len(body); i++ {
		if !isDigit(body[i]) {
			return nil, invalid()
		}
	}

	n, ok := new(big.Int).SetString(body, 10)
	if !ok {
		return nil, invalid()
	}
	if neg {
		n.Neg(n)
	}
	return new(big.Rat).SetInt(n), nil
}
