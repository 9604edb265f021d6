package linsolve

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification with errors.Is.
var (
	ErrParse    = errors.New("parse error")
	ErrSingular = errors.New("singular system")

	// ErrOutOfRange reports an exact solution with no finite float64 form.
	ErrOutOfRange = errors.New("solution out of float64 range")
)

// ============================================================
// ParseError: malformed equation text
// ============================================================

// Reason names why an equation could not be parsed.
type Reason string

const (
	ReasonMissingEquals     Reason = "missing '='"
	ReasonInvalidConstant   Reason = "invalid constant"
	ReasonUnrecognizedToken Reason = "unrecognized token"
	ReasonDuplicateVariable Reason = "duplicate variable"
	ReasonExpectedTerm      Reason = "expected term"
)

// ParseError reports malformed equation text. Equation is 1 or 2 when the
// error came out of Solve or SolveExact, and 0 for a standalone parse.
// Offset is a byte offset into the normalized equation, or -1 when the
// failure is not tied to a position.
type ParseError struct {
	Equation int
	Input    string
	Reason   Reason
	Token    string
	Offset   int
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Reason)
	if e.Token != "" {
		msg += fmt.Sprintf(" %q", e.Token)
	}
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Equation > 0 {
		msg = fmt.Sprintf("equation %d: %s", e.Equation, msg)
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func parseErr(input string, reason Reason, token string, offset int) *ParseError {
	return &ParseError{Input: input, Reason: reason, Token: token, Offset: offset}
}

// ============================================================
// SingularSystemError: zero determinant
// ============================================================

// SystemKind classifies a 2x2 system by its solution set.
type SystemKind int

const (
	Unique       SystemKind = iota // exactly one solution
	Inconsistent                   // parallel lines, no solution
	Dependent                      // coincident lines, infinitely many
)

func (k SystemKind) String() string {
	switch k {
	case Unique:
		return "unique"
	case Inconsistent:
		return "inconsistent"
	case Dependent:
		return "dependent"
	default:
		return "unknown"
	}
}

// SingularSystemError is returned when the coefficient matrix has a zero
// determinant. No approximate solution accompanies it.
type SingularSystemError struct {
	Kind SystemKind
	Det  float64
}

func (e *SingularSystemError) Error() string {
	switch e.Kind {
	case Inconsistent:
		return "singular system: no solution (inconsistent)"
	case Dependent:
		return "singular system: infinitely many solutions (dependent)"
	default:
		return "singular system"
	}
}

func (e *SingularSystemError) Is(target error) bool { return target == ErrSingular }

// WithEquation tags a parse error with the 1-based equation index. Other
// errors pass through untouched.
func WithEquation(err error, index int) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		tagged := *pe
		tagged.Equation = index
		return &tagged
	}
	return err
}
