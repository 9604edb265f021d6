// Package linsolve turns two free-form linear equations in x and y into a
// 2x2 system and solves it.
//
// Design goals:
//   - One explicit grammar, scanned by a single lexer and recursive-descent pass
//   - Exact rational arithmetic (math/big.Rat), converted to float64 only at the end
//   - Typed errors that name the failing equation and the reason
//   - Pure functions: no shared state, safe for concurrent callers
//
// Accepted input per equation:
//
//	[sign] [number] x [sign [number] y] = integer
//
// with terms in either order and arbitrary whitespace between tokens.
package linsolve

// ============================================================
// Public entry points
// ============================================================

// Solve parses both equations and returns the unique solution (x, y).
// Parse failures are *ParseError with Equation set to 1 or 2; a zero
// determinant is *SingularSystemError. The system is solved exactly and
// only the result is converted, so a solution outside float64 range is
// ErrOutOfRange rather than Inf or NaN.
func Solve(eq1, eq2 string) (x, y float64, err error) {
	sol, err := SolveExact(eq1, eq2)
	if err != nil {
		return 0, 0, err
	}
	f, err := sol.Finite()
	if err != nil {
		return 0, 0, err
	}
	return f.X, f.Y, nil
}

// ParseSystem parses both equations into an exact System.
func ParseSystem(eq1, eq2 string) (System, error) {
	t1, err := ParseEquationExact(eq1)
	if err != nil {
		return System{}, WithEquation(err, 1)
	}
	t2, err := ParseEquationExact(eq2)
	if err != nil {
		return System{}, WithEquation(err, 2)
	}
	return System{First: t1, Second: t2}, nil
}

// SolveExact is Solve over exact rationals: "x + 2y = 1", "3x - y = 0"
// yields x = 1/7, y = 3/7.
func SolveExact(eq1, eq2 string) (RatSolution, error) {
	sys, err := ParseSystem(eq1, eq2)
	if err != nil {
		return RatSolution{}, err
	}
	return sys.Solve()
}
