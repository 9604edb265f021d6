package linsolve

import (
	"fmt"
	"math"
	"math/big"
)

// Epsilon is the determinant magnitude below which a float system is
// treated as singular.
const Epsilon = 1e-9

// ============================================================
// Solutions
// ============================================================

// Solution is the unique intersection point of two lines.
type Solution struct{ X, Y float64 }

func (s Solution) String() string { return fmt.Sprintf("x = %g, y = %g", s.X, s.Y) }

// RatSolution is the exact form of Solution.
type RatSolution struct{ X, Y *big.Rat }

// Float converts the exact solution to float64.
func (s RatSolution) Float() Solution {
	x, _ := s.X.Float64()
	y, _ := s.Y.Float64()
	return Solution{X: x, Y: y}
}

// Finite is Float, failing with ErrOutOfRange when either component does
// not fit in a float64.
func (s RatSolution) Finite() (Solution, error) {
	f := s.Float()
	if math.IsInf(f.X, 0) || math.IsInf(f.Y, 0) {
		return Solution{}, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	return f, nil
}

func (s RatSolution) String() string {
	return fmt.Sprintf("x = %s, y = %s", s.X.RatString(), s.Y.RatString())
}

// ============================================================
// System: two triples as A·v = B
// ============================================================

// System is a pair of equations viewed as a 2x2 matrix and a constant
// vector.
type System struct{ First, Second RatTriple }

// Matrix returns the coefficient matrix A.
func (s System) Matrix() [2][2]*big.Rat {
	return [2][2]*big.Rat{
		{s.First.A, s.First.B},
		{s.Second.A, s.Second.B},
	}
}

// Constants returns the right-hand vector B.
func (s System) Constants() [2]*big.Rat { return [2]*big.Rat{s.First.C, s.Second.C} }

// Det returns a1·b2 − a2·b1.
func (s System) Det() *big.Rat { return cross(s.First.A, s.Second.B, s.Second.A, s.First.B) }

// Classify reports whether the system has one, none or infinitely many
// solutions.
func (s System) Classify() SystemKind {
	if s.Det().Sign() != 0 {
		return Unique
	}
	return classifyExact(s.First, s.Second)
}

// Solve applies Cramer's rule over exact rationals.
func (s System) Solve() (RatSolution, error) {
	det := s.Det()
	if det.Sign() == 0 {
		d, _ := det.Float64()
		return RatSolution{}, &SingularSystemError{Kind: classifyExact(s.First, s.Second), Det: d}
	}
	t1, t2 := s.First, s.Second
	x := new(big.Rat).Quo(cross(t1.C, t2.B, t2.C, t1.B), det)
	y := new(big.Rat).Quo(cross(t1.A, t2.C, t2.A, t1.C), det)
	return RatSolution{X: x, Y: y}, nil
}

// cross returns p·q − r·s.
func cross(p, q, r, s *big.Rat) *big.Rat {
	l := new(big.Rat).Mul(p, q)
	return l.Sub(l, new(big.Rat).Mul(r, s))
}

func classifyExact(t1, t2 RatTriple) SystemKind {
	for _, t := range []RatTriple{t1, t2} {
		if t.A.Sign() == 0 && t.B.Sign() == 0 && t.C.Sign() != 0 {
			return Inconsistent
		}
	}
	if cross(t1.A, t2.C, t2.A, t1.C).Sign() == 0 && cross(t1.B, t2.C, t2.B, t1.C).Sign() == 0 {
		return Dependent
	}
	return Inconsistent
}

// ============================================================
// Solvers
// ============================================================

// SolveTriplesExact solves the system formed by two exact triples.
func SolveTriplesExact(t1, t2 RatTriple) (RatSolution, error) {
	return System{First: t1, Second: t2}.Solve()
}

// SolveTriples solves the system formed by two float triples. A determinant
// with magnitude below Epsilon yields *SingularSystemError.
func SolveTriples(t1, t2 Triple) (Solution, error) {
	det := t1.A*t2.B - t2.A*t1.B
	if math.Abs(det) < Epsilon {
		return Solution{}, &SingularSystemError{Kind: classifyFloat(t1, t2), Det: det}
	}
	x := (t1.C*t2.B - t2.C*t1.B) / det
	y := (t1.A*t2.C - t2.A*t1.C) / det
	return Solution{X: x, Y: y}, nil
}

func classifyFloat(t1, t2 Triple) SystemKind {
	zero := func(v float64) bool { return math.Abs(v) < Epsilon }
	for _, t := range []Triple{t1, t2} {
		if zero(t.A) && zero(t.B) && !zero(t.C) {
			return Inconsistent
		}
	}
	if zero(t1.A*t2.C-t2.A*t1.C) && zero(t1.B*t2.C-t2.B*t1.C) {
		return Dependent
	}
	return Inconsistent
}
