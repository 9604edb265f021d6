// Package batch solves many equation pairs described in a YAML file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/linsolve"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidConfig = errors.New("invalid batch file")
)

// OpError wraps an underlying error with the operation and file involved.
type OpError struct {
	Op   string
	Kind error
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() []error { return []error{e.Kind, e.Err} }

// System is one named pair of equations.
type System struct {
	Name      string   `yaml:"name"      validate:"required"`
	Equations []string `yaml:"equations" validate:"len=2,dive,required"`
	Exact     bool     `yaml:"exact"`
}

// File is the top-level document of a batch file.
type File struct {
	Systems []System `yaml:"systems" validate:"required,min=1,dive"`
}

// Result is the outcome for one system. Err is nil on success.
type Result struct {
	Name   string
	X, Y   float64
	XExact string
	YExact string
	Exact  bool
	Err    error
}

// Load reads and validates a batch file.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, &OpError{Op: "batch.load", Kind: ErrNotFound, Path: path, Err: err}
	}
	return Parse(path, b)
}

// Parse decodes a batch document already in memory. path is used only in
// error messages.
func Parse(path string, data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, &OpError{Op: "batch.parse", Kind: ErrInvalidConfig, Path: path, Err: err}
	}
	if err := validator.New().Struct(&f); err != nil {
		return File{}, &OpError{Op: "batch.validate", Kind: ErrInvalidConfig, Path: path, Err: err}
	}
	return f, nil
}

// Run solves every system in order. A failing system is recorded in its
// Result and does not stop the run; a cancelled context does, and the
// results gathered so far are returned with ctx.Err().
func Run(ctx context.Context, f File) ([]Result, error) {
	results := make([]Result, 0, len(f.Systems))
	for _, sys := range f.Systems {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, solveOne(sys))
	}
	return results, nil
}

func solveOne(sys System) Result {
	res := Result{Name: sys.Name, Exact: sys.Exact}
	eq1, eq2 := sys.Equations[0], sys.Equations[1]
	if !sys.Exact {
		res.X, res.Y, res.Err = linsolve.Solve(eq1, eq2)
		return res
	}
	sol, err := linsolve.SolveExact(eq1, eq2)
	if err != nil {
		res.Err = err
		return res
	}
	f, err := sol.Finite()
	if err != nil {
		res.Err = err
		return res
	}
	res.X, res.Y = f.X, f.Y
	res.XExact, res.YExact = sol.X.RatString(), sol.Y.RatString()
	return res
}

// Failed counts results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
