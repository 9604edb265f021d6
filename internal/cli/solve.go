package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/njchilds90/linsolve"
)

type solveOutput struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	XExact string  `json:"x_exact,omitempty"`
	YExact string  `json:"y_exact,omitempty"`
}

type errorOutput struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Equation int    `json:"equation,omitempty"`
}

func solveCmd(opts *rootOptions) *cobra.Command {
	var exact bool
	var format string

	c := &cobra.Command{
		Use:   "solve EQ1 EQ2",
		Short: "Solve a pair of equations such as \"2x + 3y = 8\" \"x - y = 1\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			opts.log.Debug("solving system", "eq1", args[0], "eq2", args[1], "exact", exact)

			var out solveOutput
			if exact {
				sol, err := linsolve.SolveExact(args[0], args[1])
				if err != nil {
					return reportError(cmd.OutOrStdout(), format, err)
				}
				f, err := sol.Finite()
				if err != nil {
					return reportError(cmd.OutOrStdout(), format, err)
				}
				out = solveOutput{X: f.X, Y: f.Y, XExact: sol.X.RatString(), YExact: sol.Y.RatString()}
			} else {
				x, y, err := linsolve.Solve(args[0], args[1])
				if err != nil {
					return reportError(cmd.OutOrStdout(), format, err)
				}
				out = solveOutput{X: x, Y: y}
			}
			opts.log.Info("system solved", "x", out.X, "y", out.Y)
			return printSolution(cmd.OutOrStdout(), format, out)
		},
	}

	c.Flags().BoolVar(&exact, "exact", false, "solve over exact rationals")
	c.Flags().StringVar(&format, "format", "text", "output format: text|json")
	return c
}

func printSolution(w io.Writer, format string, out solveOutput) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if out.XExact != "" {
		_, err := fmt.Fprintf(w, "x = %s, y = %s\n", out.XExact, out.YExact)
		return err
	}
	_, err := fmt.Fprintf(w, "x = %g, y = %g\n", out.X, out.Y)
	return err
}

// reportError prints the JSON error body when asked for JSON, then returns
// err so the process exits non-zero.
func reportError(w io.Writer, format string, err error) error {
	if format == "json" {
		out := errorOutput{Error: err.Error(), Kind: linsolve.ErrorKindOf(err)}
		var pe *linsolve.ParseError
		if errors.As(err, &pe) {
			out.Equation = pe.Equation
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(out); encErr != nil {
			return encErr
		}
	}
	return err
}
