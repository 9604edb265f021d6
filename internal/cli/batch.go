package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/njchilds90/linsolve"
	"github.com/njchilds90/linsolve/internal/batch"
)

type batchLine struct {
	Name   string   `json:"name"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	XExact string   `json:"x_exact,omitempty"`
	YExact string   `json:"y_exact,omitempty"`
	Error  string   `json:"error,omitempty"`
	Kind   string   `json:"kind,omitempty"`
}

func batchCmd(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "batch FILE",
		Short: "Solve every system listed in a YAML batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			f, err := batch.Load(args[0])
			if err != nil {
				return err
			}
			opts.log.Info("batch loaded", "path", args[0], "systems", len(f.Systems))

			results, err := batch.Run(cmd.Context(), f)
			if perr := printBatch(cmd.OutOrStdout(), format, results); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}

			failed := batch.Failed(results)
			opts.log.Info("batch finished", "systems", len(results), "failed", failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d systems failed", failed, len(results))
			}
			return nil
		},
	}

	c.Flags().StringVar(&format, "format", "text", "output format: text|json")
	return c
}

func printBatch(w io.Writer, format string, results []batch.Result) error {
	if format == "json" {
		lines := make([]batchLine, 0, len(results))
		for _, r := range results {
			line := batchLine{Name: r.Name}
			if r.Err != nil {
				line.Error = r.Err.Error()
				line.Kind = linsolve.ErrorKindOf(r.Err)
			} else {
				x, y := r.X, r.Y
				line.X, line.Y = &x, &y
				line.XExact, line.YExact = r.XExact, r.YExact
			}
			lines = append(lines, line)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	for _, r := range results {
		var err error
		switch {
		case r.Err != nil:
			_, err = fmt.Fprintf(w, "%s: error: %v\n", r.Name, r.Err)
		case r.Exact:
			_, err = fmt.Fprintf(w, "%s: x = %s, y = %s\n", r.Name, r.XExact, r.YExact)
		default:
			_, err = fmt.Fprintf(w, "%s: x = %g, y = %g\n", r.Name, r.X, r.Y)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
