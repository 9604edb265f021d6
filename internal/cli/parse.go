package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/linsolve"
)

type parseOutput struct {
	Normalized string `json:"normalized"`
	A          string `json:"a"`
	B          string `json:"b"`
	C          string `json:"c"`
}

func parseCmd(opts *rootOptions) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "parse EQ",
		Short: "Print the coefficients (a, b, c) of one equation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			t, err := linsolve.ParseEquationExact(args[0])
			if err != nil {
				return reportError(cmd.OutOrStdout(), format, err)
			}
			opts.log.Debug("equation parsed", "triple", t.String())

			out := parseOutput{
				Normalized: linsolve.Normalize(args[0]),
				A:          t.A.RatString(),
				B:          t.B.RatString(),
				C:          t.C.RatString(),
			}
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "a = %s, b = %s, c = %s\n", out.A, out.B, out.C)
			return err
		},
	}

	c.Flags().StringVar(&format, "format", "text", "output format: text|json")
	return c
}
