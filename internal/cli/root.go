// Package cli implements the linsolve command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/linsolve/internal/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

func Execute() {
	cmd := NewRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
	logJSON  bool
	log      logger.Logger
}

// NewRootCmd builds the command tree writing results to out and logs and
// errors to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "linsolve",
		Short:         "Solve two linear equations in x and y",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, err := logger.ParseLogLevel(opts.logLevel)
			if err != nil {
				return err
			}
			opts.log = logger.NewLogger(&logger.Config{
				Level:      level,
				Output:     errOut,
				JSON:       opts.logJSON,
				TimeFormat: "15:04:05",
			})
			return nil
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "emit logs as JSON")

	cmd.AddCommand(
		solveCmd(opts),
		parseCmd(opts),
		batchCmd(opts),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the linsolve version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use text or json)", format)
	}
}
