package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/tui"
)

func newViewCmd(g *globalOptions) *cobra.Command {
	var opts compareOptions
	cmd := &cobra.Command{
		Use:   "view EXPECTED ACTUAL",
		Short: "Browse a comparison interactively",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			res, err := evaluateComparison(cfg, opts, args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			title := filepath.Base(args[0]) + " vs " + filepath.Base(args[1])
			return tui.Run(title, res.report, res.expected, res.actual, g.styles(cfg, out), cmd.InOrStdin(), out)
		},
	}
	opts.bind(cmd)
	return cmd
}
