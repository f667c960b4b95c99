package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/render"
	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/config"
	"github.com/r9s-ai/respcheck/pkg/suite"
)

type checkOptions struct {
	parallelism int
	failFast    bool
	verbose     bool
	output      string
	mode        string
	ignore      []string
}

func (o *checkOptions) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&o.parallelism, "parallelism", "j", 0, "cases compared at once (default from config)")
	fs.BoolVar(&o.failFast, "fail-fast", false, "stop after the first failing case")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "list passed cases too")
	fs.StringVar(&o.mode, "mode", "", "compare mode for cases that do not set one (default from config)")
	fs.StringArrayVar(&o.ignore, "ignore", nil, "path to skip in every case (repeatable)")
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	opts := checkOptions{output: "text"}
	cmd := &cobra.Command{
		Use:   "check [DIR]",
		Short: "Run a fixture suite (respcheck.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			sum, err := runSuite(cmd.Context(), cfg, opts, suiteDir(cfg, args))
			if err != nil {
				return err
			}
			if err := writeSummary(cmd.OutOrStdout(), g.styles(cfg, cmd.OutOrStdout()), sum, opts); err != nil {
				return err
			}
			if !sum.OK() {
				return ErrFailed
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "format", "o", "text", "output format: text or json")
	return cmd
}

func suiteDir(cfg *config.Config, args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return cfg.Suite.Dir
}

func (o checkOptions) runOptions(cfg *config.Config) (suite.RunOptions, error) {
	modeName := cfg.Compare.Mode
	if m := strings.TrimSpace(o.mode); m != "" {
		modeName = m
	}
	mode, err := compare.ParseMode(modeName)
	if err != nil {
		return suite.RunOptions{}, err
	}
	ro := suite.RunOptions{
		Mode:        mode,
		IgnorePaths: append(append([]string(nil), cfg.Compare.IgnorePaths...), o.ignore...),
		Parallelism: cfg.Suite.Parallelism,
		FailFast:    cfg.Suite.FailFast || o.failFast,
	}
	if o.parallelism > 0 {
		ro.Parallelism = o.parallelism
	}
	return ro, nil
}

func runSuite(ctx context.Context, cfg *config.Config, opts checkOptions, dir string) (suite.Summary, error) {
	s, err := suite.Load(dir)
	if err != nil {
		return suite.Summary{}, err
	}
	reg, err := cfg.Keywords.Registry()
	if err != nil {
		return suite.Summary{}, err
	}
	ro, err := opts.runOptions(cfg)
	if err != nil {
		return suite.Summary{}, err
	}
	return suite.Run(ctx, s, reg, ro)
}

func writeSummary(w io.Writer, st render.Styles, sum suite.Summary, opts checkOptions) error {
	switch strings.ToLower(strings.TrimSpace(opts.output)) {
	case "", "text":
		_, err := io.WriteString(w, render.Summary(st, sum, opts.verbose))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	default:
		return fmt.Errorf("unsupported output format %q (supported: text, json)", opts.output)
	}
}
