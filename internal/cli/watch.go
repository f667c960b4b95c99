package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/watch"
	"github.com/r9s-ai/respcheck/pkg/config"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	opts := checkOptions{output: "text"}
	var debounceMs int
	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Run a fixture suite and re-run it whenever fixtures change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if debounceMs > 0 {
				cfg.Watch.DebounceMs = debounceMs
			}
			return runWatch(cmd, g, cfg, opts, suiteDir(cfg, args))
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVar(&debounceMs, "debounce-ms", 0, "quiet period before re-running (default from config)")
	return cmd
}

func runWatch(cmd *cobra.Command, g *globalOptions, cfg *config.Config, opts checkOptions, dir string) error {
	out := cmd.OutOrStdout()
	st := g.styles(cfg, out)
	lg := g.logger(cfg, cmd.ErrOrStderr())

	runOnce := func(ctx context.Context) {
		sum, err := runSuite(ctx, cfg, opts, dir)
		if err != nil {
			if ctx.Err() == nil {
				lg.Errorf("suite run failed: %v", err)
			}
			return
		}
		if err := writeSummary(out, st, sum, opts); err != nil {
			lg.Errorf("write summary: %v", err)
		}
	}

	ctx := cmd.Context()
	runOnce(ctx)
	return watch.Run(ctx, watch.Options{
		Dir:      dir,
		Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		Logger:   lg,
		OnChange: runOnce,
	})
}
