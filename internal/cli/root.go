package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/logx"
	"github.com/r9s-ai/respcheck/internal/render"
	"github.com/r9s-ai/respcheck/pkg/config"
)

const defaultConfigPath = "respcheck.config.yaml"

// ErrFailed is returned when a comparison or suite ran cleanly but did not
// pass. main exits non-zero without printing it.
var ErrFailed = errors.New("comparison failed")

type globalOptions struct {
	cfgPath string
	color   string
	debug   bool
}

func (g *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadIfExists(strings.TrimSpace(g.cfgPath))
	if err != nil {
		return nil, err
	}
	if c := strings.TrimSpace(g.color); c != "" {
		if _, err := logx.ResolveColor(c, io.Discard); err != nil {
			return nil, err
		}
		cfg.Logging.Color = c
	}
	if g.debug {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (g *globalOptions) styles(cfg *config.Config, w io.Writer) render.Styles {
	color, _ := logx.ResolveColor(cfg.Logging.Color, w)
	return render.NewStyles(w, color)
}

func (g *globalOptions) logger(cfg *config.Config, w io.Writer) *logx.Logger {
	lvl, _ := logx.ParseLevel(cfg.Logging.Level)
	color, _ := logx.ResolveColor(cfg.Logging.Color, w)
	return logx.New(w, lvl, color)
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "respcheck",
		Short:         "Structural JSON/XML response comparison with keyword matchers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.cfgPath, "config", "c", envOr("RESPCHECK_CONFIG", defaultConfigPath), "config yaml path (missing file means defaults)")
	pf.StringVar(&g.color, "color", "", "color output: auto, always or never (overrides logging.color)")
	pf.BoolVar(&g.debug, "debug", false, "debug logging")

	cmd.AddCommand(
		newCompareCmd(g),
		newCheckCmd(g),
		newWatchCmd(g),
		newViewCmd(g),
		newServeCmd(g),
		newKeywordsCmd(g),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the CLI with os.Args and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrFailed):
		return 1
	default:
		_, _ = fmt.Fprintf(errOut, "error: %v\n", err)
		return 2
	}
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}
