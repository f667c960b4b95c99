package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/render"
	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/config"
	"github.com/r9s-ai/respcheck/pkg/document"
	"github.com/r9s-ai/respcheck/pkg/suite"
)

type compareOptions struct {
	mode      string
	ignore    []string
	sel       string
	schema    string
	docFormat string
	output    string
	dump      bool
}

func (o *compareOptions) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&o.mode, "mode", "", "compare mode: strict_order, lenient, strict, non_extensible (default from config)")
	fs.StringArrayVar(&o.ignore, "ignore", nil, "path to skip, e.g. '$.meta' or 'items[*].ts' (repeatable)")
	fs.StringVar(&o.sel, "select", "", "narrow the actual document first, e.g. '$.data'")
	fs.StringVar(&o.schema, "schema", "", "JSON Schema file the actual document must satisfy")
	fs.StringVar(&o.docFormat, "doc-format", "auto", "document format: auto, json or xml")
}

func newCompareCmd(g *globalOptions) *cobra.Command {
	opts := compareOptions{output: "text"}
	cmd := &cobra.Command{
		Use:   "compare EXPECTED ACTUAL",
		Short: "Compare an actual document against an expected fixture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompareWithOptions(cmd, g, opts, args[0], args[1])
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "format", "o", "text", "output format: text or json")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump both decoded documents to stderr")
	return cmd
}

// comparison is one loaded and evaluated expected/actual pair.
type comparison struct {
	expected document.Node
	actual   document.Node
	mode     compare.Mode
	report   compare.Report
}

func evaluateComparison(cfg *config.Config, opts compareOptions, expectedPath, actualPath string) (*comparison, error) {
	reg, err := cfg.Keywords.Registry()
	if err != nil {
		return nil, err
	}
	cc := cfg.Compare
	if m := strings.TrimSpace(opts.mode); m != "" {
		cc.Mode = m
	}
	cc.IgnorePaths = append(append([]string(nil), cc.IgnorePaths...), opts.ignore...)
	copts, err := cc.Options()
	if err != nil {
		return nil, err
	}
	cmp, err := compare.New(reg, copts...)
	if err != nil {
		return nil, err
	}

	format, err := document.ParseFormat(opts.docFormat)
	if err != nil {
		return nil, err
	}
	expected, err := document.LoadFile(expectedPath, format)
	if err != nil {
		return nil, err
	}
	actual, err := document.LoadFile(actualPath, format)
	if err != nil {
		return nil, err
	}
	out := &comparison{expected: expected, actual: actual, mode: cmp.Mode()}

	if sel := strings.TrimSpace(opts.sel); sel != "" {
		narrowed, ok := document.Narrow(actual, sel)
		if !ok {
			out.report = compare.Report{Failures: []compare.Failure{{Path: sel, Message: "select path matched nothing"}}}
			return out, nil
		}
		out.actual = narrowed
	}

	var failures []compare.Failure
	if p := strings.TrimSpace(opts.schema); p != "" {
		failures, err = suite.SchemaFailures(p, out.actual)
		if err != nil {
			return nil, err
		}
	}
	rep, err := cmp.Compare(expected, out.actual)
	if err != nil {
		return nil, err
	}
	rep.Failures = append(failures, rep.Failures...)
	rep.Passed = len(rep.Failures) == 0
	out.report = rep
	return out, nil
}

func runCompareWithOptions(cmd *cobra.Command, g *globalOptions, opts compareOptions, expectedPath, actualPath string) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	res, err := evaluateComparison(cfg, opts, expectedPath, actualPath)
	if err != nil {
		return err
	}
	if opts.dump {
		dumpDocuments(cmd.ErrOrStderr(), res)
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(strings.TrimSpace(opts.output)) {
	case "", "text":
		title := filepath.Base(expectedPath) + " vs " + filepath.Base(actualPath)
		if _, err := io.WriteString(out, render.Report(g.styles(cfg, out), title, res.report)); err != nil {
			return err
		}
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			compare.Report
			Mode compare.Mode `json:"mode"`
		}{res.report, res.mode}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format %q (supported: text, json)", opts.output)
	}
	if !res.report.Passed {
		return ErrFailed
	}
	return nil
}

func dumpDocuments(w io.Writer, res *comparison) {
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
	_, _ = fmt.Fprintln(w, "expected:")
	cfg.Fdump(w, res.expected.ToAny())
	_, _ = fmt.Fprintln(w, "actual:")
	cfg.Fdump(w, res.actual.ToAny())
}
