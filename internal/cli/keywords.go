package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/respcheck/internal/render"
)

func newKeywordsCmd(g *globalOptions) *cobra.Command {
	output := "text"
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List the configured keyword vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			reg, err := cfg.Keywords.Registry()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(strings.TrimSpace(output)) {
			case "", "text":
				_, err = io.WriteString(out, render.Keywords(g.styles(cfg, out), reg.Describe()))
				return err
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reg.Describe())
			default:
				return fmt.Errorf("unsupported output format %q (supported: text, json)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "format", "o", "text", "output format: text or json")
	return cmd
}
