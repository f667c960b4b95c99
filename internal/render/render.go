package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/suite"
)

// Styles holds the lipgloss styles used for reports. Without color every
// style renders text unchanged.
type Styles struct {
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Error   lipgloss.Style
	Skip    lipgloss.Style
	Path    lipgloss.Style
	Header  lipgloss.Style
	Dim     lipgloss.Style
	Keyword lipgloss.Style
}

func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Pass:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		Fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Error:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		Skip:    r.NewStyle().Foreground(lipgloss.Color("244")),
		Path:    r.NewStyle().Foreground(lipgloss.Color("39")),
		Header:  r.NewStyle().Bold(true),
		Dim:     r.NewStyle().Foreground(lipgloss.Color("244")),
		Keyword: r.NewStyle().Foreground(lipgloss.Color("213")),
	}
}

// Badge renders the verdict tag for a status.
func (s Styles) Badge(status suite.Status) string {
	switch status {
	case suite.StatusPassed:
		return s.Pass.Render("PASS")
	case suite.StatusFailed:
		return s.Fail.Render("FAIL")
	case suite.StatusErrored:
		return s.Error.Render("ERROR")
	default:
		return s.Skip.Render("SKIP")
	}
}

// FailureLine renders "path: message".
func (s Styles) FailureLine(f compare.Failure) string {
	return s.Path.Render(f.Path) + ": " + f.Message
}

// Report renders a single comparison.
func Report(s Styles, title string, rep compare.Report) string {
	var b strings.Builder
	status := suite.StatusPassed
	if !rep.Passed {
		status = suite.StatusFailed
	}
	fmt.Fprintf(&b, "%s %s\n", s.Badge(status), s.Header.Render(title))
	for _, f := range rep.Failures {
		b.WriteString("  ")
		b.WriteString(s.FailureLine(f))
		b.WriteByte('\n')
	}
	if !rep.Passed {
		fmt.Fprintf(&b, "%s\n", s.Dim.Render(plural(len(rep.Failures), "failure")))
	}
	return b.String()
}

// Summary renders a suite run. Passed cases are listed only when verbose.
func Summary(s Styles, sum suite.Summary, verbose bool) string {
	var b strings.Builder
	if sum.Name != "" {
		fmt.Fprintf(&b, "%s\n", s.Header.Render("suite "+sum.Name))
	}
	for _, c := range sum.Cases {
		if c.Status == suite.StatusPassed && !verbose {
			continue
		}
		fmt.Fprintf(&b, "%s %s", s.Badge(c.Status), c.Name)
		if c.Status != suite.StatusSkipped && verbose {
			fmt.Fprintf(&b, " %s", s.Dim.Render(c.Duration.Round(time.Microsecond).String()))
		}
		b.WriteByte('\n')
		for _, f := range c.Failures {
			b.WriteString("  ")
			b.WriteString(s.FailureLine(f))
			b.WriteByte('\n')
		}
		if c.Error != "" {
			b.WriteString("  ")
			b.WriteString(s.Error.Render(c.Error))
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "%d total, %s, %s, %s, %s %s\n",
		sum.Total,
		s.Pass.Render(fmt.Sprintf("%d passed", sum.Passed)),
		s.Fail.Render(fmt.Sprintf("%d failed", sum.Failed)),
		s.Error.Render(fmt.Sprintf("%d errored", sum.Errored)),
		s.Skip.Render(fmt.Sprintf("%d skipped", sum.Skipped)),
		s.Dim.Render("in "+sum.Duration.Round(time.Millisecond).String()),
	)
	return b.String()
}

// Keywords renders the registered vocabulary as an aligned table.
func Keywords(s Styles, infos []compare.KeywordInfo) string {
	width := 0
	for _, k := range infos {
		width = max(width, len(k.Keyword))
	}
	var b strings.Builder
	for _, k := range infos {
		pad := strings.Repeat(" ", width-len(k.Keyword))
		fmt.Fprintf(&b, "%s%s  %s\n", s.Keyword.Render(k.Keyword), pad, k.Description)
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
