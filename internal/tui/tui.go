package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/r9s-ai/respcheck/internal/render"
	"github.com/r9s-ai/respcheck/pkg/compare"
	"github.com/r9s-ai/respcheck/pkg/document"
)

type pane int

const (
	paneFailures pane = iota
	paneExpected
	paneActual
)

var paneNames = [...]string{"failures", "expected", "actual"}

const chromeLines = 2

// Model browses one comparison: the failure list and both documents.
type Model struct {
	title    string
	report   compare.Report
	expected string
	actual   string
	styles   render.Styles

	vp     viewport.Model
	ready  bool
	pane   pane
	cursor int
}

func NewModel(title string, rep compare.Report, expected, actual document.Node, styles render.Styles) Model {
	return Model{
		title:    title,
		report:   rep,
		expected: document.Pretty(expected),
		actual:   document.Pretty(actual),
		styles:   styles,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := max(msg.Height-chromeLines, 1)
		if !m.ready {
			m.vp = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = h
		}
		m.vp.SetContent(m.content())
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.pane = (m.pane + 1) % pane(len(paneNames))
			m.refresh()
			return m, nil
		case "shift+tab":
			m.pane = (m.pane + pane(len(paneNames)) - 1) % pane(len(paneNames))
			m.refresh()
			return m, nil
		case "n":
			if m.pane == paneFailures && m.cursor < len(m.report.Failures)-1 {
				m.cursor++
				m.refresh()
			}
			return m, nil
		case "p":
			if m.pane == paneFailures && m.cursor > 0 {
				m.cursor--
				m.refresh()
			}
			return m, nil
		}
	}
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.content())
	if m.pane == paneFailures {
		// keep the selected failure in view; line 0 is the verdict
		line := m.cursor + 1
		if line < m.vp.YOffset || line >= m.vp.YOffset+m.vp.Height {
			m.vp.SetYOffset(line)
		}
		return
	}
	m.vp.GotoTop()
}

func (m Model) content() string {
	switch m.pane {
	case paneExpected:
		return m.expected
	case paneActual:
		return m.actual
	}
	var b strings.Builder
	if m.report.Passed {
		b.WriteString(m.styles.Pass.Render("PASS"))
		b.WriteString(" documents match\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s %d failure(s)\n", m.styles.Fail.Render("FAIL"), len(m.report.Failures))
	for i, f := range m.report.Failures {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		b.WriteString(marker)
		b.WriteString(m.styles.FailureLine(f))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	tabs := make([]string, len(paneNames))
	for i, name := range paneNames {
		if pane(i) == m.pane {
			tabs[i] = m.styles.Header.Render("[" + name + "]")
		} else {
			tabs[i] = m.styles.Dim.Render(" " + name + " ")
		}
	}
	header := m.styles.Header.Render(m.title) + "  " + strings.Join(tabs, " ")
	footer := m.styles.Dim.Render(fmt.Sprintf("tab switch  n/p next/prev failure  up/down scroll  q quit  %3.f%%", m.vp.ScrollPercent()*100))
	return header + "\n" + m.vp.View() + "\n" + footer
}

// Run opens the viewer on the alternate screen until the user quits.
func Run(title string, rep compare.Report, expected, actual document.Node, styles render.Styles, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(
		NewModel(title, rep, expected, actual, styles),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui run failed: %w", err)
	}
	return nil
}
