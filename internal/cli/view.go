// internal/cli/view.go
package vigil

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jsandlin/vigil/internal/classify"
	"github.com/jsandlin/vigil/internal/eventlog"
	"github.com/jsandlin/vigil/internal/util"
	"github.com/spf13/cobra"
)

var (
	viewSummaryOnly bool
)

// viewCmd opens an interactive browser over the discovered log files.
var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Browse test logs interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return fmt.Errorf("configuration not loaded")
		}

		files, err := eventlog.ListLogFiles(cfg.LogsDirPath())
		if err != nil {
			return err
		}

		m := initialViewModel(files, cfg.StrictValidation, viewSummaryOnly)
		if len(args) == 1 {
			info, err := eventlog.FindLogFile(cfg.LogsDirPath(), args[0])
			if err != nil {
				return err
			}
			m.selected = info
			m.state = viewLogLoading
		}
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	viewCmd.Flags().BoolVar(&viewSummaryOnly, "summary-only", false, "show only the session summary for each log")
	rootCmd.AddCommand(viewCmd)
}

type viewerState int

const (
	viewLogSelector viewerState = iota
	viewLogLoading
	viewLogDetail
)

type viewModel struct {
	state         viewerState
	strict        bool
	summaryOnly   bool
	logList       list.Model
	viewport      viewport.Model
	spinner       spinner.Model
	selected      eventlog.LogFileInfo
	err           error
	width, height int
}

// logItem represents a selectable log file in the list.
type logItem struct {
	info eventlog.LogFileInfo
}

// Title returns the file name of the list item.
func (i logItem) Title() string { return i.info.Name }

// Description returns the category and capture time.
func (i logItem) Description() string {
	return fmt.Sprintf("%s — %s", i.info.Category, i.info.Timestamp.Format("2006-01-02 15:04:05"))
}

// FilterValue returns the file name, used for filtering.
func (i logItem) FilterValue() string { return i.info.Name }

// runLoadedMsg is sent when a log file has been parsed.
type runLoadedMsg struct{ run *eventlog.TestRunData }

// runLoadErr is sent when parsing a log file fails.
type runLoadErr struct{ error }

func initialViewModel(files []eventlog.LogFileInfo, strict, summaryOnly bool) *viewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = logItem{info: f}
	}
	logList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	logList.Title = "Select a Test Log"

	return &viewModel{
		state:       viewLogSelector,
		strict:      strict,
		summaryOnly: summaryOnly,
		logList:     logList,
		viewport:    viewport.New(100, 5),
		spinner:     s,
	}
}

// parseLogCmd creates a Bubble Tea command that parses the selected log.
func parseLogCmd(info eventlog.LogFileInfo) tea.Cmd {
	return func() tea.Msg {
		run, err := eventlog.ParseFileWith(info.Path, eventlog.ParseOptions{})
		if err != nil {
			return runLoadErr{err}
		}
		return runLoadedMsg{run: run}
	}
}

func (m *viewModel) Init() tea.Cmd {
	if m.state == viewLogLoading {
		return tea.Batch(m.spinner.Tick, parseLogCmd(m.selected))
	}
	return m.spinner.Tick
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.state == viewLogDetail {
				m.state = viewLogSelector
				m.err = nil
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if m.state == viewLogSelector {
				if item, ok := m.logList.SelectedItem().(logItem); ok {
					m.selected = item.info
					m.state = viewLogLoading
					return m, tea.Batch(m.spinner.Tick, parseLogCmd(item.info))
				}
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.logList.SetSize(msg.Width-4, msg.Height-4)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 4
	case runLoadedMsg:
		m.state = viewLogDetail
		m.viewport.SetContent(renderRun(msg.run, m.selected, m.strict, m.summaryOnly))
		m.viewport.GotoTop()
		return m, nil
	case runLoadErr:
		m.state = viewLogDetail
		m.err = msg.error
		return m, nil
	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch m.state {
	case viewLogSelector:
		m.logList, cmd = m.logList.Update(msg)
		cmds = append(cmds, cmd)
	case viewLogDetail:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *viewModel) View() string {
	switch m.state {
	case viewLogLoading:
		return fmt.Sprintf("\n  %s Parsing %s...\n", m.spinner.View(), m.selected.Name)
	case viewLogDetail:
		if m.err != nil {
			errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(1)
			return errorStyle.Render(fmt.Sprintf("Error: %v\n\n(esc to go back, q to quit)", m.err))
		}
		help := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(" (esc to go back, q to quit)")
		return m.viewport.View() + "\n" + help
	default:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.logList.View())
	}
}

// renderRun formats a parsed run for the detail viewport.
func renderRun(run *eventlog.TestRunData, info eventlog.LogFileInfo, strict, summaryOnly bool) string {
	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	passStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(info.Name) + "\n\n")

	s := run.Summary
	b.WriteString(fmt.Sprintf("Tests: %d   Passed: %s   Failed: %s   Pass rate: %s\n",
		s.TotalTests,
		passStyle.Render(fmt.Sprintf("%d", s.Passed)),
		failStyle.Render(fmt.Sprintf("%d", s.Failed)),
		util.FormatPercent(s.PassRatePercent)))
	b.WriteString(fmt.Sprintf("Latency: %s avg   Cost: %s   Tokens: %s\n",
		util.FormatLatency(s.AvgLatencyMillis),
		util.FormatCost(s.TotalCostUSD),
		util.FormatTokens(s.TotalTokens)))
	if s.SkippedLines > 0 {
		b.WriteString(fmt.Sprintf("Skipped %d malformed line(s)\n", s.SkippedLines))
	}
	if summaryOnly {
		return b.String()
	}

	b.WriteString("\n")
	for i := range run.Inferences {
		ev := &run.Inferences[i]
		name := ev.TestName
		if name == "" {
			name = ev.TestID
		}
		analysis := classify.Classify(ev, strict)
		if analysis == nil {
			b.WriteString(passStyle.Render("PASS") + fmt.Sprintf("  %s  (%s)\n", name, util.FormatLatency(ev.Latency())))
			continue
		}
		b.WriteString(failStyle.Render("FAIL") + fmt.Sprintf("  %s  [%s]\n", name, analysis.Kind))
		b.WriteString(fmt.Sprintf("      %s\n", util.TruncateRunes(analysis.Reason, 160)))
	}
	return b.String()
}
