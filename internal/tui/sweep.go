package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostmedic/internal/casefile"
	"hostmedic/internal/sweep"
	"hostmedic/models"
)

// SweepModel runs an artifact sweep on demand and lets the operator stage
// file hits for quarantine. The sweep walks real directories so it only
// starts on an explicit keypress, never on tab entry.
type SweepModel struct {
	session *casefile.Session
	entries []models.SweepEntry
	report  models.ScanReport
	width   int
	height  int
	cursor  int
	running bool
	ran     bool
}

type sweepDoneMsg struct {
	entries []models.SweepEntry
	report  models.ScanReport
}

// NewSweepModel creates a SweepModel.
func NewSweepModel(s *casefile.Session) SweepModel {
	return SweepModel{session: s}
}

func (m SweepModel) Init() tea.Cmd { return nil }

func (m SweepModel) sweepCmd() tea.Cmd {
	return func() tea.Msg {
		scanner := sweep.NewScanner(m.session.Facility)
		entries, report := scanner.Run(models.Lookback24h)
		sweep.NewClusterer().Apply(entries, m.session.Focus.GetFocusTargets(), models.DefaultClusterWindow)
		return sweepDoneMsg{entries: entries, report: report}
	}
}

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sweepDoneMsg:
		m.entries = msg.entries
		m.report = msg.report
		m.running = false
		m.ran = true
		m.cursor = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			m.cursor++
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "s":
			if !m.running {
				m.running = true
				return m, m.sweepCmd()
			}
		case "x":
			return m, m.stageCmd()
		}
	}
	if m.cursor >= len(m.entries) && len(m.entries) > 0 {
		m.cursor = len(m.entries) - 1
	}
	if len(m.entries) == 0 {
		m.cursor = 0
	}
	return m, nil
}

func (m SweepModel) stageCmd() tea.Cmd {
	if m.cursor >= len(m.entries) {
		return nil
	}
	entry := m.entries[m.cursor]
	return func() tea.Msg {
		if entry.Category != models.SweepFile {
			// Services need their registry key path; stage those from the CLI
			// with queue add --type Service.
			return itemStagedMsg{text: "stage services via: hostmedic queue add --type Service"}
		}
		item := models.CleanupItem{
			Type:         models.ItemFile,
			Name:         entry.Name,
			OriginalPath: entry.Path,
			SourceTab:    "Sweep",
			Severity:     entry.Severity,
			Reason:       entry.Reason,
			Action:       models.ActionQuarantine,
		}
		if !m.session.Queue.Enqueue(item) {
			return itemStagedMsg{text: "already queued: " + entry.Path}
		}
		if err := m.session.SaveQueue(); err != nil {
			return itemStagedMsg{text: "queue save failed: " + err.Error()}
		}
		return itemStagedMsg{text: "staged " + entry.Name + " (" + string(item.Action) + ")"}
	}
}

func (m *SweepModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m SweepModel) View() string {
	if m.running {
		return panelStyle.Width(max(20, m.width-2)).Render("Sweeping... this can take a while on large profiles.")
	}
	if !m.ran {
		return panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Artifact Sweep"),
				"",
				dimStyle.Render("No sweep has run yet in this session."),
				"",
				lipgloss.JoinHorizontal(lipgloss.Left,
					keycapStyle.Render("s"), " ", dimStyle.Render("run a 24h sweep"),
				),
			),
		)
	}

	lineLimit := m.height - 10
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, e := range m.entries {
		if i >= lineLimit {
			break
		}
		cursor := " "
		if i == m.cursor {
			cursor = "▌"
		}
		meta := ""
		switch {
		case e.FocusHit:
			meta = "FOCUS"
		case e.TimeCluster:
			meta = "TIME~" + truncate(e.ClusterTarget, 14)
		case e.FolderCluster:
			meta = "DIR~" + truncate(e.ClusterTarget, 14)
		}
		rowLine := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(2).Foreground(accent).Render(cursor),
			lipgloss.NewStyle().Width(9).Render(severityStyle(string(e.Severity)).Render(string(e.Severity))),
			lipgloss.NewStyle().Width(9).Foreground(slate).Render(string(e.Category)),
			lipgloss.NewStyle().Width(42).Foreground(ink).Render(truncate(e.Path, 40)),
			lipgloss.NewStyle().Width(26).Foreground(slate).Render(truncate(e.Reason, 24)),
			dimStyle.Render(meta),
		)
		if i == m.cursor {
			rowLine = selectedRowStyle.Width(max(20, m.width-6)).Render(rowLine)
		}
		rows += rowLine + "\n"
	}
	if rows == "" {
		rows = dimStyle.Render("Sweep found nothing in the window.\n")
	}

	header := fmt.Sprintf("Artifact Sweep  (%d found, %d flagged", m.report.Total, m.report.Flagged)
	if m.report.Truncated {
		header += ", truncated"
	}
	header += ")"

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(max(20, m.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render(header),
				"",
				dimStyle.Render("Severity Category Path                                      Reason                    Cluster"),
				rows,
				"",
				dimStyle.Render("j/k navigate  x stage  s re-run sweep"),
			),
		),
	)
}
