package tui

import (
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostmedic/internal/casefile"
	"hostmedic/models"
)

// QueueModel lists the staged remediation items. Execution stays on the CLI
// (hostmedic run) so the confirmation flow is the same everywhere.
type QueueModel struct {
	session *casefile.Session
	items   []models.CleanupItem
	width   int
	height  int
	cursor  int
}

// NewQueueModel creates a QueueModel.
func NewQueueModel(s *casefile.Session) QueueModel {
	m := QueueModel{session: s}
	m.reload()
	return m
}

func (q *QueueModel) reload() {
	q.items = q.session.Queue.Items()
}

func (q QueueModel) Init() tea.Cmd { return nil }

func (q QueueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			q.cursor++
		case "k", "up":
			if q.cursor > 0 {
				q.cursor--
			}
		case "r":
			q.reload()
		case "d":
			if q.cursor < len(q.items) {
				if err := q.session.Queue.Dequeue(q.items[q.cursor].ID); err == nil {
					_ = q.session.SaveQueue()
				}
				q.reload()
			}
		}
	}
	if q.cursor >= len(q.items) && len(q.items) > 0 {
		q.cursor = len(q.items) - 1
	}
	if len(q.items) == 0 {
		q.cursor = 0
	}
	return q, nil
}

func (q *QueueModel) SetSize(w, h int) {
	q.width = w
	q.height = h
}

func (q QueueModel) View() string {
	lineLimit := q.height - 9
	if lineLimit < 5 {
		lineLimit = 5
	}

	rows := ""
	for i, it := range q.items {
		if i >= lineLimit {
			break
		}
		cursor := " "
		if i == q.cursor {
			cursor = "▌"
		}
		statusFmt := mutedBadgeStyle.Render(string(it.Status))
		switch it.Status {
		case models.StatusCompleted:
			statusFmt = lipgloss.NewStyle().Foreground(bgDark).Background(green).Padding(0, 1).Render(string(it.Status))
		case models.StatusFailed:
			statusFmt = lipgloss.NewStyle().Foreground(bgDark).Background(red).Padding(0, 1).Render(string(it.Status))
		case models.StatusUndone:
			statusFmt = lipgloss.NewStyle().Foreground(bgDark).Background(yellow).Padding(0, 1).Render(string(it.Status))
		}
		rowLine := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(2).Foreground(accent).Render(cursor),
			lipgloss.NewStyle().Width(15).Foreground(slate).Render(string(it.Type)),
			lipgloss.NewStyle().Width(17).Foreground(ink).Render(string(it.Action)),
			lipgloss.NewStyle().Width(13).Render(statusFmt),
			dimStyle.Render(truncate(it.OriginalPath, 44)),
		)
		if i == q.cursor {
			rowLine = selectedRowStyle.Width(max(20, q.width-6)).Render(rowLine)
		}
		rows += rowLine + "\n"
		if it.ErrorMsg != "" {
			rows += "  " + highStyle.Render(truncate(it.ErrorMsg, 70)) + "\n"
		}
	}
	if len(q.items) == 0 {
		rows = dimStyle.Render("Queue is empty. Stage entries from the Persistence tab with x.\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(max(20, q.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Remediation Queue"),
				"",
				dimStyle.Render("Type           Action           Status       Target"),
				rows,
				"",
				dimStyle.Render("j/k navigate  d remove  r refresh  execute with: hostmedic run"),
			),
		),
	)
}
