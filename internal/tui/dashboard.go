package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostmedic/internal/casefile"
	"hostmedic/internal/database"
	"hostmedic/models"
)

// DashboardModel shows the case overview: baseline severity counts and the
// recent audit timeline.
type DashboardModel struct {
	session  *casefile.Session
	events   []models.AuditEvent
	baseline []models.PersistItem
	width    int
	height   int
	lastLoad time.Time
	loading  bool
}

type dashLoadedMsg struct {
	events   []models.AuditEvent
	baseline []models.PersistItem
}

// NewDashboardModel creates a DashboardModel.
func NewDashboardModel(s *casefile.Session) DashboardModel {
	return DashboardModel{session: s, loading: true}
}

func (d DashboardModel) Init() tea.Cmd {
	return d.loadCmd()
}

func (d DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		events, _ := database.ListAuditEvents(ctx, d.session.DB, d.session.Case.ID)
		baseline, _ := d.session.Baseline(ctx)
		return dashLoadedMsg{events: events, baseline: baseline}
	}
}

func (d DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashLoadedMsg:
		d.events = msg.events
		d.baseline = msg.baseline
		d.loading = false
		d.lastLoad = time.Now()
		return d, tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
			return d.loadCmd()()
		})
	case tea.KeyMsg:
		if msg.String() == "r" {
			d.loading = true
			return d, d.loadCmd()
		}
	}
	return d, nil
}

func (d *DashboardModel) SetSize(w, h int) {
	d.width = w
	d.height = h
}

func (d DashboardModel) View() string {
	if d.loading && len(d.events) == 0 {
		return panelStyle.Width(max(20, d.width-2)).Render("Loading case timeline...")
	}

	var flagged, clean, focus int
	for _, it := range d.baseline {
		if it.Risk.IsFlagged() {
			flagged++
		} else {
			clean++
		}
		if it.FocusHit {
			focus++
		}
	}
	pending := len(d.session.Queue.Pending())

	cardW := 18
	if d.width >= 100 {
		cardW = 20
	}
	summary := lipgloss.JoinHorizontal(lipgloss.Top,
		renderCounter("Flagged", flagged, highStyle, cardW),
		renderCounter("Focus hits", focus, mediumStyle, cardW),
		renderCounter("Clean", clean, okStyle, cardW),
		renderCounter("Queued", pending, lowStyle, cardW),
	)

	lineLimit := d.height - 12
	if lineLimit < 5 {
		lineLimit = 5
	}
	rows := ""
	for i, evt := range d.events {
		if i >= lineLimit {
			break
		}
		sev := evt.Severity
		if sev == "" {
			sev = "-"
		}
		rowLine := lipgloss.JoinHorizontal(lipgloss.Left,
			lipgloss.NewStyle().Width(10).Foreground(slate).Render(evt.Timestamp.Local().Format("15:04:05")),
			lipgloss.NewStyle().Width(14).Foreground(slate).Render(truncate(evt.Tab, 12)),
			lipgloss.NewStyle().Width(22).Foreground(ink).Render(truncate(evt.Action, 20)),
			lipgloss.NewStyle().Width(10).Render(severityStyle(sev).Render(sev)),
			dimStyle.Render(truncate(evt.Target, 40)),
		)
		rows += rowLine + "\n"
	}
	if len(d.events) == 0 {
		rows = dimStyle.Render("No activity yet. Run: hostmedic scan\n")
	}

	updated := "never"
	if !d.lastLoad.IsZero() {
		updated = d.lastLoad.Format("15:04:05")
	}
	refreshInfo := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
		"   ",
		dimStyle.Render("updated "+updated),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Padding(0, 1).Render(summary),
		panelStyle.Width(max(20, d.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Case Timeline"),
				dimStyle.Render("Time      Tab           Action                Severity  Target"),
				rows,
				refreshInfo,
			),
		),
	)
}

func renderCounter(label string, count int, style lipgloss.Style, width int) string {
	return boxStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Center,
			style.Bold(true).Render(fmt.Sprintf("%d", count)),
			dimStyle.Render(strings.ToUpper(label)),
		),
	) + "  "
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max+1:]
}
