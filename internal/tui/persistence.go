package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostmedic/internal/casefile"
	"hostmedic/models"
)

// PersistenceModel displays the latest baseline snapshot and lets the
// operator stage flagged entries for remediation.
type PersistenceModel struct {
	session     *casefile.Session
	items       []models.PersistItem
	width       int
	height      int
	cursor      int
	flaggedOnly bool
	loading     bool
}

type persistLoadedMsg struct{ items []models.PersistItem }

// itemStagedMsg bubbles a staging outcome up to the root model's status bar.
type itemStagedMsg struct{ text string }

// NewPersistenceModel creates a PersistenceModel.
func NewPersistenceModel(s *casefile.Session) PersistenceModel {
	return PersistenceModel{session: s, flaggedOnly: true, loading: true}
}

func (p PersistenceModel) Init() tea.Cmd {
	return p.loadCmd()
}

func (p PersistenceModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		items, _ := p.session.Baseline(context.Background())
		return persistLoadedMsg{items: items}
	}
}

func (p PersistenceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case persistLoadedMsg:
		p.items = msg.items
		p.loading = false

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			p.cursor++
		case "k", "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "f":
			p.flaggedOnly = !p.flaggedOnly
			p.cursor = 0
		case "r":
			p.loading = true
			return p, p.loadCmd()
		case "x":
			return p, p.stageCmd()
		}
	}
	p = p.clampCursor()
	return p, nil
}

// stageCmd enqueues the item under the cursor with its default action.
func (p PersistenceModel) stageCmd() tea.Cmd {
	visible := p.visibleItems()
	if p.cursor >= len(visible) {
		return nil
	}
	it := visible[p.cursor]
	return func() tea.Msg {
		item := cleanupItemFor(it)
		if !p.session.Queue.Enqueue(item) {
			return itemStagedMsg{text: "already queued: " + item.OriginalPath}
		}
		if err := p.session.SaveQueue(); err != nil {
			return itemStagedMsg{text: "queue save failed: " + err.Error()}
		}
		return itemStagedMsg{text: "staged " + item.Name + " (" + string(item.Action) + ")"}
	}
}

// cleanupItemFor maps a persistence finding onto the remediation unit that
// neutralises it.
func cleanupItemFor(it models.PersistItem) models.CleanupItem {
	var itemType models.ItemType
	path := it.KeyPath
	switch it.Location {
	case models.LocationStartupFolder:
		itemType = models.ItemStartupItem
		path = it.ExePath
	case models.LocationService, models.LocationDriver:
		itemType = models.ItemService
	case models.LocationScheduledTask:
		itemType = models.ItemScheduledTask
		path = it.Name
	default:
		itemType = models.ItemRegistryKey
	}
	severity := models.SeverityLow
	if it.Risk.IsFlagged() {
		severity = models.SeverityHigh
	}
	return models.CleanupItem{
		Type:         itemType,
		Name:         it.Name,
		OriginalPath: path,
		SourceTab:    "Persistence",
		Severity:     severity,
		Reason:       it.Risk.Reason,
		Action:       itemType.DefaultAction(),
	}
}

func (p *PersistenceModel) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p PersistenceModel) visibleItems() []models.PersistItem {
	if !p.flaggedOnly {
		return p.items
	}
	var out []models.PersistItem
	for _, it := range p.items {
		if it.Risk.IsFlagged() {
			out = append(out, it)
		}
	}
	return out
}

func (p PersistenceModel) View() string {
	if p.loading && len(p.items) == 0 {
		return panelStyle.Width(max(20, p.width-2)).Render("Loading baseline snapshot...")
	}

	visible := p.visibleItems()
	lineLimit := p.height - 10
	if lineLimit < 5 {
		lineLimit = 5
	}

	rows := ""
	for i, it := range visible {
		if i >= lineLimit {
			break
		}
		meta := ""
		if it.NewSince {
			meta = "NEW"
		}
		if it.FocusHit {
			if meta != "" {
				meta += " "
			}
			meta += "FOCUS"
		}
		rows += p.renderRow(i,
			string(it.Risk.Level),
			string(it.Location),
			truncate(it.Name, 26),
			truncate(it.ExePath, 38),
			meta,
		)
	}
	if rows == "" {
		rows = dimStyle.Render("Nothing to show. Run a scan, or press f for all entries.\n")
	}

	flagged := 0
	for _, it := range p.items {
		if it.Risk.IsFlagged() {
			flagged++
		}
	}
	filterBar := lipgloss.JoinHorizontal(lipgloss.Left,
		p.filterChip("Flagged", true, flagged),
		" ",
		p.filterChip("All", false, len(p.items)),
		"  ",
		keycapStyle.Render("x"),
		" ",
		dimStyle.Render("stage"),
		"  ",
		keycapStyle.Render("r"),
		" ",
		dimStyle.Render("refresh"),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(max(20, p.width-2)).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				panelHeaderStyle.Render("Persistence Baseline"),
				filterBar,
				"",
				dimStyle.Render("Verdict   Location        Name                        Path                                   Meta"),
				rows,
				"",
				dimStyle.Render("j/k navigate  f toggle filter  x stage for remediation"),
			),
		),
	)
}

func (p PersistenceModel) renderRow(idx int, verdict, location, name, path, meta string) string {
	cursor := " "
	if idx == p.cursor {
		cursor = "▌"
	}
	rowLine := lipgloss.JoinHorizontal(lipgloss.Left,
		lipgloss.NewStyle().Width(2).Foreground(accent).Render(cursor),
		lipgloss.NewStyle().Width(10).Render(severityStyle(verdict).Render(verdict)),
		lipgloss.NewStyle().Width(16).Foreground(slate).Render(location),
		lipgloss.NewStyle().Width(28).Foreground(ink).Render(name),
		lipgloss.NewStyle().Width(40).Foreground(slate).Render(path),
		dimStyle.Render(meta),
	)
	if idx == p.cursor {
		return selectedRowStyle.Width(max(20, p.width-6)).Render(rowLine) + "\n"
	}
	return rowLine + "\n"
}

func (p PersistenceModel) filterChip(label string, flaggedOnly bool, count int) string {
	s := fmt.Sprintf("%s %d", label, count)
	if p.flaggedOnly == flaggedOnly {
		return activeTabStyle.Render(s)
	}
	return tabStyle.Render(s + " [f]")
}

func (p PersistenceModel) clampCursor() PersistenceModel {
	total := len(p.visibleItems())
	if total == 0 {
		p.cursor = 0
		return p
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= total {
		p.cursor = total - 1
	}
	return p
}
