package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"hostmedic/internal/casefile"
)

// Tab represents a TUI navigation tab.
type Tab int

const (
	TabDashboard Tab = iota
	TabPersistence
	TabSweep
	TabQueue
)

var tabNames = []string{"Dashboard", "Persistence", "Sweep", "Queue"}
var tabCompactNames = []string{"Dash", "Persist", "Sweep", "Queue"}
var tabTinyNames = []string{"D", "P", "S", "Q"}

// App is the root bubbletea model. All views share one case session.
type App struct {
	session     *casefile.Session
	width       int
	height      int
	activeTab   Tab
	dashboard   DashboardModel
	persistence PersistenceModel
	sweep       SweepModel
	queue       QueueModel
	statusMsg   string
}

// NewApp creates the TUI application for an open case session.
func NewApp(s *casefile.Session) *App {
	return &App{
		session:     s,
		dashboard:   NewDashboardModel(s),
		persistence: NewPersistenceModel(s),
		sweep:       NewSweepModel(s),
		queue:       NewQueueModel(s),
	}
}

// Run starts the bubbletea program.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		a.persistence.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentW := msg.Width - 2
		if contentW < 20 {
			contentW = 20
		}
		contentH := msg.Height - 7
		if contentH < 8 {
			contentH = 8
		}
		a.dashboard.SetSize(contentW, contentH)
		a.persistence.SetSize(contentW, contentH)
		a.sweep.SetSize(contentW, contentH)
		a.queue.SetSize(contentW, contentH)

	case itemStagedMsg:
		a.statusMsg = msg.text
		a.queue.reload()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.activeTab = TabDashboard
		case "2":
			a.activeTab = TabPersistence
		case "3":
			a.activeTab = TabSweep
		case "4":
			a.activeTab = TabQueue
			a.queue.reload()
		case "tab":
			a.activeTab = (a.activeTab + 1) % Tab(len(tabNames))
		case "shift+tab":
			a.activeTab--
			if a.activeTab < 0 {
				a.activeTab = Tab(len(tabNames) - 1)
			}
		}
	}

	// Delegate to active view.
	switch a.activeTab {
	case TabDashboard:
		newDash, cmd := a.dashboard.Update(msg)
		a.dashboard = newDash.(DashboardModel)
		cmds = append(cmds, cmd)
	case TabPersistence:
		newPersist, cmd := a.persistence.Update(msg)
		a.persistence = newPersist.(PersistenceModel)
		cmds = append(cmds, cmd)
	case TabSweep:
		newSweep, cmd := a.sweep.Update(msg)
		a.sweep = newSweep.(SweepModel)
		cmds = append(cmds, cmd)
	case TabQueue:
		newQueue, cmd := a.queue.Update(msg)
		a.queue = newQueue.(QueueModel)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	nav := a.renderTabs()

	var content string
	switch a.activeTab {
	case TabDashboard:
		content = a.dashboard.View()
	case TabPersistence:
		content = a.persistence.View()
	case TabSweep:
		content = a.sweep.View()
	case TabQueue:
		content = a.queue.View()
	}

	contentBox := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		MaxHeight(max(1, a.height-4)).
		Render(content)

	statusText := "tab next  shift+tab prev  1-4 jump  q quit"
	if a.statusMsg != "" {
		statusText = a.statusMsg + "   " + statusText
	}
	status := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(slateDim).
		Render(statusText)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		nav,
		contentBox,
		status,
	)
}

func (a *App) renderHeader() string {
	row := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("hostmedic"),
		"  ",
		dimStyle.Render("case "+a.session.Case.Name+" on "+a.session.Case.Hostname),
		"  ",
		mutedBadgeStyle.Render(" "+tabNames[a.activeTab]+" "),
	)
	return lipgloss.NewStyle().
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(line).
		Width(a.width).
		Padding(0, 1).
		Render(row)
}

func (a *App) renderTabs() string {
	labels := tabNames
	rendered := a.renderTabLabels(labels)
	maxWidth := a.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if lipgloss.Width(rendered) > maxWidth {
		labels = tabCompactNames
		rendered = a.renderTabLabels(labels)
	}
	if lipgloss.Width(rendered) > maxWidth {
		rendered = a.renderTabLabels(tabTinyNames)
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(slate).
		Render(rendered)
}

func (a *App) renderTabLabels(labels []string) string {
	parts := make([]string, 0, len(labels))
	for i, name := range labels {
		label := fmt.Sprintf("%d:%s", i+1, name)
		if Tab(i) == a.activeTab {
			parts = append(parts, lipgloss.NewStyle().Bold(true).Foreground(accent).Render(label))
		} else {
			parts = append(parts, dimStyle.Render(label))
		}
		if i < len(labels)-1 {
			parts = append(parts, dimStyle.Render("  ·  "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
