// Package display is the terminal rendering of a display session.
package display

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Nixie-Tech-LLC/informator/internal/poller"
	"github.com/Nixie-Tech-LLC/informator/internal/render"
)

const clockTick = time.Second

var (
	pinStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(1, 4).Border(lipgloss.DoubleBorder())
	hintStyle     = lipgloss.NewStyle().Faint(true)
	clockStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	moduleStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginBottom(1)
	emptyStyle    = lipgloss.NewStyle().Italic(true).Faint(true)
	imageURLStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type tickMsg time.Time

type snapshotMsg poller.Snapshot

// Model draws the latest session snapshot, redrawn every clock tick.
type Model struct {
	updates  <-chan poller.Snapshot
	selector *render.Selector
	snap     poller.Snapshot
	now      time.Time
	width    int
}

func New(session *poller.Session) Model {
	return Model{
		updates:  session.Updates(),
		selector: render.NewSelector(),
		snap:     session.Snapshot(),
		now:      time.Now(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(clockTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForSnapshot(updates <-chan poller.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForSnapshot(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case snapshotMsg:
		m.snap = poller.Snapshot(msg)
		return m, waitForSnapshot(m.updates)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(clockStyle.Render(m.now.Format("15:04")))
	b.WriteString("  ")
	b.WriteString(hintStyle.Render(render.LongDate(m.now)))
	b.WriteString("\n\n")

	if !m.snap.Connected {
		b.WriteString(pinStyle.Render(m.snap.PIN))
		b.WriteString("\n\n")
		b.WriteString(hintStyle.Render("Введите этот PIN в панели администратора"))
		b.WriteString("\n")
		return b.String()
	}

	views := m.selector.RenderAll(m.snap.Modules, m.now)
	if len(views) == 0 {
		b.WriteString(emptyStyle.Render("Нет модулей для отображения"))
		b.WriteString("\n")
		return b.String()
	}

	style := moduleStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	for _, v := range views {
		b.WriteString(style.Render(renderView(v)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderView(v render.View) string {
	lines := make([]string, 0, len(v.Lines)+2)
	if v.Title != "" {
		lines = append(lines, titleStyle.Render(v.Title))
	}
	lines = append(lines, v.Lines...)
	if v.ImageURL != "" {
		lines = append(lines, imageURLStyle.Render(v.ImageURL))
	}
	return strings.Join(lines, "\n")
}
