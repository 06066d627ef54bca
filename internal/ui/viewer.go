// Package ui renders a recorded trace in an interactive terminal viewer.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"snoop"
)

type viewerModel struct {
	title  string
	events []snoop.Event
	filter snoop.Kind // 0 means no filter
	vp     viewport.Model
	width  int
	ready  bool
}

// NewViewer returns a Bubble Tea model that browses a recorded trace.
// Keys: j/k or arrows scroll, f cycles the kind filter, q quits.
func NewViewer(title string, events []snoop.Event) tea.Model {
	return &viewerModel{
		title:  title,
		events: events,
		width:  80,
	}
}

func (m *viewerModel) Init() tea.Cmd {
	return nil
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "f":
			m.filter = nextFilter(m.filter)
			m.vp.SetContent(m.content())
			m.vp.GotoTop()
			return m, nil
		case "g":
			m.vp.GotoTop()
			return m, nil
		case "G":
			m.vp.GotoBottom()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Header and footer take two lines each.
		h := msg.Height - 4
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, h)
			m.vp.SetContent(m.content())
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = h
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *viewerModel) View() string {
	if !m.ready {
		return "loading trace..."
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	header := fmt.Sprintf("%s  (%d events%s)", m.title, m.countVisible(), m.filterLabel())
	footer := "j/k scroll · f filter kind · g/G top/bottom · q quit"

	var b strings.Builder
	b.WriteString(titleStyle.Render(truncate(header, m.width)))
	b.WriteString("\n\n")
	b.WriteString(m.vp.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(footer))
	return b.String()
}

func (m *viewerModel) filterLabel() string {
	if m.filter == 0 {
		return ""
	}
	return ", kind=" + m.filter.String()
}

func (m *viewerModel) countVisible() int {
	if m.filter == 0 {
		return len(m.events)
	}
	n := 0
	for _, ev := range m.events {
		if ev.Kind == m.filter {
			n++
		}
	}
	return n
}

func (m *viewerModel) content() string {
	var b strings.Builder
	for i := range m.events {
		ev := &m.events[i]
		if m.filter != 0 && ev.Kind != m.filter {
			continue
		}
		line := strings.TrimSuffix(string(snoop.FormatEvent(ev, snoop.FormatText)), "\n")
		b.WriteString(styleKind(ev.Kind).Render(truncate(line, m.width)))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "no events match the current filter"
	}
	return b.String()
}

// nextFilter cycles all -> call -> line -> return -> exception -> announce -> all.
func nextFilter(k snoop.Kind) snoop.Kind {
	if k == snoop.KindAnnounce {
		return 0
	}
	return k + 1
}

func styleKind(k snoop.Kind) lipgloss.Style {
	switch k {
	case snoop.KindCall:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	case snoop.KindReturn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case snoop.KindException:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case snoop.KindAnnounce:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
