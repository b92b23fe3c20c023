package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// progressMsg carries one pipeline progress update into the UI loop.
type progressMsg struct {
	completed int
	total     int
	step      string
}

// doneMsg signals that the review finished, successfully or not.
type doneMsg struct {
	err error
}

type styles struct {
	title   lipgloss.Style
	step    lipgloss.Style
	counter lipgloss.Style
	err     lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		step:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		counter: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

type model struct {
	styles   styles
	spinner  spinner.Model
	progress progress.Model

	completed int
	total     int
	step      string
	done      bool
	err       error
}

func newModel() *model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))

	return &model{
		styles:   newStyles(),
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-10, 60)
		return m, nil

	case progressMsg:
		m.completed = msg.completed
		m.total = msg.total
		m.step = msg.step
		if m.total == 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.completed) / float64(m.total))

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m *model) View() string {
	if m.done {
		if m.err != nil {
			return m.styles.err.Render("✗ review failed: "+m.err.Error()) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.styles.title.Render("Reviewing changes"))
	b.WriteString("\n\n")

	if m.total > 0 {
		b.WriteString("  ")
		b.WriteString(m.progress.View())
		b.WriteString("  ")
		b.WriteString(m.styles.counter.Render(fmt.Sprintf("%d/%d", m.completed, m.total)))
		b.WriteString("\n")
		if m.step != "" {
			b.WriteString("  ")
			b.WriteString(m.styles.step.Render(m.step))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  ")
		b.WriteString(m.styles.step.Render("preparing repository index..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
