package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Operations against a live database get a hard deadline so a wedged
// connection cannot leave the terminal hanging.
const actionTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type doneMsg struct {
	details []string
	err     error
}

// runModel drives one ops action (seeding a catalog, promoting an
// admin) and renders its outcome.
type runModel struct {
	title   string
	started time.Time
	details []string
	err     error
	done    bool
	action  func(context.Context) ([]string, error)
}

func (m runModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		details, err := m.action(ctx)
		return doneMsg{details: details, err: err}
	}
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
	case doneMsg:
		m.details = msg.details
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("glowbook "+m.title) + "\n")
	if !m.done {
		b.WriteString(dimStyle.Render("working...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(fmt.Sprintf("%s: %v\n", failStyle.Render("FAILED"), m.err))
	} else {
		b.WriteString(okStyle.Render(fmt.Sprintf("done in %s", time.Since(m.started).Round(time.Millisecond))) + "\n")
	}
	for _, d := range m.details {
		b.WriteString(dimStyle.Render("- ") + d + "\n")
	}
	return b.String()
}

func Run(title string, action func(context.Context) ([]string, error)) ([]string, error) {
	m := runModel{title: title, started: time.Now(), action: action}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	res := final.(runModel)
	return res.details, res.err
}
