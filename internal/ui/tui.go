package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs one command line typed by the user. It is called off the
// program loop, so it may block on store calls and prompts.
type Executor interface {
	Execute(ctx context.Context, line string)
}

const (
	nextPageCommand = "next"
	prevPageCommand = "prev"
	quitCommand     = "quit"
)

type model struct {
	ctx      context.Context
	screen   *Screen
	executor Executor

	input  []rune
	prompt *promptMsg
	width  int
}

func newModel(ctx context.Context, screen *Screen, executor Executor) model {
	return model{
		ctx:      ctx,
		screen:   screen,
		executor: executor,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case redrawMsg:
		// View reads the screen
	case promptMsg:
		if m.prompt != nil {
			// one prompt at a time, the newer one is refused
			msg.reply <- promptAnswer{}
			return m, nil
		}
		m.prompt = &msg
		m.input = nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.cancelPrompt()
		return m, tea.Quit
	case tea.KeyEsc:
		if m.prompt != nil {
			m.cancelPrompt()
			m.prompt = nil
		}
		m.input = nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	case tea.KeyTab:
		return m, m.execute(nextPageCommand)
	case tea.KeyShiftTab:
		return m, m.execute(prevPageCommand)
	case tea.KeyEnter:
		line := string(m.input)
		m.input = nil
		if m.prompt != nil {
			m.prompt.reply <- promptAnswer{text: line, ok: true}
			m.prompt = nil
			return m, nil
		}
		line = strings.TrimSpace(line)
		if line == quitCommand || line == "exit" {
			return m, tea.Quit
		}
		if line == "" {
			return m, nil
		}
		return m, m.execute(line)
	}
	return m, nil
}

func (m model) cancelPrompt() {
	if m.prompt != nil {
		m.prompt.reply <- promptAnswer{}
	}
}

func (m model) execute(line string) tea.Cmd {
	ctx, executor := m.ctx, m.executor
	return func() tea.Msg {
		executor.Execute(ctx, line)
		return nil
	}
}

func (m model) View() string {
	page, content := m.screen.Current()

	var b strings.Builder
	if page != "" {
		b.WriteString(tabBar(page))
		b.WriteString("\n\n")
	}
	b.WriteString(content)
	b.WriteString("\n\n")

	if n, ok := m.screen.currentNotice(); ok {
		style := successStyle
		if !n.Success {
			style = failureStyle
		}
		b.WriteString(style.Render(n.Message))
		b.WriteString("\n")
	}

	if m.prompt != nil {
		b.WriteString(hintStyle.Render(m.prompt.question))
		b.WriteString("\n")
	}
	b.WriteString(valueStyle.Render("> "))
	b.WriteString(string(m.input))
	b.WriteString("█")
	return b.String()
}

func tabBar(active Page) string {
	tabs := make([]string, 0, len(Pages))
	for _, p := range Pages {
		if p == active {
			tabs = append(tabs, activeTabStyle.Render(p.Title()))
			continue
		}
		tabs = append(tabs, tabStyle.Render(p.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// ErrorView is the full screen shown when the client cannot start.
func ErrorView(title, message string) string {
	return errorStyle.Render(title) + "\n" + mutedStyle.Render(message)
}

// AuthView is shown while nobody is signed in.
func AuthView() string {
	return strings.Join([]string{
		titleStyle.Render("GymTracker"),
		subtitleStyle.Render("Track your workouts, records and goals."),
		"",
		cardStyle.Render(strings.Join([]string{
			headingStyle.Render("Sign in"),
			hintStyle.Render("signin <email> <password>"),
			"",
			headingStyle.Render("New here?"),
			hintStyle.Render("signup <email> <password>"),
			mutedStyle.Render("Passwords need at least 6 characters."),
		}, "\n")),
		hintStyle.Render("quit"),
	}, "\n")
}
