package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/2beens/gymtracker/internal/notice"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mutex sync.Mutex
	lines []string
}

func (e *recordingExecutor) Execute(_ context.Context, line string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.lines = append(e.lines, line)
}

func typeText(t *testing.T, m tea.Model, text string) tea.Model {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_EnterExecutesCommand(t *testing.T) {
	executor := &recordingExecutor{}
	screen := NewScreen(time.Second)
	var m tea.Model = newModel(context.Background(), screen, executor)

	m = typeText(t, m, "go goals")
	assert.Contains(t, m.View(), "> go goals")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"go goals"}, executor.lines)
	assert.NotContains(t, m.View(), "go goals")

	// blank lines are not executed
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestModel_TabAndBackspace(t *testing.T) {
	executor := &recordingExecutor{}
	var m tea.Model = newModel(context.Background(), NewScreen(time.Second), executor)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{nextPageCommand}, executor.lines)

	m = typeText(t, m, "ab")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Contains(t, m.View(), "> a█")
}

func TestModel_Quit(t *testing.T) {
	var m tea.Model = newModel(context.Background(), NewScreen(time.Second), &recordingExecutor{})
	m = typeText(t, m, "quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_Prompt(t *testing.T) {
	var m tea.Model = newModel(context.Background(), NewScreen(time.Second), &recordingExecutor{})

	reply := make(chan promptAnswer, 1)
	m, _ = m.Update(promptMsg{question: "Energy (1-5)?", reply: reply})
	assert.Contains(t, m.View(), "Energy (1-5)?")

	m = typeText(t, m, "4")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, promptAnswer{text: "4", ok: true}, <-reply)
	assert.NotContains(t, m.View(), "Energy (1-5)?")

	reply = make(chan promptAnswer, 1)
	m, _ = m.Update(promptMsg{question: "Sure?", reply: reply})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, promptAnswer{}, <-reply)
	assert.NotContains(t, m.View(), "Sure?")
}

func TestScreen_ShowAndNotice(t *testing.T) {
	screen := NewScreen(3 * time.Second)
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	screen.now = func() time.Time { return now }

	screen.Show(PageGoals, "goals content")
	page, content := screen.Current()
	assert.Equal(t, PageGoals, page)
	assert.Equal(t, "goals content", content)

	screen.ShowNotice(notice.Notice{Message: "Workout saved!", Success: true, At: now})
	var m tea.Model = newModel(context.Background(), screen, &recordingExecutor{})
	view := m.View()
	assert.Contains(t, view, "goals content")
	assert.Contains(t, view, "Workout saved!")
	assert.Contains(t, view, "Goals")

	now = now.Add(5 * time.Second)
	assert.NotContains(t, m.View(), "Workout saved!")

	screen.ShowStatic("Sign in")
	page, _ = screen.Current()
	assert.Equal(t, Page(""), page)
	assert.NotContains(t, m.View(), "Dashboard")
}

func TestScreen_AskWithoutProgram(t *testing.T) {
	screen := NewScreen(time.Second)
	_, err := screen.Ask(context.Background(), "anything?")
	assert.Error(t, err)
	assert.False(t, screen.Confirm(context.Background(), "Delete", "Sure?"))
}
