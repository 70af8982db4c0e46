package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymtracker/internal/notice"

	tea "github.com/charmbracelet/bubbletea"
)

var ErrPromptCancelled = errors.New("prompt cancelled")

// Screen is the Display of the terminal client. It keeps the latest rendered
// page, the latest notice and the pending prompt, and pokes the running
// program to redraw when any of them changes.
type Screen struct {
	noticeTTL time.Duration
	now       func() time.Time

	mutex   sync.Mutex
	program *tea.Program
	page    Page
	content string
	notice  *notice.Notice
}

func NewScreen(noticeTTL time.Duration) *Screen {
	return &Screen{
		noticeTTL: noticeTTL,
		now:       time.Now,
	}
}

type redrawMsg struct{}

type promptMsg struct {
	question string
	reply    chan promptAnswer
}

type promptAnswer struct {
	text string
	ok   bool
}

func (s *Screen) Show(page Page, content string) {
	s.mutex.Lock()
	s.page = page
	s.content = content
	s.mutex.Unlock()
	s.send(redrawMsg{})
}

// ShowStatic replaces the whole screen with content that belongs to no page,
// like the sign in view or a fatal error.
func (s *Screen) ShowStatic(content string) {
	s.Show("", content)
}

// ShowNotice is meant to be registered as the notice board listener.
func (s *Screen) ShowNotice(n notice.Notice) {
	s.mutex.Lock()
	s.notice = &n
	s.mutex.Unlock()
	s.send(redrawMsg{})
}

// Current returns the page and content last shown.
func (s *Screen) Current() (Page, string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.page, s.content
}

func (s *Screen) currentNotice() (notice.Notice, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.notice == nil {
		return notice.Notice{}, false
	}
	if s.noticeTTL > 0 && s.now().Sub(s.notice.At) > s.noticeTTL {
		return notice.Notice{}, false
	}
	return *s.notice, true
}

// Ask shows question on the input line and blocks until the user answers,
// presses esc, or ctx is done. It must not be called from the program loop.
func (s *Screen) Ask(ctx context.Context, question string) (string, error) {
	reply := make(chan promptAnswer, 1)
	if !s.send(promptMsg{question: question, reply: reply}) {
		return "", errors.New("screen is not running")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case answer := <-reply:
		if !answer.ok {
			return "", ErrPromptCancelled
		}
		return answer.text, nil
	}
}

// Confirm asks a yes/no question, anything but y or yes is a no.
func (s *Screen) Confirm(ctx context.Context, title, message string) bool {
	answer, err := s.Ask(ctx, fmt.Sprintf("%s: %s [y/N]", title, message))
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// Run starts the terminal program and blocks until the user quits or ctx is done.
func (s *Screen) Run(ctx context.Context, executor Executor) error {
	program := tea.NewProgram(
		newModel(ctx, s, executor),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	s.mutex.Lock()
	s.program = program
	s.mutex.Unlock()

	defer func() {
		s.mutex.Lock()
		s.program = nil
		s.mutex.Unlock()
	}()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// send hands msg to the running program without blocking the caller, false
// when there is no program.
func (s *Screen) send(msg tea.Msg) bool {
	s.mutex.Lock()
	program := s.program
	s.mutex.Unlock()
	if program == nil {
		return false
	}
	go program.Send(msg)
	return true
}
