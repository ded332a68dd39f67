// Package tui is a terminal client driving one quiz controller.
package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"topic-quiz-service/internal/app"
	"topic-quiz-service/internal/domain"
	"topic-quiz-service/internal/view"
)

// Session is the part of the controller the terminal client drives.
type Session interface {
	StartQuiz(topic string) error
	SelectOption(index int) error
	Next() error
	Cancel() error
	Restart()
	Snapshot() app.Snapshot
}

// Options configures the terminal client.
type Options struct {
	NoColor      bool
	TickInterval time.Duration
}

// Model renders the current page and turns key presses into controller intents.
type Model struct {
	session      Session
	updates      <-chan app.Snapshot
	page         view.Page
	input        textinput.Model
	spinner      spinner.Model
	bar          progress.Model
	cursor       int
	notice       string
	loadingSince time.Time
	now          time.Time
	tickInterval time.Duration
	width        int
	noColor      bool
}

// NewModel builds a model for session, rendering snapshots received on updates.
func NewModel(session Session, updates <-chan app.Snapshot, opts Options) Model {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = 250 * time.Millisecond
	}
	input := textinput.New()
	input.Placeholder = "Type any topic here..."
	input.CharLimit = 120
	input.Focus()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	if opts.NoColor {
		bar = progress.New(progress.WithSolidFill("7"), progress.WithoutPercentage())
	}

	m := Model{
		session:      session,
		updates:      updates,
		input:        input,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		bar:          bar,
		now:          time.Now(),
		tickInterval: tickInterval,
		width:        80,
		noColor:      opts.NoColor,
	}
	return m.applySnapshot(session.Snapshot())
}

// Run blocks until the user quits the terminal client.
func Run(ctx context.Context, ctrl *app.Controller, out io.Writer, opts Options) error {
	if out == nil {
		out = os.Stdout
	}
	updates, cancel := ctrl.Subscribe()
	defer cancel()

	program := tea.NewProgram(NewModel(ctrl, updates, opts), tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// snapshotMsg carries a controller transition into Bubble Tea.
type snapshotMsg struct {
	Snapshot app.Snapshot
}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.updates), textinput.Blink, m.spinner.Tick, tick(m.tickInterval))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.bar.Width = max(typed.Width-8, 10)
		return m, nil
	case snapshotMsg:
		m = m.applySnapshot(typed.Snapshot)
		return m, waitForSnapshot(m.updates)
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.tickInterval)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(typed)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	m.notice = ""

	switch m.page.Screen {
	case domain.ScreenHome.String():
		return m.handleHomeKey(key)
	case domain.ScreenLoading.String():
		switch key.String() {
		case "esc":
			m.session.Restart()
		case "q":
			return m, tea.Quit
		}
	case domain.ScreenQuiz.String():
		m.handleQuizKey(key)
	case domain.ScreenResults.String():
		switch key.String() {
		case "enter", "r":
			m.session.Restart()
		case "q", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleHomeKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.cursor = (m.cursor + 1) % len(view.PresetTopics)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.cursor = (m.cursor + len(view.PresetTopics) - 1) % len(view.PresetTopics)
		return m, nil
	case tea.KeyEnter:
		topic := strings.TrimSpace(m.input.Value())
		if topic == "" {
			topic = view.PresetTopics[m.cursor].Name
		}
		m.act(m.session.StartQuiz(topic))
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *Model) handleQuizKey(key tea.KeyMsg) {
	quiz := m.page.Quiz
	if quiz == nil {
		return
	}
	switch s := key.String(); s {
	case "up", "k":
		m.cursor = (m.cursor + len(quiz.Options) - 1) % len(quiz.Options)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(quiz.Options)
	case " ":
		m.act(m.session.SelectOption(m.cursor))
	case "enter":
		m.act(m.session.Next())
	case "esc":
		m.act(m.session.Cancel())
	case "a", "b", "c", "d", "1", "2", "3", "4":
		idx := optionIndex(s)
		if idx < len(quiz.Options) {
			m.cursor = idx
			m.act(m.session.SelectOption(idx))
		}
	}
}

// act surfaces a rejected intent without changing the page.
func (m *Model) act(err error) {
	switch {
	case err == nil:
	case domain.IsInvalidAction(err):
		m.notice = noticeFor(err)
	default:
		m.notice = err.Error()
	}
}

func (m Model) applySnapshot(snap app.Snapshot) Model {
	prev := m.page
	m.page = view.Render(snap)
	if m.page.Screen != prev.Screen {
		m.cursor = 0
		m.notice = ""
		if m.page.Screen == domain.ScreenLoading.String() {
			m.loadingSince = m.now
		}
		if m.page.Screen == domain.ScreenHome.String() {
			m.input.Reset()
		}
	}
	if m.page.Quiz != nil && (prev.Quiz == nil || prev.Quiz.Index != m.page.Quiz.Index) {
		m.cursor = 0
	}
	return m
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSelection):
		return "Pick an answer first."
	case errors.Is(err, domain.ErrEmptyTopic):
		return "Type a topic or pick one."
	case errors.Is(err, domain.ErrFetchInFlight):
		return "Still getting your quiz ready."
	default:
		return err.Error()
	}
}

func optionIndex(key string) int {
	switch key {
	case "a", "1":
		return 0
	case "b", "2":
		return 1
	case "c", "3":
		return 2
	default:
		return 3
	}
}

func waitForSnapshot(updates <-chan app.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		snap, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg{Snapshot: snap}
	}
}

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
