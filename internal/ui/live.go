package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/wandmouse/internal/wire"
)

const refreshInterval = 100 * time.Millisecond

// LogBuffer keeps the last lines written to it. It is used as the logger
// output while the live view owns the terminal.
type LogBuffer struct {
	mu    sync.Mutex
	lines []string
	max   int
}

// NewLogBuffer creates a buffer holding at most max lines
func NewLogBuffer(max int) *LogBuffer {
	if max <= 0 {
		max = 8
	}
	return &LogBuffer{max: max}
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		b.lines = append(b.lines, line)
	}
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append(b.lines[:0], b.lines[over:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first
func (b *LogBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

type tickMsg time.Time

// loopDoneMsg is sent when the bridge loop returned
type loopDoneMsg struct{ err error }

// LiveModel shows the state of a running bridge
type LiveModel struct {
	status  func() wire.Status
	stop    context.CancelFunc
	logs    *LogBuffer
	spinner spinner.Model

	current wire.Status
	done    bool
	err     error
	width   int
}

// NewLiveModel creates the live view. status is polled on every refresh,
// stop is called when the user quits.
func NewLiveModel(status func() wire.Status, stop context.CancelFunc, logs *LogBuffer) *LiveModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return &LiveModel{
		status:  status,
		stop:    stop,
		logs:    logs,
		spinner: s,
		current: status(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *LiveModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func (m *LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stop()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.current = m.status()
		return m, tick()
	case loopDoneMsg:
		m.done = true
		m.err = msg.err
		m.current = m.status()
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *LiveModel) View() string {
	title := TitleStyle.Render("wandmouse")
	if !m.done {
		title = m.spinner.View() + " " + title
	}

	sections := []string{title, "", RenderStatus(m.current)}

	if m.logs != nil {
		if lines := m.logs.Lines(); len(lines) > 0 {
			sections = append(sections, "", SubtleStyle.Render(strings.Join(lines, "\n")))
		}
	}

	if m.err != nil {
		sections = append(sections, "", ErrorStyle.Render(fmt.Sprintf("%s %v", IconError, m.err)))
	}
	if !m.done {
		sections = append(sections, "", MutedStyle.Render(FormatControl("q", "Quit")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// RunLive shows the live view while run executes. The view closes when run
// returns, and quitting the view cancels the context passed to run.
func RunLive(ctx context.Context, status func() wire.Status, logs *LogBuffer, run func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewLiveModel(status, cancel, logs)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	runErr := make(chan error, 1)
	go func() {
		err := run(ctx)
		runErr <- err
		program.Send(loopDoneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-runErr
		return fmt.Errorf("live view failed: %w", err)
	}

	cancel()
	return <-runErr
}
