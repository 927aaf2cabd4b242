//go:build !no_bubbletea

package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hrbox-pull/hrbox-pull/core"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
)

var (
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	nameStyle = lipgloss.NewStyle().Bold(true)
)

type savedMsg struct {
	path  string
	name  string
	size  int64
	done  int
	total int
}

type readMsg struct {
	path string
	read int64
}

type doneMsg struct {
	result *core.Result
	err    error
}

type pullModel struct {
	progress progress.Model
	last     string
	bytes    int64
	inFlight map[string]int64
	done     int
	total    int
	result   *core.Result
	err      error
	finished bool
}

func newPullModel() pullModel {
	return pullModel{
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(50),
		),
		inFlight: make(map[string]int64),
	}
}

func (m pullModel) Init() tea.Cmd {
	return nil
}

func (m pullModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-10, 80)
		return m, nil

	case readMsg:
		m.inFlight[msg.path] = msg.read
		return m, nil

	case savedMsg:
		delete(m.inFlight, msg.path)
		m.last = msg.name
		m.bytes += msg.size
		m.done = msg.done
		m.total = msg.total
		if m.total == 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.done) / float64(m.total))

	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		m.finished = true
		return m, tea.Quit

	case progress.FrameMsg:
		if m.finished {
			return m, nil
		}
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m pullModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  Error: %s\n\n", m.err.Error())
	}

	var sb strings.Builder
	sb.WriteString("\n")
	if m.last != "" {
		sb.WriteString(fmt.Sprintf("  %s\n", nameStyle.Render(m.last)))
	}
	received := m.bytes
	for _, n := range m.inFlight {
		received += n
	}
	sb.WriteString(fmt.Sprintf("  %d / %d documents, %s\n\n", m.done, m.total, humanize.Bytes(uint64(received))))

	sb.WriteString("  ")
	sb.WriteString(m.progress.View())
	sb.WriteString("\n\n")

	if m.finished && m.result != nil {
		sb.WriteString(fmt.Sprintf("  Done: %s\n\n", m.result))
	} else {
		sb.WriteString(helpStyle.Render("  Press Ctrl+C to cancel"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// Bar renders pull progress in the terminal.
type Bar struct {
	program *tea.Program
	cancel  context.CancelFunc
	exited  chan struct{}
}

var _ core.ProgressTracker = (*Bar)(nil)

func New(ctx context.Context) *Bar {
	ctx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(
		newPullModel(),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
	)
	return &Bar{
		program: p,
		cancel:  cancel,
		exited:  make(chan struct{}),
	}
}

func (b *Bar) OnStart(ctx context.Context, total int) {
	go func() {
		defer close(b.exited)
		b.program.Run()
	}()
	b.program.Send(savedMsg{total: total})
}

func (b *Bar) OnRead(ctx context.Context, target hrbox.Target, read, size int64) {
	b.program.Send(readMsg{path: target.Path(), read: read})
}

func (b *Bar) OnSaved(ctx context.Context, target hrbox.Target, size int64, done, total int) {
	b.program.Send(savedMsg{path: target.Path(), name: target.FileName(), size: size, done: done, total: total})
}

func (b *Bar) OnDone(ctx context.Context, result *core.Result, err error) {
	b.program.Send(doneMsg{result: result, err: err})
	<-b.exited
	b.cancel()
}
