// Package trainview is the terminal UI for triggering a training run
// and watching its live log. The view renders purely from the
// livelog.ViewModel: the trigger hint only shows while the view-model
// says the trigger is enabled, and log text displays newest-first.
package trainview

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voiceops/speechadmin/internal/livelog"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type vmMsg livelog.ViewModel

type doneMsg struct{ err error }

// Model is the bubbletea model for the train command.
type Model struct {
	modelID  string
	streamer *livelog.Streamer
	spinner  spinner.Model

	vm       livelog.ViewModel
	err      error
	quitting bool

	updates chan livelog.ViewModel
	done    chan error
}

// New builds the model for a training endpoint.
func New(client *http.Client, trainURL, modelID string) Model {
	updates := make(chan livelog.ViewModel, 32)
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	s := livelog.NewStreamer(client, trainURL, func(vm livelog.ViewModel) {
		updates <- vm
	})

	return Model{
		modelID:  modelID,
		streamer: s,
		spinner:  sp,
		vm:       s.Snapshot(),
		updates:  updates,
		done:     make(chan error, 1),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) waitUpdate() tea.Cmd {
	return func() tea.Msg { return vmMsg(<-m.updates) }
}

func (m Model) waitDone() tea.Cmd {
	return func() tea.Msg { return doneMsg{err: <-m.done} }
}

func (m Model) startTraining() tea.Cmd {
	go func() {
		m.done <- m.streamer.Start(context.Background())
	}()
	return tea.Batch(m.waitUpdate(), m.waitDone(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "t", "enter":
			if m.vm.Enabled {
				m.err = nil
				return m, m.startTraining()
			}
			// Trigger is disabled while a stream is in flight.
			return m, nil
		}

	case vmMsg:
		m.vm = livelog.ViewModel(msg)
		return m, m.waitUpdate()

	case doneMsg:
		m.err = msg.err
		m.vm = m.streamer.Snapshot()
		return m, nil

	case spinner.TickMsg:
		if m.streamer.Phase() != livelog.PhaseIdle {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Training %s", m.modelID)))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errStyle.Render(fmt.Sprintf("ERROR: %v", m.err)))
	case !m.vm.Enabled:
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s %s...", m.spinner.View(), phaseLabel(m.streamer.Phase()))))
	default:
		b.WriteString(hintStyle.Render("press t to train, q to quit"))
	}
	b.WriteString("\n\n")

	if m.vm.Log != "" {
		b.WriteString(m.vm.Log)
	}
	return b.String()
}

func phaseLabel(p livelog.Phase) string {
	switch p {
	case livelog.PhaseRequesting:
		return "Requesting"
	case livelog.PhaseStreaming:
		return "Streaming"
	default:
		return "Idle"
	}
}

// RunPlain streams the training log without the TUI, printing chunks in
// arrival order. Used when stdout is not a terminal. New text is always
// prepended to the view-model log, so the delta is its leading bytes.
func RunPlain(ctx context.Context, client *http.Client, trainURL string, out func(string)) error {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Hour}
	}

	var lastLen int
	s := livelog.NewStreamer(client, trainURL, func(vm livelog.ViewModel) {
		if n := len(vm.Log) - lastLen; n > 0 {
			out(vm.Log[:n])
		}
		lastLen = len(vm.Log)
	})
	return s.Start(ctx)
}
