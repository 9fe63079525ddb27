package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/icedope/pkg/bondgraph"
	"github.com/dd0wney/icedope/pkg/logging"
	"github.com/dd0wney/icedope/pkg/parallel"
)

var (
	barStyle = lipgloss.NewStyle().
			MarginTop(1).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

var stopKey = key.NewBinding(
	key.WithKeys("q", "ctrl+c"),
	key.WithHelp("q", "stop"),
)

// replicaDoneMsg is sent once per finished replica.
type replicaDoneMsg struct {
	done int
	res  parallel.ReplicaResult
}

// ensembleDoneMsg is sent after Run returns.
type ensembleDoneMsg struct {
	err error
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// progressModel shows replicas finished, failures and hops applied so far.
type progressModel struct {
	bar      progress.Model
	total    int
	done     int
	failed   int
	placed   int
	applied  int
	last     string
	start    time.Time
	elapsed  time.Duration
	finished bool
	stopped  bool
	err      error
}

func newProgressModel(total int) progressModel {
	return progressModel{
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total: total,
		start: time.Now(),
	}
}

func (m progressModel) Init() tea.Cmd {
	return tickCmd()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(60, msg.Width-24))

	case tea.KeyMsg:
		if key.Matches(msg, stopKey) {
			m.stopped = true
			return m, tea.Quit
		}

	case tickMsg:
		m.elapsed = time.Since(m.start)
		return m, tickCmd()

	case replicaDoneMsg:
		m.done = msg.done
		m.placed += msg.res.Place.Placed
		m.applied += msg.res.Diffuse.Applied
		if msg.res.Err != nil {
			m.failed++
			m.last = fmt.Sprintf("replica %d failed: %v", msg.res.Replica, msg.res.Err)
		} else {
			m.last = fmt.Sprintf("replica %d done in %s", msg.res.Replica, msg.res.Duration.Round(time.Millisecond))
		}

	case ensembleDoneMsg:
		m.finished = true
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	frac := 0.0
	if m.total > 0 {
		frac = float64(m.done) / float64(m.total)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ensemble"))
	b.WriteString("\n")
	b.WriteString(barStyle.Render(fmt.Sprintf("%s  %d/%d replicas", m.bar.ViewAs(frac), m.done, m.total)))
	b.WriteString("\n")
	for _, r := range []row{
		kv("failed", m.failed),
		kv("pairs placed", m.placed),
		kv("hops applied", m.applied),
		kv("elapsed", m.elapsed.Round(time.Second)),
	} {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r.key), valueStyle.Render(r.value)))
		b.WriteString("\n")
	}
	if m.last != "" {
		b.WriteString(m.last)
		b.WriteString("\n")
	}
	if !m.finished && !m.stopped {
		b.WriteString(helpStyle.Render(stopKey.Help().Key + " " + stopKey.Help().Desc))
		b.WriteString("\n")
	}
	return b.String()
}

// progressView runs an ensemble behind a live progress display.
type progressView struct {
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
	logger  logging.Logger
}

func newProgressView(ctx context.Context, out io.Writer, total int, logger logging.Logger) *progressView {
	ctx, cancel := context.WithCancel(ctx)
	return &progressView{
		program: tea.NewProgram(newProgressModel(total), tea.WithContext(ctx), tea.WithOutput(out)),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// report is installed as the ensemble's Progress hook.
func (v *progressView) report(done int, r parallel.ReplicaResult) {
	v.program.Send(replicaDoneMsg{done: done, res: r})
}

// run executes e while the display is up. Stopping the display cancels the
// replicas still running; their results come back with a cancellation error.
func (v *progressView) run(e *parallel.Ensemble, base *bondgraph.Graph) ([]parallel.ReplicaResult, error) {
	defer v.cancel()

	var (
		results []parallel.ReplicaResult
		runErr  error
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		results, runErr = e.Run(v.ctx, base)
		v.program.Send(ensembleDoneMsg{err: runErr})
	}()

	final, err := v.program.Run()
	if err != nil {
		// the replicas do not depend on the display
		v.logger.Warn("progress display stopped", logging.Error(err))
	} else if m, ok := final.(progressModel); ok && m.stopped {
		v.logger.Warn("ensemble stopped from the keyboard")
		v.cancel()
	}
	<-done
	return results, runErr
}
