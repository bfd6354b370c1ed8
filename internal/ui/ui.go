package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytid/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
)

const (
	recentLines = 8
	maxBarWidth = 80
)

// runFunc starts a batch run that reports through progress.
type runFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	run      runFunc
	view     ViewState
	width    int
	height   int
	bar      progress.Model
	updates  chan tasks.ProgressUpdate
	done     chan runOutcome
	progress tasks.ProgressUpdate
	lines    []string
	settled  int
	total    int
	stopping bool
	result   *tasks.RunResult
	err      error
	failed   list.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a TUI model that runs engine with opts as soon as the program starts.
func NewModel(ctx context.Context, engine *tasks.ResolveEngine, opts tasks.Options) *Model {
	return newModel(ctx, func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.RunResult, error) {
		return engine.Run(ctx, progress, opts)
	})
}

func newModel(ctx context.Context, run runFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		view:   RunView,
		bar:    progress.New(progress.WithDefaultGradient()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Result returns the finished run, or nil while it is still going.
func (m *Model) Result() *tasks.RunResult { return m.result }

// Err returns the error the run ended with.
func (m *Model) Err() error { return m.err }

// Init starts the run.
func (m *Model) Init() tea.Cmd {
	return m.startRun()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		if m.view == ResultView {
			m.failed.SetSize(msg.Width-4, m.listHeight())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case RunView:
			return m.handleRunKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.apply(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgRunComplete:
			m.finish(msg.data.(runOutcome))
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.failed, cmd = m.failed.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRunKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && !m.stopping {
		m.stopping = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.failed.FilterState() != list.Filtering && key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.failed, cmd = m.failed.Update(msg)
	return m, cmd
}

func (m *Model) startRun() tea.Cmd {
	m.updates = make(chan tasks.ProgressUpdate, 100)
	m.done = make(chan runOutcome, 1)

	go func(updates chan tasks.ProgressUpdate, done chan<- runOutcome) {
		result, err := m.run(m.ctx, updates)
		done <- runOutcome{result: result, err: err}
		close(updates)
	}(m.updates, m.done)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	updates, done := m.updates, m.done
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			out := <-done
			return runCompleteMsg(out.result, out.err)
		}
		return progressUpdateMsg(update)
	}
}

// apply records update and keeps the last few messages for display.
func (m *Model) apply(update tasks.ProgressUpdate) {
	m.progress = update
	if update.Phase == tasks.ResolveSongs {
		m.settled = update.Step
		m.total = update.Total
	}

	line := styles.faint.Render(update.Message)
	if res, ok := update.Data.(tasks.TaskResult); ok {
		line = styles.status(res.Status).Render(update.Message)
	}
	m.lines = append(m.lines, line)
	if len(m.lines) > recentLines {
		m.lines = m.lines[len(m.lines)-recentLines:]
	}
}

func (m *Model) finish(out runOutcome) {
	m.result = out.result
	m.err = out.err
	m.view = ResultView
	m.cancel()

	var items []list.Item
	if out.result != nil {
		items = unresolvedItems(out.result.Catalog)
	}
	m.failed = list.New(items, list.NewDefaultDelegate(), max(m.width-4, 0), m.listHeight())
	m.failed.Title = "Unresolved songs"
	m.failed.SetShowHelp(false)
}

func (m *Model) listHeight() int {
	return max(m.height-12, 10)
}

func (m *Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.settled) / float64(m.total)
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Resolving video IDs")
	if m.stopping {
		title = styles.title.Render("Stopping after in-flight songs...")
	}

	var phase string
	switch m.progress.Phase {
	case tasks.LoadCatalog:
		phase = "Loading catalog..."
	case tasks.OpenPool:
		phase = "Opening resolver sessions..."
	case tasks.ResolveSongs, tasks.SaveCheckpoint:
		phase = fmt.Sprintf("Resolving songs (%d/%d)", m.settled, m.total)
	case tasks.WriteOutput:
		phase = "Writing output..."
	case tasks.Summary:
		phase = "Finished"
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.cancel})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s",
		title, phase, m.bar.ViewAs(m.percent()), strings.Join(m.lines, "\n"), helpView)
}

func (m *Model) renderResult() string {
	var b strings.Builder

	switch {
	case errors.Is(m.err, context.Canceled):
		b.WriteString(styles.warn.Render("Run interrupted"))
		if m.result != nil {
			fmt.Fprintf(&b, "\nCheckpoint kept at %s; rerun with --resume to continue.", m.result.CheckpointPath)
		}
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Run failed: %v", m.err)))
	default:
		b.WriteString(styles.ok.Render("✓ Resolution complete"))
		if m.result != nil {
			fmt.Fprintf(&b, "\nOutput: %s", m.result.OutputPath)
		}
	}

	if m.result != nil && m.result.Stats.Total > 0 {
		fmt.Fprintf(&b, "\n%s", m.result.Stats.Summary())
	}

	if len(m.failed.Items()) > 0 {
		fmt.Fprintf(&b, "\n\n%s", m.failed.View())
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.View(m.keys))
	return b.String()
}
