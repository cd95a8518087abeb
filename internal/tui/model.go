// Package tui hosts the editor controller in a terminal using bubbletea.
//
// The model forwards key presses to the controller, turns controller events
// into commands for the statement runner and draws the buffer with the
// highlight theme.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/willibrandon/tusk-sub001/internal/runner"
	"github.com/willibrandon/tusk-sub001/pkg/editor"
	"github.com/willibrandon/tusk-sub001/pkg/highlight"
)

// Executor runs statements for the editor.
type Executor interface {
	Execute(ctx context.Context, sql string) (*runner.Result, error)
	ExecuteAll(ctx context.Context, sql string) ([]*runner.Result, error)
	Cancel() bool
}

// SaveFunc persists buffer content.
type SaveFunc func(content string) error

// resultMsg carries statement results back to the model. base is the buffer
// offset the executed text started at.
type resultMsg struct {
	results []*runner.Result
	err     error
	base    int
}

type savedMsg struct {
	err error
}

// Model is the bubbletea model for the editor.
type Model struct {
	ctrl    *editor.Controller
	exec    Executor
	save    SaveFunc
	theme   *highlight.Theme
	keys    KeyMap
	styles  Styles
	help    help.Model
	logger  *slog.Logger
	ctx     context.Context
	title   string
	format  string
	edOpts  []editor.Option
	pending []editor.Event

	width, height int
	scroll        int

	dirty   bool
	running bool
	status  string
	failed  bool
	results []*runner.Result
}

// Option configures a Model.
type Option func(*Model)

// WithExecutor sets the statement runner. Without one execution reports
// that no database is connected.
func WithExecutor(e Executor) Option {
	return func(m *Model) {
		m.exec = e
	}
}

// WithSave sets the save handler.
func WithSave(fn SaveFunc) Option {
	return func(m *Model) {
		m.save = fn
	}
}

// WithTheme sets the highlight theme.
func WithTheme(t *highlight.Theme) Option {
	return func(m *Model) {
		m.theme = t
	}
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(km KeyMap) Option {
	return func(m *Model) {
		m.keys = km
	}
}

// WithTitle sets the name shown in the status bar.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// WithResultFormat sets how results are rendered: table, csv or md.
func WithResultFormat(format string) Option {
	return func(m *Model) {
		m.format = format
	}
}

// WithEditorOptions passes options to the controller.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Model) {
		m.edOpts = append(m.edOpts, opts...)
	}
}

// WithContext sets the context statements run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		m.ctx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// New creates a model editing text.
func New(text string, opts ...Option) *Model {
	m := &Model{
		keys:   DefaultKeyMap(),
		help:   help.New(),
		title:  "[scratch]",
		format: runner.FormatTable,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.theme == nil {
		m.theme = highlight.MustLoadTheme(highlight.DefaultTheme)
	}
	m.styles = DefaultStyles(m.theme)

	edOpts := append([]editor.Option{editor.WithLogger(m.logger)}, m.edOpts...)
	edOpts = append(edOpts, editor.WithEventHandler(m.queue))
	m.ctrl = editor.New(text, edOpts...)
	return m
}

// Controller returns the editor controller.
func (m *Model) Controller() *editor.Controller { return m.ctrl }

// Status returns the status line message.
func (m *Model) Status() string { return m.status }

// Results returns the results of the last execution.
func (m *Model) Results() []*runner.Result { return m.results }

// Dirty reports whether the buffer changed since the last save.
func (m *Model) Dirty() bool { return m.dirty }

// Running reports whether statements are executing.
func (m *Model) Running() bool { return m.running }

func (m *Model) queue(ev editor.Event) {
	m.pending = append(m.pending, ev)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.keyQuits(msg) {
			return m, tea.Quit
		}
		if cmd, ok := m.keys.Command(msg); ok {
			m.ctrl.Run(cmd)
		} else if in, ok := Input(msg); ok {
			m.ctrl.Handle(in)
		}
		return m, m.drain()

	case resultMsg:
		m.finish(msg)
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("save failed: %v", msg.err), true)
			return m, nil
		}
		m.dirty = false
		m.setStatus("saved", false)
		return m, nil
	}
	return m, nil
}

func (m *Model) keyQuits(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Quit)
}

// drain turns queued controller events into commands.
func (m *Model) drain() tea.Cmd {
	events := m.pending
	m.pending = nil

	var cmds []tea.Cmd
	for _, ev := range events {
		if cmd := m.handleEvent(ev); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleEvent(ev editor.Event) tea.Cmd {
	switch ev := ev.(type) {
	case editor.Changed:
		m.dirty = true
		return nil

	case editor.Execute:
		return m.run(ev.Offset, func(ctx context.Context) ([]*runner.Result, error) {
			res, err := m.exec.Execute(ctx, ev.SQL)
			if err != nil {
				return nil, err
			}
			return []*runner.Result{res}, nil
		})

	case editor.ExecuteAll:
		return m.run(0, func(ctx context.Context) ([]*runner.Result, error) {
			return m.exec.ExecuteAll(ctx, ev.SQL)
		})

	case editor.Cancel:
		if m.exec != nil && m.exec.Cancel() {
			m.setStatus("cancelling...", false)
		}
		return nil

	case editor.Save:
		if m.save == nil {
			m.setStatus("no file to save to", true)
			return nil
		}
		save, content := m.save, ev.Content
		return func() tea.Msg {
			return savedMsg{err: save(content)}
		}
	}
	return nil
}

func (m *Model) run(base int, fn func(ctx context.Context) ([]*runner.Result, error)) tea.Cmd {
	if m.exec == nil {
		m.setStatus(runner.ErrNotConnected.Error(), true)
		return nil
	}
	if m.running {
		m.setStatus("a statement is already running", true)
		return nil
	}
	m.running = true
	m.setStatus("running...", false)

	ctx := m.ctx
	return func() tea.Msg {
		results, err := fn(ctx)
		return resultMsg{results: results, err: err, base: base}
	}
}

func (m *Model) finish(msg resultMsg) {
	m.running = false
	if len(msg.results) > 0 || msg.err == nil {
		m.results = msg.results
	}

	if msg.err == nil {
		if n := len(msg.results); n > 0 {
			m.setStatus(msg.results[n-1].Summary(), false)
		}
		return
	}

	m.logger.Debug("execution failed", "error", msg.err)
	var execErr *runner.ExecError
	if errors.As(msg.err, &execErr) {
		m.ctrl.ShowError(execErr.Position(msg.base), execErr.Message, execErr.Detail)
	}
	m.setStatus("error: "+msg.err.Error(), true)
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// Run starts a full-screen program for m and blocks until it exits or ctx
// is cancelled.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	m.ctx = ctx
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
