package tui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jask/foodcalorie/internal/config"
	"github.com/jask/foodcalorie/internal/picker"
	"github.com/jask/foodcalorie/internal/reconcile"
	"github.com/jask/foodcalorie/internal/result"
)

// Uploader starts one classification and returns its outcome stream.
type Uploader interface {
	Upload(ctx context.Context, f picker.File) <-chan result.Outcome
}

// App is the photo screen. All state changes happen in Update.
type App struct {
	ctx        context.Context
	uploader   Uploader
	reconciler *reconcile.Reconciler
	ui         reconcile.UIState
	backend    string

	picker    picker.Model
	indicator loadingIndicator
	loading   *IndicatorHandle
	notice    notice
	noticeFor time.Duration
	tick      func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	file    *picker.File
	preview string
	session uuid.UUID
	cancel  context.CancelFunc
	initial *picker.File

	keys  keyMap
	help  help.Model
	width int

	pending []tea.Cmd
}

type notice struct {
	id   uuid.UUID
	text string
}

// outcomeMsg carries one outcome of an upload session into the Update loop.
type outcomeMsg struct {
	session uuid.UUID
	outcome result.Outcome
	stream  <-chan result.Outcome
}

type streamClosedMsg struct {
	session uuid.UUID
}

type noticeExpiredMsg struct {
	id uuid.UUID
}

type previewMsg struct {
	path string
	text string
}

// New builds the screen. initial, when set, is uploaded as soon as the program starts.
func New(ctx context.Context, cfg config.Config, up Uploader, initial *picker.File) *App {
	noticeFor := cfg.UI.NoticeDuration
	if noticeFor <= 0 {
		noticeFor = 2 * time.Second
	}
	return &App{
		ctx:        ctx,
		uploader:   up,
		reconciler: reconcile.New(),
		backend:    cfg.Classifier.Backend,
		picker:     picker.New(cfg.UI.StartDir),
		indicator:  newLoadingIndicator(),
		noticeFor:  noticeFor,
		tick:       tea.Tick,
		initial:    initial,
		keys:       defaultKeys(),
		help:       help.New(),
	}
}

func (a *App) Init() tea.Cmd {
	if a.initial == nil {
		return nil
	}
	f := *a.initial
	return func() tea.Msg { return picker.PickedMsg{File: f} }
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		a.help.Width = m.Width
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, a.quit()
		}
		if a.picker.IsOpen() {
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Update(m)
			return a, cmd
		}
		switch {
		case key.Matches(m, a.keys.Quit):
			return a, a.quit()
		case key.Matches(m, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
		case key.Matches(m, a.keys.Pick):
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Open()
			return a, cmd
		}
	case picker.PickedMsg:
		return a, a.startUpload(m.File)
	case picker.CancelledMsg:
		log.Printf("debug: picker closed without a selection")
	case picker.DeniedMsg:
		log.Printf("debug: cannot use %s: %v", m.Path, m.Err)
		a.ShowNotice(m.Err.Error())
	case previewMsg:
		if a.file != nil && a.file.Path == m.path {
			a.preview = m.text
		}
	case outcomeMsg:
		if m.session != a.session {
			log.Printf("debug: dropping %s from superseded session %s", result.Name(m.outcome), m.session)
			return a, nil
		}
		log.Printf("debug: outcome %s", result.Name(m.outcome))
		Apply(a, a.reconciler.Reconcile(m.outcome))
		a.queue(waitOutcome(m.session, m.stream))
	case streamClosedMsg:
		if m.session == a.session && a.cancel != nil {
			a.cancel()
			a.cancel = nil
		}
	case noticeExpiredMsg:
		if m.id == a.notice.id {
			a.notice = notice{}
		}
	case spinner.TickMsg:
		a.queue(a.indicator.Update(m))
	default:
		if a.picker.IsOpen() {
			var cmd tea.Cmd
			a.picker, cmd = a.picker.Update(msg)
			a.queue(cmd)
		}
	}
	return a, a.flush()
}

// State returns the reconciled display state.
func (a *App) State() reconcile.UIState { return a.ui }

// Render stores the reconciled state for View.
func (a *App) Render(state reconcile.UIState) {
	a.ui = state
}

// SetLoading shows or dismisses the loading indicator through its handle.
func (a *App) SetLoading(visible bool) {
	if visible {
		h, cmd := a.indicator.Show()
		a.loading = &h
		a.queue(cmd)
		return
	}
	if a.loading != nil {
		a.indicator.Dismiss(*a.loading)
		a.loading = nil
	}
}

// ShowNotice replaces the current notice and schedules its expiry.
func (a *App) ShowNotice(text string) {
	id := uuid.New()
	a.notice = notice{id: id, text: text}
	a.queue(a.tick(a.noticeFor, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} }))
}

// startUpload supersedes any running session and uploads f.
func (a *App) startUpload(f picker.File) tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.session = uuid.New()
	a.file = &f
	a.preview = ""
	log.Printf("debug: session %s uploading %s", a.session, f.Path)

	stream := a.uploader.Upload(ctx, f)
	return tea.Batch(waitOutcome(a.session, stream), previewCmd(f))
}

func (a *App) quit() tea.Cmd {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	return tea.Quit
}

func (a *App) queue(cmd tea.Cmd) {
	if cmd != nil {
		a.pending = append(a.pending, cmd)
	}
}

func (a *App) flush() tea.Cmd {
	if len(a.pending) == 0 {
		return nil
	}
	cmds := a.pending
	a.pending = nil
	return tea.Batch(cmds...)
}

// waitOutcome reads the next outcome of a session. Reading one at a time keeps the
// stream's order.
func waitOutcome(session uuid.UUID, stream <-chan result.Outcome) tea.Cmd {
	return func() tea.Msg {
		o, ok := <-stream
		if !ok {
			return streamClosedMsg{session: session}
		}
		return outcomeMsg{session: session, outcome: o, stream: stream}
	}
}

func previewCmd(f picker.File) tea.Cmd {
	return func() tea.Msg {
		p, err := picker.Describe(f)
		if err != nil {
			log.Printf("debug: preview %s: %v", f.Name, err)
			return previewMsg{path: f.Path}
		}
		return previewMsg{path: f.Path, text: p.String()}
	}
}
