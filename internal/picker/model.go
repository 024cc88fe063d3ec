package picker

import (
	"errors"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// PickedMsg carries the file the user chose.
type PickedMsg struct {
	File File
}

// CancelledMsg is sent when the user closes the picker without choosing.
type CancelledMsg struct{}

// DeniedMsg is sent when the chosen file cannot be read.
type DeniedMsg struct {
	Path string
	Err  error
}

var errUnresolved = errors.New("cannot resolve path")

// Model is a file browser restricted to images.
type Model struct {
	fp     filepicker.Model
	cancel key.Binding
	open   bool
}

// New returns a closed picker rooted at dir.
func New(dir string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = ImageExtensions
	fp.CurrentDirectory = dir
	fp.AutoHeight = false
	fp.Height = 12
	// esc closes the picker instead of walking up a directory
	fp.KeyMap.Back = key.NewBinding(key.WithKeys("h", "backspace", "left"), key.WithHelp("h", "back"))
	return Model{
		fp:     fp,
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// IsOpen reports whether the picker is showing.
func (m Model) IsOpen() bool { return m.open }

// Dir returns the directory being browsed.
func (m Model) Dir() string { return m.fp.CurrentDirectory }

// Open shows the picker and starts reading the current directory.
func (m Model) Open() (Model, tea.Cmd) {
	m.open = true
	return m, m.fp.Init()
}

// Update routes a message to the file browser. A selection closes the picker and
// yields PickedMsg or DeniedMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.cancel) {
		m.open = false
		return m, func() tea.Msg { return CancelledMsg{} }
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)

	if ok, path := m.fp.DidSelectFile(msg); ok {
		m.open = false
		return m, selectCmd(path)
	}
	if ok, path := m.fp.DidSelectDisabledFile(msg); ok {
		return m, func() tea.Msg {
			return DeniedMsg{Path: path, Err: ErrNotImage}
		}
	}
	return m, cmd
}

// View renders the browser, or nothing while closed.
func (m Model) View() string {
	if !m.open {
		return ""
	}
	return m.fp.View()
}

func selectCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if err := CheckReadable(path); err != nil {
			return DeniedMsg{Path: path, Err: err}
		}
		f, ok := Resolve(path)
		if !ok {
			return DeniedMsg{Path: path, Err: errUnresolved}
		}
		return PickedMsg{File: f}
	}
}
