package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// IndicatorHandle identifies one showing of the loading indicator. Only the handle
// returned by Show can dismiss it.
type IndicatorHandle struct {
	id uuid.UUID
}

type loadingIndicator struct {
	spin    spinner.Model
	current uuid.UUID
}

func newLoadingIndicator() loadingIndicator {
	return loadingIndicator{
		spin: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
}

// Show makes the indicator visible. Showing an already visible indicator returns its
// existing handle.
func (l *loadingIndicator) Show() (IndicatorHandle, tea.Cmd) {
	if l.current != uuid.Nil {
		return IndicatorHandle{id: l.current}, nil
	}
	l.current = uuid.New()
	return IndicatorHandle{id: l.current}, l.spin.Tick
}

// Dismiss hides the indicator if h is the handle that showed it.
func (l *loadingIndicator) Dismiss(h IndicatorHandle) bool {
	if h.id == uuid.Nil || h.id != l.current {
		return false
	}
	l.current = uuid.Nil
	return true
}

func (l *loadingIndicator) Visible() bool { return l.current != uuid.Nil }

func (l *loadingIndicator) Update(msg spinner.TickMsg) tea.Cmd {
	if !l.Visible() {
		return nil
	}
	var cmd tea.Cmd
	l.spin, cmd = l.spin.Update(msg)
	return cmd
}

func (l *loadingIndicator) View() string {
	if !l.Visible() {
		return ""
	}
	return l.spin.View() + " " + loadingText
}
