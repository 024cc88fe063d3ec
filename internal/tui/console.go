package tui

import (
	"fmt"
	"io"

	"github.com/jask/foodcalorie/internal/reconcile"
)

// Console prints screen states as plain lines.
type Console struct {
	w    io.Writer
	last reconcile.UIState
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(state reconcile.UIState) {
	defer func() { c.last = state }()
	if !state.InfoVisible {
		return
	}
	if state.FoodName == c.last.FoodName && state.FoodPeople == c.last.FoodPeople &&
		state.FoodCalorie == c.last.FoodCalorie && c.last.InfoVisible {
		return
	}
	fmt.Fprintf(c.w, "%s: %s\n%s: %s\n%s: %s\n",
		labelName, state.FoodName,
		labelPeople, state.FoodPeople,
		labelCalorie, state.FoodCalorie)
}

func (c *Console) ShowNotice(text string) {
	fmt.Fprintln(c.w, text)
}

func (c *Console) SetLoading(visible bool) {
	if visible {
		fmt.Fprintln(c.w, loadingText)
	}
}
