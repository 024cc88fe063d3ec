package tui

import (
	"github.com/jask/foodcalorie/internal/reconcile"
	"github.com/jask/foodcalorie/internal/result"
)

// Presenter renders reconcile effects.
type Presenter interface {
	Render(state reconcile.UIState)
	ShowNotice(text string)
	SetLoading(visible bool)
}

// Apply hands one effect to p: indicator first, then state, then the notice.
func Apply(p Presenter, eff reconcile.Effect) {
	switch eff.Indicator {
	case reconcile.IndicatorShow:
		p.SetLoading(true)
	case reconcile.IndicatorHide:
		p.SetLoading(false)
	}
	p.Render(eff.State)
	if eff.HasNotice {
		p.ShowNotice(eff.Notice)
	}
}

// Stream reconciles every outcome from ch until it closes and returns the last effect.
func Stream(r *reconcile.Reconciler, ch <-chan result.Outcome, p Presenter) reconcile.Effect {
	last := reconcile.Effect{State: r.State()}
	for o := range ch {
		last = r.Reconcile(o)
		Apply(p, last)
	}
	return last
}
